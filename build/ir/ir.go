// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ir defines the executable representation of rex programs.
//
// Every node of a compiled program implements Expr: Resolve evaluates the node
// with the tree-walking interpreter, TypeDef returns its static type. Nodes are
// immutable once built and can be resolved concurrently with different contexts.
package ir

import (
	"go/ast"

	"github.com/gx-org/rex/value"
)

type (
	// Expr is a compiled expression.
	Expr interface {
		// Resolve evaluates the expression. Sub-expressions are evaluated
		// left to right and the first error stops the evaluation.
		Resolve(ctx *Context) (value.Value, error)
		// TypeDef returns the static type of the expression.
		// It is pure and only called at compile time.
		TypeDef(env *Env) TypeDef
		// Source returns the node of the program the expression has been built from.
		// It may be nil for expressions created by the compiler, e.g. default arguments.
		Source() ast.Node
		// String returns a representation of the expression for debugging.
		String() string
	}

	// Rewriter is implemented by expressions owning sub-expressions.
	Rewriter interface {
		// Rewrite returns a copy of the expression in which every direct
		// sub-expression x has been replaced by f(x).
		Rewrite(f func(Expr) Expr) Expr
	}
)

// Rewrite applies f to all the nodes of a tree, children first.
// Nodes not implementing Rewriter are passed to f as a whole.
func Rewrite(x Expr, f func(Expr) Expr) Expr {
	if x == nil {
		return nil
	}
	if rw, ok := x.(Rewriter); ok {
		x = rw.Rewrite(func(child Expr) Expr {
			return Rewrite(child, f)
		})
	}
	return f(x)
}

// MayFail returns true if evaluating x can fail or produce a value
// outside of the accepted kinds, in which case a function receiving x
// as an argument can fail at run time.
func MayFail(env *Env, x Expr, accepted value.Kind) bool {
	if x == nil {
		return false
	}
	td := x.TypeDef(env)
	return td.Fallible || !accepted.Contains(td.Kind)
}
