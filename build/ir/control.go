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

package ir

import (
	"go/ast"

	"github.com/gx-org/rex/base/stringseq"
	"github.com/gx-org/rex/value"
)

// Block evaluates a sequence of expressions and returns the value of the last one.
// An empty block evaluates to Null.
type Block struct {
	Src   ast.Node
	Exprs []Expr
}

var (
	_ Expr     = (*Block)(nil)
	_ Rewriter = (*Block)(nil)
)

// Resolve evaluates the expressions in order.
func (b *Block) Resolve(ctx *Context) (value.Value, error) {
	var last value.Value = value.Null{}
	for _, x := range b.Exprs {
		var err error
		if last, err = x.Resolve(ctx); err != nil {
			return nil, err
		}
	}
	return last, nil
}

// TypeDef returns the kind of the last expression, fallible if any expression is.
func (b *Block) TypeDef(env *Env) TypeDef {
	td := TypeOf(value.KindNull)
	fallible := false
	for _, x := range b.Exprs {
		td = x.TypeDef(env)
		fallible = fallible || td.Fallible
	}
	return td.FallibleIf(fallible)
}

// Source returns the block in the program.
func (b *Block) Source() ast.Node {
	return b.Src
}

// Rewrite all the expressions of the block.
func (b *Block) Rewrite(f func(Expr) Expr) Expr {
	cp := *b
	cp.Exprs = make([]Expr, len(b.Exprs))
	for i, x := range b.Exprs {
		cp.Exprs[i] = f(x)
	}
	return &cp
}

func (b *Block) String() string {
	return "{" + stringseq.JoinStringer(b.Exprs, "; ") + "}"
}

// If evaluates Then when Cond is true, Else otherwise.
// Else may be nil, in which case the expression evaluates to Null when Cond is false.
type If struct {
	Src        ast.Node
	Cond       Expr
	Then, Else Expr
}

var (
	_ Expr     = (*If)(nil)
	_ Rewriter = (*If)(nil)
)

// Resolve evaluates the condition, then the selected branch.
func (n *If) Resolve(ctx *Context) (value.Value, error) {
	cond, err := n.Cond.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	b, err := value.TryBoolean(cond)
	if err != nil {
		return nil, err
	}
	if b {
		return n.Then.Resolve(ctx)
	}
	if n.Else == nil {
		return value.Null{}, nil
	}
	return n.Else.Resolve(ctx)
}

// TypeDef returns the kinds of both branches.
func (n *If) TypeDef(env *Env) TypeDef {
	td := n.Then.TypeDef(env)
	if n.Else == nil {
		td = td.Merge(TypeOf(value.KindNull))
	} else {
		td = td.Merge(n.Else.TypeDef(env))
	}
	return td.FallibleIf(MayFail(env, n.Cond, value.KindBoolean))
}

// Source returns the statement in the program.
func (n *If) Source() ast.Node {
	return n.Src
}

// Rewrite the condition and the branches.
func (n *If) Rewrite(f func(Expr) Expr) Expr {
	cp := *n
	cp.Cond = f(n.Cond)
	cp.Then = f(n.Then)
	if n.Else != nil {
		cp.Else = f(n.Else)
	}
	return &cp
}

func (n *If) String() string {
	s := "if " + n.Cond.String() + " " + n.Then.String()
	if n.Else != nil {
		s += " else " + n.Else.String()
	}
	return s
}
