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

	"github.com/gx-org/rex/value"
)

// Literal is a constant known at compile time.
type Literal struct {
	Src ast.Node
	Val value.Value
}

var _ Expr = (*Literal)(nil)

// NewLiteral returns a literal created by the compiler, e.g. the default value of an argument.
func NewLiteral(v value.Value) *Literal {
	return &Literal{Val: value.OrNull(v)}
}

// Resolve returns a copy of the constant.
func (lit *Literal) Resolve(*Context) (value.Value, error) {
	return value.Clone(lit.Val), nil
}

// TypeDef returns the exact kind of the constant.
func (lit *Literal) TypeDef(*Env) TypeDef {
	return TypeOf(value.OrNull(lit.Val).Kind())
}

// Source returns the literal in the program.
func (lit *Literal) Source() ast.Node {
	return lit.Src
}

// Value returns a copy of the constant.
func (lit *Literal) Value() value.Value {
	return value.Clone(lit.Val)
}

func (lit *Literal) String() string {
	return value.OrNull(lit.Val).String()
}
