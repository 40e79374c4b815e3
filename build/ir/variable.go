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

// Variable reads a program variable.
type Variable struct {
	Src  ast.Node
	Name string
	// Typ is the type of the variable where it is read,
	// set by the compiler from the environment at that point of the program.
	Typ TypeDef
}

var _ Expr = (*Variable)(nil)

// Resolve returns the current value of the variable.
func (v *Variable) Resolve(ctx *Context) (value.Value, error) {
	return ctx.Var(v.Name), nil
}

// TypeDef returns the type of the variable where it is read.
// Variables are never fallible: errors are raised when the value is assigned.
func (v *Variable) TypeDef(*Env) TypeDef {
	return TypeDef{Kind: v.Typ.Kind}
}

// Source returns the identifier in the program.
func (v *Variable) Source() ast.Node {
	return v.Src
}

func (v *Variable) String() string {
	return v.Name
}

// EventName is the identifier referring to the record being transformed.
const EventName = "event"

// EventPath reads a field of the record being transformed.
// An empty path reads the whole record.
type EventPath struct {
	Src  ast.Node
	Path value.Path
}

var _ Expr = (*EventPath)(nil)

// Resolve returns a copy of the field, or Null if the field does not exist.
func (p *EventPath) Resolve(ctx *Context) (value.Value, error) {
	if len(p.Path) == 0 {
		return value.Clone(ctx.Event()), nil
	}
	return value.Clone(value.Get(ctx.Event(), p.Path)), nil
}

// TypeDef returns the type of the field. Records are not typed: any kind can be read.
func (p *EventPath) TypeDef(*Env) TypeDef {
	if len(p.Path) == 0 {
		return TypeOf(value.KindObject)
	}
	return TypeOf(value.KindAny)
}

// Source returns the path in the program.
func (p *EventPath) Source() ast.Node {
	return p.Src
}

func (p *EventPath) String() string {
	if len(p.Path) == 0 {
		return EventName
	}
	return EventName + "." + p.Path.String()
}

// Field reads a field nested in the value of an expression, e.g. a field of an
// object returned by a function.
type Field struct {
	Src  ast.Node
	X    Expr
	Path value.Path
}

var (
	_ Expr     = (*Field)(nil)
	_ Rewriter = (*Field)(nil)
)

// Resolve evaluates the expression and returns the field, or Null if the field does not exist.
func (f *Field) Resolve(ctx *Context) (value.Value, error) {
	x, err := f.X.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return value.Get(x, f.Path), nil
}

// TypeDef returns the type of the field. Objects are not typed: any kind can be read.
func (f *Field) TypeDef(env *Env) TypeDef {
	return TypeDef{Kind: value.KindAny, Fallible: f.X.TypeDef(env).Fallible}
}

// Source returns the selector in the program.
func (f *Field) Source() ast.Node {
	return f.Src
}

// Rewrite the expression owning the field.
func (f *Field) Rewrite(fn func(Expr) Expr) Expr {
	cp := *f
	cp.X = fn(f.X)
	return &cp
}

func (f *Field) String() string {
	return f.X.String() + "." + f.Path.String()
}
