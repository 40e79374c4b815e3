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
	"github.com/pkg/errors"
)

// Target is the destination of an assignment: a variable or a field of the record.
type Target struct {
	// Var is the name of the variable. Empty if the target is a field of the record.
	Var string
	// Event is the path of the field in the record when Var is empty.
	Event value.Path
}

// VarTarget returns a target assigning a variable.
func VarTarget(name string) Target {
	return Target{Var: name}
}

// EventTarget returns a target assigning a field of the record.
func EventTarget(path value.Path) Target {
	return Target{Event: path}
}

func (t Target) assign(ctx *Context, v value.Value) error {
	if t.Var != "" {
		ctx.SetVar(t.Var, v)
		return nil
	}
	if len(t.Event) > 0 {
		return value.Set(ctx.Event(), t.Event, v)
	}
	obj, ok := v.(value.Object)
	if !ok {
		return errors.Errorf("cannot assign %s to %s: the record must be an object", v.Kind(), EventName)
	}
	root := ctx.Event()
	for k := range root {
		delete(root, k)
	}
	for k, field := range obj {
		root[k] = field
	}
	return nil
}

// mayFail returns true if assigning a value of type td to the target can fail.
func (t Target) mayFail(td TypeDef) bool {
	if t.Var != "" {
		return false
	}
	switch len(t.Event) {
	case 0:
		return !value.KindObject.Contains(td.Kind)
	case 1:
		return false
	}
	// Intermediate fields may exist and not be objects.
	return true
}

func (t Target) String() string {
	if t.Var != "" {
		return t.Var
	}
	return (&EventPath{Path: t.Event}).String()
}

// Assignment assigns the value of an expression to a target.
// The assignment evaluates to the assigned value.
type Assignment struct {
	Src    ast.Node
	Target Target
	Value  Expr
}

var (
	_ Expr     = (*Assignment)(nil)
	_ Rewriter = (*Assignment)(nil)
)

// Resolve evaluates the value and assigns it.
func (a *Assignment) Resolve(ctx *Context) (value.Value, error) {
	v, err := a.Value.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.Target.assign(ctx, value.Clone(v)); err != nil {
		return nil, err
	}
	return v, nil
}

// TypeDef returns the type of the assigned value.
func (a *Assignment) TypeDef(env *Env) TypeDef {
	td := a.Value.TypeDef(env)
	return td.FallibleIf(a.Target.mayFail(td))
}

// Source returns the assignment in the program.
func (a *Assignment) Source() ast.Node {
	return a.Src
}

// Rewrite the assigned expression.
func (a *Assignment) Rewrite(f func(Expr) Expr) Expr {
	cp := *a
	cp.Value = f(a.Value)
	return &cp
}

func (a *Assignment) String() string {
	return a.Target.String() + " = " + a.Value.String()
}

// ErrorAssignment evaluates an expression and assigns either its value or
// its error message, so that the program handles the error instead of failing:
//
//	parsed, err = parse_grok(event.message, "%{GREEDYDATA:message}")
//
// On success, the value is assigned to Value and Null to Err. On failure,
// Null is assigned to Value and the error message to Err.
// Both targets are variables.
type ErrorAssignment struct {
	Src   ast.Node
	Value string
	Err   string
	X     Expr
}

var (
	_ Expr     = (*ErrorAssignment)(nil)
	_ Rewriter = (*ErrorAssignment)(nil)
)

// Resolve evaluates the expression and assigns the value and the error.
// It never fails.
func (a *ErrorAssignment) Resolve(ctx *Context) (value.Value, error) {
	v, err := a.X.Resolve(ctx)
	var errVal value.Value = value.Null{}
	if err != nil {
		v = value.Null{}
		errVal = value.Bytes(err.Error())
	}
	if a.Value != "" {
		ctx.SetVar(a.Value, value.Clone(v))
	}
	if a.Err != "" {
		ctx.SetVar(a.Err, errVal)
	}
	return v, nil
}

// TypeDef returns the kinds of the expression and null. Error assignments are infallible.
func (a *ErrorAssignment) TypeDef(env *Env) TypeDef {
	td := a.X.TypeDef(env)
	if !td.Fallible {
		return td
	}
	return TypeOf(td.Kind | value.KindNull)
}

// ErrTypeDef returns the type of the error variable.
func (a *ErrorAssignment) ErrTypeDef(env *Env) TypeDef {
	if a.X.TypeDef(env).Fallible {
		return TypeOf(value.KindBytes | value.KindNull)
	}
	return TypeOf(value.KindNull)
}

// Source returns the assignment in the program.
func (a *ErrorAssignment) Source() ast.Node {
	return a.Src
}

// Rewrite the assigned expression.
func (a *ErrorAssignment) Rewrite(f func(Expr) Expr) Expr {
	cp := *a
	cp.X = f(a.X)
	return &cp
}

func (a *ErrorAssignment) String() string {
	return a.Value + ", " + a.Err + " = " + a.X.String()
}
