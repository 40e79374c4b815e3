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
	"maps"

	"github.com/gx-org/rex/value"
)

// Context is the run-time state of one evaluation of a program:
// the record being transformed and the program variables.
// A context must not be shared between concurrent evaluations.
type Context struct {
	event value.Object
	vars  map[string]value.Value
}

// NewContext returns a context to evaluate a program over a record.
// The record is modified in place by assignments to event fields.
func NewContext(event value.Object) *Context {
	if event == nil {
		event = value.Object{}
	}
	return &Context{event: event, vars: make(map[string]value.Value)}
}

// Event returns the record being transformed.
func (ctx *Context) Event() value.Object {
	return ctx.event
}

// Var returns the value of a variable, or Null if it has not been assigned.
func (ctx *Context) Var(name string) value.Value {
	return value.OrNull(ctx.vars[name])
}

// SetVar assigns a value to a variable.
func (ctx *Context) SetVar(name string, v value.Value) {
	ctx.vars[name] = v
}

// Env is the compile-time state of a program: the static type of its variables.
type Env struct {
	vars map[string]TypeDef
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{vars: make(map[string]TypeDef)}
}

// Var returns the type of a variable and whether the variable has been declared.
func (env *Env) Var(name string) (TypeDef, bool) {
	td, ok := env.vars[name]
	return td, ok
}

// SetVar declares a variable or changes its type.
// The variable keeps the kinds of its value but the variable itself is never fallible.
func (env *Env) SetVar(name string, td TypeDef) {
	env.vars[name] = TypeDef{Kind: td.Kind}
}

// Clone returns a copy of the environment, e.g. to type a branch of a condition.
func (env *Env) Clone() *Env {
	return &Env{vars: maps.Clone(env.vars)}
}

// Join merges the environments of two exclusive branches into env.
// A variable declared in a single branch can also be null.
func (env *Env) Join(a, b *Env) {
	for name, tdA := range a.vars {
		tdB, ok := b.vars[name]
		if !ok {
			tdB = TypeOf(value.KindNull)
		}
		env.vars[name] = tdA.Merge(tdB)
	}
	for name, tdB := range b.vars {
		if _, ok := a.vars[name]; !ok {
			env.vars[name] = tdB.Merge(TypeOf(value.KindNull))
		}
	}
}
