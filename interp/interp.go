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

// Package interp evaluates compiled rex programs with a tree-walking interpreter.
//
// Every function call is evaluated by the node returned by the function when
// the program was compiled. See the native package for an evaluation going
// through native entry points instead.
package interp

import (
	"github.com/gx-org/rex/build/builder"
	"github.com/gx-org/rex/build/fmterr"
	"github.com/gx-org/rex/build/ir"
	"github.com/gx-org/rex/value"
)

// Interpreter runs a compiled program.
// An interpreter can run the program over different records concurrently.
type Interpreter struct {
	prog *builder.Program
}

// New returns a new interpreter for a program.
func New(prog *builder.Program) *Interpreter {
	return &Interpreter{prog: prog}
}

// Program returns the program run by the interpreter.
func (itp *Interpreter) Program() *builder.Program {
	return itp.prog
}

// Run evaluates the program over a record.
// The record is modified in place by assignments to event fields.
// A returned error prints the stack trace of its creation with %+v.
func (itp *Interpreter) Run(record value.Object) (value.Value, error) {
	v, err := itp.prog.Root.Resolve(ir.NewContext(record))
	if err != nil {
		return nil, fmterr.WithStackTrace(err)
	}
	return v, nil
}

// Close releases the resources held by the interpreter. It never fails.
func (itp *Interpreter) Close() error {
	return nil
}
