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

// Package api compiles and runs rex programs.
//
// A minimal use is:
//
//	prog, err := api.Compile(`event.digest = md5(event.message)`)
//	if err != nil {
//		return err
//	}
//	defer prog.Close()
//	result, err := prog.Run(record)
package api

import (
	"github.com/gx-org/rex/api/options"
	"github.com/gx-org/rex/build/builder"
	"github.com/gx-org/rex/build/ir"
	"github.com/gx-org/rex/interp"
	"github.com/gx-org/rex/native"
	"github.com/gx-org/rex/stdlib"
	"github.com/gx-org/rex/value"
)

type (
	// Runner evaluates a program over records.
	Runner interface {
		Run(record value.Object) (value.Value, error)
		Close() error
	}

	// Program is a compiled program ready to run.
	// A program can be run concurrently over different records.
	Program struct {
		prog   *builder.Program
		runner Runner
	}
)

var (
	_ Runner = (*interp.Interpreter)(nil)
	_ Runner = (*native.Program)(nil)
)

// Compile a program. The standard library is used unless another registry is given.
// With native lowering, the entry points of the functions of a custom registry
// must have been registered with abi.Register when the process started.
func Compile(src string, opts ...options.Option) (*Program, error) {
	cfg := options.New(opts...)
	reg := cfg.Registry
	if reg == nil {
		reg = stdlib.Registry()
	}
	prog, err := builder.New(reg, cfg.Logger).Build(src)
	if err != nil {
		return nil, err
	}
	if !cfg.Native {
		return &Program{prog: prog, runner: interp.New(prog)}, nil
	}
	lowered, err := native.Lower(prog, opts...)
	if err != nil {
		return nil, err
	}
	return &Program{prog: prog, runner: lowered}, nil
}

// Run evaluates the program over a record.
// Assignments to event fields modify the record in place.
func (p *Program) Run(record value.Object) (value.Value, error) {
	if record == nil {
		record = value.Object{}
	}
	return p.runner.Run(record)
}

// TypeDef returns the static type of the value returned by the program.
func (p *Program) TypeDef() ir.TypeDef {
	return p.prog.TypeDef()
}

// Compiled returns the program built from the source.
func (p *Program) Compiled() *builder.Program {
	return p.prog
}

// Runner returns the runner evaluating the program.
func (p *Program) Runner() Runner {
	return p.runner
}

// Close releases the resources held by the program.
func (p *Program) Close() error {
	return p.runner.Close()
}

func (p *Program) String() string {
	return p.prog.String()
}
