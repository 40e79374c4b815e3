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

// Package function defines how library functions are described, how the
// arguments of a call site are bound to their parameters, and the call node
// shared by the interpreter and the native code generator.
package function

import (
	"log/slog"

	"github.com/gx-org/rex/build/ir"
	"github.com/gx-org/rex/cgx/abi"
	"github.com/gx-org/rex/value"
)

type (
	// Parameter of a function.
	Parameter struct {
		// Keyword identifies the parameter at call sites.
		Keyword string
		// Kind is the set of kinds accepted by the function for the parameter.
		Kind value.Kind
		// Required is true if the parameter has no default.
		Required bool
	}

	// Example is an executable description of a function.
	Example struct {
		Title string
		// Source of the program calling the function.
		Source string
		// Result is the JSON representation of the value returned by the program.
		Result string
		// Error is the expected run-time or compile-time error message.
		// Result and Error are exclusive.
		Error string
	}

	// Function is a library function.
	Function interface {
		// Identifier is the name of the function at call sites.
		// It is unique across a registry.
		Identifier() string
		// Parameters returns the parameters in declaration order.
		Parameters() []Parameter
		// Examples returns examples of calls and their result.
		Examples() []Example
		// Compile returns the node evaluating the function given bound arguments.
		// Literal arguments are specialized by Compile, once per call site.
		Compile(ctx *CompileContext, args *ArgumentList) (ir.Expr, error)
		// Symbol returns the native entry point of the function, if any.
		Symbol() (abi.Symbol, bool)
	}
)

// Base implements the descriptive part of Function.
// Library functions embed Base and implement Compile.
type Base struct {
	Name    string
	Params  []Parameter
	Samples []Example
	// Native is the entry point of the function. Its zero value means that
	// the function is only available to the interpreter.
	Native abi.Symbol
}

// Identifier of the function.
func (b *Base) Identifier() string {
	return b.Name
}

// Parameters of the function.
func (b *Base) Parameters() []Parameter {
	return b.Params
}

// Examples of the function.
func (b *Base) Examples() []Example {
	return b.Samples
}

// Symbol returns the native entry point.
func (b *Base) Symbol() (abi.Symbol, bool) {
	return b.Native, b.Native.Entry != nil
}

// CompileContext is the state shared by the compilation of all the call sites of a program.
// It is not safe for concurrent use.
type CompileContext struct {
	logger      *slog.Logger
	specialized int
}

// NewCompileContext returns a new compilation context.
// A nil logger discards all messages.
func NewCompileContext(logger *slog.Logger) *CompileContext {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CompileContext{logger: logger}
}

// Logger returns the logger for compilation messages.
func (ctx *CompileContext) Logger() *slog.Logger {
	return ctx.logger
}

// Specializations returns the number of literals specialized so far.
func (ctx *CompileContext) Specializations() int {
	return ctx.specialized
}
