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

package function

import (
	"go/ast"

	"github.com/gx-org/rex/base/ordered"
	"github.com/gx-org/rex/build/fmterr"
	"github.com/gx-org/rex/build/ir"
	"github.com/gx-org/rex/cgx/abi"
	"github.com/gx-org/rex/value"
)

// Argument passed at a call site.
type Argument struct {
	// Keyword of the parameter. Empty for positional arguments.
	Keyword string
	Expr    ir.Expr
	// Span of the argument in the program source.
	Span fmterr.Span
}

// ArgumentList binds the arguments of a call site to the parameters of a function.
type ArgumentList struct {
	ctx  *CompileContext
	env  *ir.Env
	fn   Function
	span fmterr.Span

	args     *ordered.Map[string, Argument]
	literals *ordered.Map[string, *abi.CompiledLiteral]
}

// NewArgumentList binds arguments to the parameters of a function.
//
// Positional arguments fill parameters in declaration order. Keyword arguments
// fill the parameter with the same keyword. All binding errors of the call site
// are returned together.
func NewArgumentList(ctx *CompileContext, env *ir.Env, fn Function, span fmterr.Span, args []Argument) (*ArgumentList, error) {
	params := fn.Parameters()
	app := fmterr.NewAppender(nil)
	bound := make([]*Argument, len(params))
	next := 0
	for i := range args {
		arg := &args[i]
		index := -1
		if arg.Keyword == "" {
			index = next
			next++
			if index >= len(params) {
				app.Append(fmterr.Errorf(fmterr.CodeTooManyArguments, arg.Span,
					"too many arguments: %s takes %d arguments", fn.Identifier(), len(params)).
					With(fmterr.ContextLabel(span, "in call to %s", fn.Identifier())))
				continue
			}
		} else {
			index = paramIndex(params, arg.Keyword)
			if index < 0 {
				app.Appendf(fmterr.CodeUnknownKeyword, arg.Span,
					"unknown keyword argument %q for %s", arg.Keyword, fn.Identifier())
				continue
			}
		}
		if bound[index] != nil {
			app.Append(fmterr.Errorf(fmterr.CodeDuplicateArgument, arg.Span,
				"argument %q of %s provided more than once", params[index].Keyword, fn.Identifier()).
				With(fmterr.ContextLabel(bound[index].Span, "first provided here")))
			continue
		}
		bound[index] = arg
	}
	al := &ArgumentList{
		ctx:      ctx,
		env:      env,
		fn:       fn,
		span:     span,
		args:     ordered.NewMap[string, Argument](),
		literals: ordered.NewMap[string, *abi.CompiledLiteral](),
	}
	for i, param := range params {
		arg := bound[i]
		if arg == nil {
			if param.Required {
				app.Appendf(fmterr.CodeMissingArgument, span,
					"required argument %q of %s missing", param.Keyword, fn.Identifier())
			}
			continue
		}
		if tdef := arg.Expr.TypeDef(env); tdef.Kind != value.KindNever && !param.Kind.Intersects(tdef.Kind) {
			app.Appendf(fmterr.CodeInvalidArgumentType, arg.Span,
				"invalid argument type: %q of %s expects %s, got %s", param.Keyword, fn.Identifier(), param.Kind, tdef.Kind)
			continue
		}
		al.args.Store(param.Keyword, *arg)
	}
	if !app.Empty() {
		return nil, app.Err()
	}
	return al, nil
}

func paramIndex(params []Parameter, keyword string) int {
	for i, param := range params {
		if param.Keyword == keyword {
			return i
		}
	}
	return -1
}

// Function returns the function being called.
func (al *ArgumentList) Function() Function {
	return al.fn
}

// Env returns the static environment at the call site.
func (al *ArgumentList) Env() *ir.Env {
	return al.env
}

// Span returns the span of the call site.
func (al *ArgumentList) Span() fmterr.Span {
	return al.span
}

// ArgSpan returns the span of an argument, or the span of the call if the argument is absent.
func (al *ArgumentList) ArgSpan(keyword string) fmterr.Span {
	arg, ok := al.args.Load(keyword)
	if !ok {
		return al.span
	}
	return arg.Span
}

// Required returns the expression bound to a required parameter.
// Required arguments have been checked when the list was built:
// a missing argument is a bug in the compiler and Required panics.
func (al *ArgumentList) Required(keyword string) ir.Expr {
	arg, ok := al.args.Load(keyword)
	if !ok {
		panic(fmterr.Internalf("required argument %q of %s has not been bound", keyword, al.fn.Identifier()))
	}
	return arg.Expr
}

// Optional returns the expression bound to an optional parameter or nil.
func (al *ArgumentList) Optional(keyword string) ir.Expr {
	arg, ok := al.args.Load(keyword)
	if !ok {
		return nil
	}
	return arg.Expr
}

// OptionalOr returns the expression bound to an optional parameter or
// a literal of def if the argument is absent.
func (al *ArgumentList) OptionalOr(keyword string, def value.Value) ir.Expr {
	if x := al.Optional(keyword); x != nil {
		return x
	}
	return ir.NewLiteral(def)
}

// RequiredLiteral returns the value of an argument that must be known at compile time.
// An argument that is not a literal, such as a variable or a call, is a compile error.
func (al *ArgumentList) RequiredLiteral(keyword string) (value.Value, error) {
	return al.literal(keyword, al.Required(keyword))
}

// OptionalLiteral returns the value of an optional literal argument.
// The boolean is false if the argument is absent.
func (al *ArgumentList) OptionalLiteral(keyword string) (value.Value, bool, error) {
	x := al.Optional(keyword)
	if x == nil {
		return nil, false, nil
	}
	v, err := al.literal(keyword, x)
	return v, err == nil, err
}

func (al *ArgumentList) literal(keyword string, x ir.Expr) (value.Value, error) {
	lit, ok := x.(*ir.Literal)
	if !ok {
		return nil, fmterr.Errorf(fmterr.CodeExpectedLiteral, al.ArgSpan(keyword),
			"argument must be a literal").
			With(fmterr.ContextLabel(al.span, "%q of %s is compiled once and cannot change at run time", keyword, al.fn.Identifier()))
	}
	return lit.Value(), nil
}

// Specialize records the compiled form of a literal argument.
// The compiled literal is passed to the native entry point of the function.
func (al *ArgumentList) Specialize(keyword string, v any) *abi.CompiledLiteral {
	lit := &abi.CompiledLiteral{
		Owner:   al.fn.Identifier(),
		Keyword: keyword,
		Value:   v,
	}
	al.literals.Store(keyword, lit)
	al.ctx.specialized++
	al.ctx.logger.Debug("literal specialized",
		"function", al.fn.Identifier(),
		"keyword", keyword,
		"span", al.ArgSpan(keyword).String(),
	)
	return lit
}

// CompileLiteral reads a literal argument, specializes it, and records the result.
//
// If the argument is absent, def is specialized instead. A nil def means that
// the argument is required. Specialization errors are reported as a
// diagnostic with the given code pointing at the argument.
func CompileLiteral[T any](al *ArgumentList, keyword string, def value.Value, code fmterr.Code, specialize func(value.Value) (T, error)) (T, error) {
	var zero T
	var lit value.Value
	if def == nil {
		var err error
		if lit, err = al.RequiredLiteral(keyword); err != nil {
			return zero, err
		}
	} else {
		v, ok, err := al.OptionalLiteral(keyword)
		if err != nil {
			return zero, err
		}
		lit = def
		if ok {
			lit = v
		}
	}
	compiled, err := specialize(lit)
	if err != nil {
		return zero, fmterr.Wrap(code, err, fmterr.PrimaryLabel(al.ArgSpan(keyword), "%s", err.Error()))
	}
	al.Specialize(keyword, compiled)
	return compiled, nil
}

// Compile binds the arguments of a call site and compiles the call.
func Compile(ctx *CompileContext, env *ir.Env, fn Function, src ast.Node, span fmterr.Span, args []Argument) (*Call, error) {
	al, err := NewArgumentList(ctx, env, fn, span, args)
	if err != nil {
		return nil, err
	}
	body, err := fn.Compile(ctx, al)
	if err != nil {
		return nil, err
	}
	params := fn.Parameters()
	call := &Call{
		Src:      src,
		Func:     fn,
		Args:     make([]ir.Expr, len(params)),
		Literals: make([]*abi.CompiledLiteral, len(params)),
		Body:     body,
	}
	for i, param := range params {
		call.Args[i] = al.Optional(param.Keyword)
		call.Literals[i], _ = al.literals.Load(param.Keyword)
	}
	return call, nil
}
