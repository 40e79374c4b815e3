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

package builder

import (
	"go/ast"

	"github.com/gx-org/rex/build/fmterr"
	"github.com/gx-org/rex/build/function"
	"github.com/gx-org/rex/build/ir"
)

func (s *scope) processCall(expr *ast.CallExpr) (ir.Expr, bool) {
	ident, ok := expr.Fun.(*ast.Ident)
	if !ok {
		return nil, s.errorf(fmterr.CodeUnsupported, expr.Fun, "cannot call %T: only library functions can be called", expr.Fun)
	}
	if expr.Ellipsis.IsValid() {
		return nil, s.errorf(fmterr.CodeUnsupported, expr, "variadic calls not supported")
	}
	fn, fnOk := s.reg.Lookup(ident.Name)
	if !fnOk {
		s.errorf(fmterr.CodeUndefinedFunction, ident, "call to undefined function %s", ident.Name)
	}
	args := make([]function.Argument, len(expr.Args))
	argsOk := true
	for i, arg := range expr.Args {
		x, xOk := s.processExpr(arg)
		args[i] = function.Argument{
			Keyword: s.keyword(arg),
			Expr:    x,
			Span:    s.span(arg),
		}
		argsOk = argsOk && xOk
	}
	if !fnOk || !argsOk {
		return nil, false
	}
	call, err := function.Compile(s.ctx, s.env, fn, expr, s.span(expr), args)
	if err != nil {
		return nil, s.app.Append(err)
	}
	return call, true
}
