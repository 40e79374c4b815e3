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

// scope is the state of the compilation at a point of the program.
// Branches of a condition get their own scope with a copy of the environment.
type scope struct {
	reg      *function.Registry
	app      *fmterr.Appender
	ctx      *function.CompileContext
	env      *ir.Env
	keywords map[int]string
}

func (s *scope) withEnv(env *ir.Env) *scope {
	cp := *s
	cp.env = env
	return &cp
}

func (s *scope) span(node ast.Node) fmterr.Span {
	return s.app.Source().Span(node)
}

func (s *scope) errorf(code fmterr.Code, node ast.Node, format string, a ...any) bool {
	return s.app.Appendf(code, s.span(node), format, a...)
}

// keyword returns the keyword naming an argument, if any.
func (s *scope) keyword(arg ast.Expr) string {
	return s.keywords[s.span(arg).Start]
}
