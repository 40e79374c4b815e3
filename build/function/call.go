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
	"strings"

	"github.com/gx-org/rex/build/ir"
	"github.com/gx-org/rex/cgx/abi"
	"github.com/gx-org/rex/value"
)

// Call of a library function.
//
// Body is the node returned by Function.Compile and evaluated by the interpreter.
// Args and Literals are indexed by parameter and describe the call for the native
// code generator: absent optional arguments are nil, and Literals holds the
// compiled form of every specialized argument.
type Call struct {
	Src      ast.Node
	Func     Function
	Args     []ir.Expr
	Literals []*abi.CompiledLiteral
	Body     ir.Expr
}

var _ ir.Expr = (*Call)(nil)

// Resolve evaluates the call with the interpreter.
func (c *Call) Resolve(ctx *ir.Context) (value.Value, error) {
	return c.Body.Resolve(ctx)
}

// TypeDef returns the type of the function result.
// The call is fallible if the body is or if an argument may not be accepted by the function.
func (c *Call) TypeDef(env *ir.Env) ir.TypeDef {
	tdef := c.Body.TypeDef(env)
	params := c.Func.Parameters()
	for i, arg := range c.Args {
		if c.Literals[i] != nil {
			continue
		}
		tdef = tdef.FallibleIf(ir.MayFail(env, arg, params[i].Kind))
	}
	return tdef
}

// Source returns the call expression in the program.
func (c *Call) Source() ast.Node {
	return c.Src
}

func (c *Call) String() string {
	params := c.Func.Parameters()
	var args []string
	for i, arg := range c.Args {
		if arg == nil {
			continue
		}
		s := arg.String()
		if !params[i].Required {
			s = params[i].Keyword + ": " + s
		}
		args = append(args, s)
	}
	return c.Func.Identifier() + "(" + strings.Join(args, ", ") + ")"
}
