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

// Package convert implements functions converting values from one kind to another.
package convert

import (
	"go/ast"
	"strconv"

	"github.com/gx-org/rex/build/function"
	"github.com/gx-org/rex/build/ir"
	"github.com/gx-org/rex/value"
	"github.com/pkg/errors"
)

// Functions returns the conversion functions.
func Functions() []function.Function {
	return []function.Function{toStringFunc}
}

// ToString converts a scalar to bytes.
func ToString(v value.Value) (value.Value, error) {
	switch vT := value.OrNull(v).(type) {
	case value.Bytes:
		return vT, nil
	case value.Integer:
		return value.Bytes(strconv.FormatInt(int64(vT), 10)), nil
	case value.Float:
		return value.Bytes(vT.String()), nil
	case value.Boolean:
		return value.Bytes(strconv.FormatBool(bool(vT))), nil
	case value.Null:
		return value.Bytes(""), nil
	}
	return nil, errors.Errorf("unable to coerce %s into bytes", v.Kind())
}

type toString struct {
	function.Base
}

var toStringFunc = &toString{Base: function.Base{
	Name: "to_string",
	Params: []function.Parameter{
		{Keyword: "value", Kind: value.KindAny, Required: true},
	},
	Samples: []function.Example{
		{
			Title:  "integer",
			Source: `to_string(52)`,
			Result: `"52"`,
		},
		{
			Title:  "float",
			Source: `to_string(3.0)`,
			Result: `"3.0"`,
		},
		{
			Title:  "null",
			Source: `to_string(null)`,
			Result: `""`,
		},
		{
			Title:  "object",
			Source: `to_string(event)`,
			Error:  "unable to coerce object into bytes",
		},
	},
}}

func (f *toString) Compile(ctx *function.CompileContext, args *function.ArgumentList) (ir.Expr, error) {
	return &toStringNode{value: args.Required("value")}, nil
}

type toStringNode struct {
	value ir.Expr
}

var _ ir.Expr = (*toStringNode)(nil)

func (n *toStringNode) Resolve(ctx *ir.Context) (value.Value, error) {
	v, err := n.value.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return ToString(v)
}

// TypeDef is infallible when the value is always a scalar.
func (n *toStringNode) TypeDef(env *ir.Env) ir.TypeDef {
	return ir.TypeOf(value.KindBytes).FallibleIf(ir.MayFail(env, n.value, value.KindScalar))
}

func (n *toStringNode) Source() ast.Node {
	return nil
}

func (n *toStringNode) String() string {
	return "to_string(" + n.value.String() + ")"
}
