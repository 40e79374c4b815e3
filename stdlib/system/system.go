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

// Package system implements functions reading the environment of the process.
package system

import (
	"go/ast"
	"os"

	"github.com/gx-org/rex/build/function"
	"github.com/gx-org/rex/build/ir"
	"github.com/gx-org/rex/value"
	"github.com/pkg/errors"
)

// Functions returns the system functions.
func Functions() []function.Function {
	return []function.Function{getHostnameFunc}
}

// hostname is replaced in tests.
var hostname = os.Hostname

// GetHostname returns the name of the host.
func GetHostname() (value.Value, error) {
	name, err := hostname()
	if err != nil {
		return nil, errors.Errorf("failed to get hostname: %v", err)
	}
	if name == "" {
		return nil, errors.New("failed to get hostname: empty hostname")
	}
	return value.Bytes(name), nil
}

type getHostname struct {
	function.Base
}

// getHostnameFunc has no native entry point: it is only available to the interpreter.
var getHostnameFunc = &getHostname{Base: function.Base{
	Name: "get_hostname",
	Samples: []function.Example{
		{
			Title:  "valid",
			Source: `get_hostname() != ""`,
			Result: `true`,
		},
	},
}}

func (f *getHostname) Compile(*function.CompileContext, *function.ArgumentList) (ir.Expr, error) {
	return &getHostnameNode{}, nil
}

type getHostnameNode struct{}

var _ ir.Expr = (*getHostnameNode)(nil)

func (n *getHostnameNode) Resolve(*ir.Context) (value.Value, error) {
	return GetHostname()
}

func (n *getHostnameNode) TypeDef(*ir.Env) ir.TypeDef {
	return ir.TypeOf(value.KindBytes).OrFail()
}

func (n *getHostnameNode) Source() ast.Node {
	return nil
}

func (n *getHostnameNode) String() string {
	return "get_hostname()"
}
