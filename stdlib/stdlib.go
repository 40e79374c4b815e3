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

// Package stdlib provides the rex function library.
//
// The native entry points of the library are registered in the ABI symbol
// table when the package is initialized. The registry is built the first
// time it is used. Both are read-only afterwards.
package stdlib

import (
	"sync"

	"github.com/gx-org/rex/build/fmterr"
	"github.com/gx-org/rex/build/function"
	"github.com/gx-org/rex/cgx/abi"
	"github.com/gx-org/rex/stdlib/convert"
	"github.com/gx-org/rex/stdlib/hash"
	"github.com/gx-org/rex/stdlib/parse"
	"github.com/gx-org/rex/stdlib/system"
)

var packages = []func() []function.Function{
	convert.Functions,
	hash.Functions,
	parse.Functions,
	system.Functions,
}

// Functions returns all the functions of the library.
func Functions() []function.Function {
	var fns []function.Function
	for _, pkg := range packages {
		fns = append(fns, pkg()...)
	}
	return fns
}

func init() {
	for _, fn := range Functions() {
		sym, ok := fn.Symbol()
		if !ok {
			continue
		}
		if err := abi.Register(sym); err != nil {
			panic(fmterr.Internal(err))
		}
	}
}

var registry = sync.OnceValue(func() *function.Registry {
	reg, err := function.NewRegistry(Functions()...)
	if err != nil {
		panic(fmterr.Internal(err))
	}
	return reg
})

// Registry returns the registry of all the functions of the library.
func Registry() *function.Registry {
	return registry()
}
