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

package ir

import "github.com/gx-org/rex/value"

// TypeDef is the static type of an expression: the kinds of values it can
// produce and whether its evaluation can fail.
//
// A TypeDef never under-reports fallibility: if Resolve can return an error
// for some input, Fallible is true.
type TypeDef struct {
	Kind     value.Kind
	Fallible bool
}

// TypeOf returns an infallible type producing values of the given kinds.
func TypeOf(kind value.Kind) TypeDef {
	return TypeDef{Kind: kind}
}

// OrFail returns the type marked as fallible.
func (td TypeDef) OrFail() TypeDef {
	td.Fallible = true
	return td
}

// FallibleIf returns the type marked as fallible if fail is true.
// A type already fallible stays fallible.
func (td TypeDef) FallibleIf(fail bool) TypeDef {
	td.Fallible = td.Fallible || fail
	return td
}

// Merge returns a type producing the kinds of both types, fallible if either is.
func (td TypeDef) Merge(other TypeDef) TypeDef {
	return TypeDef{
		Kind:     td.Kind.Union(other.Kind),
		Fallible: td.Fallible || other.Fallible,
	}
}

// String returns a description of the type.
func (td TypeDef) String() string {
	if td.Fallible {
		return td.Kind.String() + " (fallible)"
	}
	return td.Kind.String() + " (infallible)"
}
