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

// Package parse implements functions extracting structured data from text.
//
// Patterns are compiled once, when the program is compiled, and shared by
// all the evaluations of the program.
package parse

import "github.com/gx-org/rex/build/function"

// Functions returns the parsing functions.
func Functions() []function.Function {
	return []function.Function{parseGrokFunc, parseRegexFunc}
}
