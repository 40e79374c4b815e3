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

// Package stringseq builds strings from sequences.
package stringseq

import (
	"fmt"
	"iter"
	"strings"
)

// Join concatenates the elements of seq, placing sep between elements.
func Join(seq iter.Seq[string], sep string) string {
	var b strings.Builder
	n := 0
	for item := range seq {
		if n > 0 {
			b.WriteString(sep)
		}
		b.WriteString(item)
		n++
	}
	return b.String()
}

// Map applies f to every element of a slice and returns the sequence of results.
func Map[T any](items []T, f func(T) string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, item := range items {
			if !yield(f(item)) {
				return
			}
		}
	}
}

// JoinStringer concatenates the string representations of items, placing sep between elements.
func JoinStringer[T fmt.Stringer](items []T, sep string) string {
	return Join(Map(items, func(item T) string { return item.String() }), sep)
}

// Quoted returns the quoted elements of a slice, e.g. for listing names in an error message.
func Quoted(items []string) iter.Seq[string] {
	return Map(items, func(s string) string {
		return fmt.Sprintf("%q", s)
	})
}
