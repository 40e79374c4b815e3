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

package value

import (
	"iter"

	"github.com/gx-org/rex/base/stringseq"
)

// Kind is a set of value kinds.
type Kind uint16

// Kinds of values.
const (
	KindBytes Kind = 1 << iota
	KindInteger
	KindFloat
	KindBoolean
	KindNull
	KindArray
	KindObject

	// KindNever is the empty set: the expression never produces a value.
	KindNever Kind = 0
	// KindAny accepts every kind of value.
	KindAny = KindBytes | KindInteger | KindFloat | KindBoolean | KindNull | KindArray | KindObject
	// KindScalar is the set of non-container kinds.
	KindScalar = KindBytes | KindInteger | KindFloat | KindBoolean | KindNull
	// KindNumber is the set of numeric kinds.
	KindNumber = KindInteger | KindFloat
)

var kindNames = []struct {
	kind Kind
	name string
}{
	{KindBytes, "bytes"},
	{KindInteger, "integer"},
	{KindFloat, "float"},
	{KindBoolean, "boolean"},
	{KindNull, "null"},
	{KindArray, "array"},
	{KindObject, "object"},
}

// Contains returns true if all the kinds of o are in k.
func (k Kind) Contains(o Kind) bool {
	return k&o == o
}

// Intersects returns true if k and o share at least one kind.
func (k Kind) Intersects(o Kind) bool {
	return k&o != 0
}

// Union returns the set of kinds in k or in o.
func (k Kind) Union(o Kind) Kind {
	return k | o
}

// IsExact returns true if the set contains a single kind.
func (k Kind) IsExact() bool {
	return k != 0 && k&(k-1) == 0
}

func (k Kind) names() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, kn := range kindNames {
			if k&kn.kind == 0 {
				continue
			}
			if !yield(kn.name) {
				return
			}
		}
	}
}

// String returns a human readable description of the set, e.g. "bytes or integer".
func (k Kind) String() string {
	switch k {
	case KindNever:
		return "never"
	case KindAny:
		return "any"
	}
	return stringseq.Join(k.names(), " or ")
}
