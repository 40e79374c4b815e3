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

// Package value defines the dynamically typed values transformed by rex programs.
//
// A value is one of Bytes, Integer, Float, Boolean, Null, Array or Object.
// Arrays and objects are mutable containers: use Clone before sharing a value
// with code that may modify it.
package value

import (
	"bytes"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

type (
	// Value is a dynamically typed record value.
	Value interface {
		// Kind of the value. Always a single kind.
		Kind() Kind
		// String returns the canonical rendering of the value.
		String() string
	}

	// Bytes is a sequence of bytes, usually UTF-8 text.
	Bytes []byte

	// Integer is a 64-bit signed integer.
	Integer int64

	// Float is a 64-bit floating point number.
	Float float64

	// Boolean is true or false.
	Boolean bool

	// Null is the absence of a value.
	Null struct{}

	// Array is an ordered sequence of values.
	Array []Value

	// Object maps field names to values. Fields are rendered in key order.
	Object map[string]Value
)

var (
	_ Value = Bytes(nil)
	_ Value = Integer(0)
	_ Value = Float(0)
	_ Value = Boolean(false)
	_ Value = Null{}
	_ Value = Array(nil)
	_ Value = Object(nil)
)

// Kind of the value.
func (Bytes) Kind() Kind { return KindBytes }

// String returns the bytes as a quoted string.
func (v Bytes) String() string { return strconv.Quote(string(v)) }

// Kind of the value.
func (Integer) Kind() Kind { return KindInteger }

// String returns the decimal representation of the integer.
func (v Integer) String() string { return strconv.FormatInt(int64(v), 10) }

// Kind of the value.
func (Float) Kind() Kind { return KindFloat }

// String returns the shortest representation of the float.
func (v Float) String() string {
	f := float64(v)
	if math.Trunc(f) == f && !math.IsInf(f, 0) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Kind of the value.
func (Boolean) Kind() Kind { return KindBoolean }

// String returns true or false.
func (v Boolean) String() string { return strconv.FormatBool(bool(v)) }

// Kind of the value.
func (Null) Kind() Kind { return KindNull }

// String returns null.
func (Null) String() string { return "null" }

// Kind of the value.
func (Array) Kind() Kind { return KindArray }

// String returns the elements of the array between brackets.
func (v Array) String() string {
	var s strings.Builder
	s.WriteString("[")
	for i, el := range v {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(stringOf(el))
	}
	s.WriteString("]")
	return s.String()
}

// Kind of the value.
func (Object) Kind() Kind { return KindObject }

// Keys returns the field names of the object in sorted order.
func (v Object) Keys() []string {
	keys := maps.Keys(v)
	slices.Sort(keys)
	return keys
}

// String returns the fields of the object between braces, sorted by name.
func (v Object) String() string {
	var s strings.Builder
	s.WriteString("{")
	for i, k := range v.Keys() {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(strconv.Quote(k))
		s.WriteString(": ")
		s.WriteString(stringOf(v[k]))
	}
	s.WriteString("}")
	return s.String()
}

func stringOf(v Value) string {
	if v == nil {
		return Null{}.String()
	}
	return v.String()
}

// OrNull returns v or Null if v is nil.
func OrNull(v Value) Value {
	if v == nil {
		return Null{}
	}
	return v
}

// Take moves the value out of a slot, leaving Null behind.
// The caller owns the returned value; the slot can no longer be read as the original value.
func Take(slot *Value) Value {
	moved := OrNull(*slot)
	*slot = Null{}
	return moved
}

// Clone returns a deep copy of a value.
func Clone(v Value) Value {
	switch vT := v.(type) {
	case nil:
		return Null{}
	case Bytes:
		return slices.Clone(vT)
	case Array:
		r := make(Array, len(vT))
		for i, el := range vT {
			r[i] = Clone(el)
		}
		return r
	case Object:
		r := make(Object, len(vT))
		for k, el := range vT {
			r[k] = Clone(el)
		}
		return r
	}
	return v
}

// Equal returns true if two values have the same kind and the same content.
func Equal(a, b Value) bool {
	a, b = OrNull(a), OrNull(b)
	switch aT := a.(type) {
	case Bytes:
		bT, ok := b.(Bytes)
		return ok && bytes.Equal(aT, bT)
	case Array:
		bT, ok := b.(Array)
		if !ok || len(aT) != len(bT) {
			return false
		}
		for i := range aT {
			if !Equal(aT[i], bT[i]) {
				return false
			}
		}
		return true
	case Object:
		bT, ok := b.(Object)
		if !ok || len(aT) != len(bT) {
			return false
		}
		for k, av := range aT {
			bv, ok := bT[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return a == b
}

// KindError returns the run-time error reported when a value does not have the expected kind.
func KindError(want Kind, got Value) error {
	return errors.Errorf("expected %s, got %s", want, OrNull(got).Kind())
}

// TryBytes returns the content of a Bytes value.
func TryBytes(v Value) ([]byte, error) {
	b, ok := v.(Bytes)
	if !ok {
		return nil, KindError(KindBytes, v)
	}
	return b, nil
}

// TryBytesUTF8Lossy returns the content of a Bytes value as a string,
// replacing invalid UTF-8 sequences with the replacement character.
func TryBytesUTF8Lossy(v Value) (string, error) {
	b, err := TryBytes(v)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(b), "�"), nil
}

// TryBoolean returns the content of a Boolean value.
func TryBoolean(v Value) (bool, error) {
	b, ok := v.(Boolean)
	if !ok {
		return false, KindError(KindBoolean, v)
	}
	return bool(b), nil
}

// Truthy returns the boolean used by conditions: only Boolean(true) is true.
func Truthy(v Value) bool {
	b, ok := v.(Boolean)
	return ok && bool(b)
}
