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

// Package abi defines the calling convention of native function entry points.
//
// Generated code calls an entry point with a Frame: one slot per parameter of
// the function and one result slot. Ownership of argument values is transferred
// with a take-by-swap protocol:
//
//   - the caller stores each argument in a slot with Put and never reads the slot again;
//   - the callee moves the value out of the slot with Take (or TakeOptional),
//     which leaves Null behind, so the same value can never be taken twice;
//   - compiled literals are passed as opaque handles (PutLiteral) and recovered
//     by the callee with Literal, which checks both the owner and the type of the literal;
//   - the callee writes its result with Return and the caller reads it once with Result.
//
// Entry points are marshaling shims: they must behave exactly like the
// interpreter node of the same function.
package abi

import (
	"reflect"

	"github.com/gx-org/rex/build/fmterr"
	"github.com/gx-org/rex/cgx/handle"
	"github.com/gx-org/rex/value"
)

type (
	// Slot holds one argument of a native call.
	Slot struct {
		val value.Value
		set bool
		lit handle.Handle
	}

	// Frame is the argument and result block passed to an entry point.
	// A frame is used by a single call at a time.
	Frame struct {
		slots []Slot

		result    value.Value
		err       error
		hasResult bool
	}

	// CompiledLiteral is a literal argument specialized at compile time.
	// It is tagged with the identifier of the function owning it.
	// CompiledLiteral is immutable: it is shared by all the evaluations of a program.
	CompiledLiteral struct {
		Owner   string
		Keyword string
		Value   any
	}
)

// NewFrame returns a frame for a function with n parameters.
func NewFrame(n int) *Frame {
	return &Frame{slots: make([]Slot, n)}
}

// Len returns the number of slots in the frame.
func (f *Frame) Len() int {
	return len(f.slots)
}

func (f *Frame) slot(i int) *Slot {
	if i < 0 || i >= len(f.slots) {
		panic(fmterr.Internalf("abi: slot %d out of range: frame has %d slots", i, len(f.slots)))
	}
	return &f.slots[i]
}

// Put transfers the ownership of an argument to the callee.
// The caller must not use v after the call.
func (f *Frame) Put(i int, v value.Value) {
	s := f.slot(i)
	s.val = value.OrNull(v)
	s.set = true
}

// PutLiteral passes a compiled literal handle to the callee.
// The handle remains owned by the caller.
func (f *Frame) PutLiteral(i int, h handle.Handle) {
	f.slot(i).lit = h
}

// Take moves a required argument out of its slot.
// The slot is left holding Null. Taking an empty slot violates the calling convention and panics.
func (f *Frame) Take(i int) value.Value {
	s := f.slot(i)
	if !s.set {
		panic(fmterr.Internalf("abi: required argument in slot %d has not been passed or has already been taken", i))
	}
	s.set = false
	return value.Take(&s.val)
}

// TakeOptional moves an optional argument out of its slot.
// It returns false if the caller did not pass the argument.
func (f *Frame) TakeOptional(i int) (value.Value, bool) {
	s := f.slot(i)
	if !s.set {
		return nil, false
	}
	s.set = false
	return value.Take(&s.val), true
}

// Literal returns the compiled literal passed in slot i.
//
// The literal must be owned by the given function and hold a value of type T.
// A mismatch means that the generated code and the entry point disagree on
// the calling convention: Literal panics.
func Literal[T any](f *Frame, i int, owner string) T {
	lit := handle.Unwrap[*CompiledLiteral](f.slot(i).lit)
	if lit == nil {
		panic(fmterr.Internalf("abi: no compiled literal in slot %d for %s", i, owner))
	}
	if lit.Owner != owner {
		panic(fmterr.Internalf("abi: compiled literal %s.%s passed to %s", lit.Owner, lit.Keyword, owner))
	}
	v, ok := lit.Value.(T)
	if !ok {
		panic(fmterr.Internalf("abi: compiled literal %s.%s is a %T, not a %s", lit.Owner, lit.Keyword, lit.Value, reflect.TypeFor[T]()))
	}
	return v
}

// Return writes the result of the call.
func (f *Frame) Return(v value.Value, err error) {
	f.result, f.err, f.hasResult = v, err, true
}

// Result reads the result written by the callee and clears the result slot.
// Reading a result the callee did not write violates the calling convention and panics.
func (f *Frame) Result() (value.Value, error) {
	if !f.hasResult {
		panic(fmterr.Internalf("abi: entry point returned without writing a result"))
	}
	v, err := f.result, f.err
	f.result, f.err, f.hasResult = nil, nil, false
	if err != nil {
		return nil, err
	}
	return value.OrNull(v), nil
}
