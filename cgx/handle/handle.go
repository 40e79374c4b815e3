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

// Package handle wraps Go objects into opaque handles that can cross the native calling convention.
//
// A handle is an integer: it can be stored in C memory or in generated code
// without the Go garbage collector losing track of the object it refers to.
package handle

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/gx-org/rex/base/sync"
)

// Handle to a Go object.
type Handle uintptr

var (
	// handles holds the mapping between Handle and Go values.
	handles   = sync.Map[Handle, any]{}
	handleIdx = atomic.Uintptr{}
)

// Wrap stores a Go value and returns a handle to it.
// The zero value of T is wrapped as the zero handle.
//
// Handles must be unwrapped with Unwrap using the same type T
// and released with Release when no longer used.
func Wrap[T comparable](v T) Handle {
	var zero T
	if v == zero {
		return 0
	}
	h := Handle(handleIdx.Add(1))
	if h == 0 {
		panic("cgx: ran out of handle space")
	}
	handles.Store(h, v)
	return h
}

// Unwrap returns the Go value referenced by a handle.
//
// Unwrapping a released handle or unwrapping with a type different from the
// type of the wrapped value is a programming error: Unwrap panics.
func Unwrap[T any](h Handle) T {
	var zero T
	if h == 0 {
		return zero
	}
	v, ok := handles.LoadOK(h)
	if !ok {
		panic(fmt.Sprintf("cgx: unwrapping invalid handle %v", h))
	}
	t, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("cgx: handle %v references a %T, not a %s", h, v, reflect.TypeFor[T]()))
	}
	return t
}

// Release deletes a handle.
//
// The handle must not be used (either through Unwrap or Release) after deletion.
func Release(h Handle) {
	if h == 0 {
		return
	}
	if _, ok := handles.LoadAndDelete(h); !ok {
		panic(fmt.Sprintf("cgx: deleting invalid handle %v", h))
	}
	if handles.Empty() {
		// Collect objects released by the last handle, mostly for the benefit of leak tests.
		runtime.GC()
	}
}

// WrapSlice wraps all the elements of a slice.
func WrapSlice[T comparable](vs []T) []Handle {
	if len(vs) == 0 {
		return nil
	}
	refs := make([]Handle, len(vs))
	for i, v := range vs {
		refs[i] = Wrap[T](v)
	}
	return refs
}

// ReleaseSlice releases all the handles of a slice.
func ReleaseSlice(hs []Handle) {
	for _, h := range hs {
		Release(h)
	}
}

// Count returns the total number of active handles.
func Count() int {
	return handles.Size()
}

// Dump returns a string representation of all existing handles.
func Dump() string {
	s := strings.Builder{}
	for h, v := range handles.Iter() {
		fmt.Fprintf(&s, "%T handle: %v\n", v, h)
	}
	return s.String()
}
