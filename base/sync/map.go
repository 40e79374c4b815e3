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

// Package sync provides typed wrappers around the sync package.
package sync

import (
	"iter"
	"sync"
)

// Map is a typed sync.Map.
type Map[K comparable, V any] struct {
	m sync.Map
}

// Store a value for a key.
func (sm *Map[K, V]) Store(k K, v V) {
	sm.m.Store(k, v)
}

// Load returns the value stored for a key, or the zero value.
func (sm *Map[K, V]) Load(k K) V {
	v, _ := sm.LoadOK(k)
	return v
}

// LoadOK returns the value stored for a key and whether the key was present.
func (sm *Map[K, V]) LoadOK(k K) (v V, ok bool) {
	vAny, ok := sm.m.Load(k)
	if !ok {
		return
	}
	return vAny.(V), true
}

// LoadOrStore returns the existing value for a key if present.
// Otherwise, it stores and returns v. loaded is true if the value was already present.
func (sm *Map[K, V]) LoadOrStore(k K, v V) (actual V, loaded bool) {
	vAny, loaded := sm.m.LoadOrStore(k, v)
	return vAny.(V), loaded
}

// LoadAndDelete deletes the value for a key, returning the previous value and whether the key was present.
func (sm *Map[K, V]) LoadAndDelete(k K) (v V, ok bool) {
	vAny, ok := sm.m.LoadAndDelete(k)
	if !ok {
		return
	}
	return vAny.(V), true
}

// Iter ranges over the elements of the map.
func (sm *Map[K, V]) Iter() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		sm.m.Range(func(k, v any) bool {
			return yield(k.(K), v.(V))
		})
	}
}

// Empty returns true if the map is empty.
func (sm *Map[K, V]) Empty() bool {
	for range sm.Iter() {
		return false
	}
	return true
}

// Size returns the number of elements in the map. This takes O(n) time.
func (sm *Map[K, V]) Size() (n int) {
	for range sm.Iter() {
		n++
	}
	return
}
