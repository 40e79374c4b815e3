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

package function

import (
	"iter"
	"slices"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

// Registry maps identifiers to functions.
// A registry is read-only once built and can be shared by concurrent compilations.
type Registry struct {
	fns map[string]Function
}

// NewRegistry returns a registry of functions.
// Two functions with the same identifier is an error.
func NewRegistry(fns ...Function) (*Registry, error) {
	r := &Registry{fns: make(map[string]Function, len(fns))}
	for _, fn := range fns {
		id := fn.Identifier()
		if id == "" {
			return nil, errors.Errorf("function %T has no identifier", fn)
		}
		if _, ok := r.fns[id]; ok {
			return nil, errors.Errorf("function %s registered more than once", id)
		}
		r.fns[id] = fn
	}
	return r, nil
}

// Lookup returns the function registered for an identifier.
func (r *Registry) Lookup(id string) (Function, bool) {
	fn, ok := r.fns[id]
	return fn, ok
}

// Identifiers returns the sorted identifiers of all the functions.
func (r *Registry) Identifiers() []string {
	keys := maps.Keys(r.fns)
	slices.Sort(keys)
	return keys
}

// Functions ranges over all the functions, sorted by identifier.
func (r *Registry) Functions() iter.Seq[Function] {
	return func(yield func(Function) bool) {
		for _, id := range r.Identifiers() {
			if !yield(r.fns[id]) {
				return
			}
		}
	}
}
