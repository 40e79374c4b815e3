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
	"strings"

	"github.com/pkg/errors"
)

// Path to a field nested in objects.
type Path []string

// String returns the path as dot-separated field names.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Get returns the value at a path, or Null if a field along the path does not exist.
func Get(v Value, p Path) Value {
	for _, field := range p {
		obj, ok := v.(Object)
		if !ok {
			return Null{}
		}
		v = obj[field]
	}
	return OrNull(v)
}

// Set stores a value at a path, creating intermediate objects when missing.
// Set fails if an intermediate field exists but is not an object.
func Set(root Object, p Path, v Value) error {
	if len(p) == 0 {
		return errors.New("cannot set a value at an empty path")
	}
	obj := root
	for i, field := range p[:len(p)-1] {
		next, ok := obj[field]
		if !ok || OrNull(next).Kind() == KindNull {
			child := Object{}
			obj[field] = child
			obj = child
			continue
		}
		child, ok := next.(Object)
		if !ok {
			return errors.Errorf("cannot set %s: %s is %s, not an object", p, p[:i+1], next.Kind())
		}
		obj = child
	}
	obj[p[len(p)-1]] = v
	return nil
}
