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

package abi

import (
	"reflect"
	"slices"

	"github.com/gx-org/rex/base/sync"
	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
)

// Version is the version of the calling convention implemented by this package.
// Entry points declare the version they have been written for.
const Version = "v1.0.0"

type (
	// EntryPoint is a native function entry point.
	EntryPoint func(*Frame)

	// Symbol binds a stable name to an entry point.
	Symbol struct {
		// Name of the symbol, e.g. rex_fn_md5.
		Name string
		// Entry is the function called by generated code.
		Entry EntryPoint
		// Version of the calling convention the entry point implements.
		Version string
	}
)

// Addr returns the address of the entry point.
func (s Symbol) Addr() uintptr {
	if s.Entry == nil {
		return 0
	}
	return reflect.ValueOf(s.Entry).Pointer()
}

// Compatible returns an error if the entry point cannot be called by code
// generated for the given version of the calling convention.
// Versions are compatible if they share the same major version and the entry
// point implements at least the minor version required by the generator.
func (s Symbol) Compatible(generator string) error {
	if !semver.IsValid(s.Version) {
		return errors.Errorf("symbol %s: invalid ABI version %q", s.Name, s.Version)
	}
	if !semver.IsValid(generator) {
		return errors.Errorf("invalid generator ABI version %q", generator)
	}
	if semver.Major(s.Version) != semver.Major(generator) {
		return errors.Errorf("symbol %s implements ABI %s which is incompatible with ABI %s", s.Name, s.Version, generator)
	}
	if semver.Compare(s.Version, generator) < 0 {
		return errors.Errorf("symbol %s implements ABI %s but ABI %s is required", s.Name, s.Version, generator)
	}
	return nil
}

// symbols is the process-wide symbol table.
var symbols = sync.Map[string, Symbol]{}

// Register adds a symbol to the process-wide symbol table.
// Registering the same entry point twice under the same name is a no-op.
func Register(s Symbol) error {
	if s.Name == "" || s.Entry == nil {
		return errors.Errorf("cannot register symbol %q without a name or an entry point", s.Name)
	}
	if !semver.IsValid(s.Version) {
		return errors.Errorf("cannot register symbol %s: invalid ABI version %q", s.Name, s.Version)
	}
	prev, loaded := symbols.LoadOrStore(s.Name, s)
	if loaded && (prev.Addr() != s.Addr() || prev.Version != s.Version) {
		return errors.Errorf("symbol %s already registered with a different entry point", s.Name)
	}
	return nil
}

// Lookup returns the symbol registered under a name.
func Lookup(name string) (Symbol, bool) {
	return symbols.LoadOK(name)
}

// Names returns the sorted names of all registered symbols.
func Names() []string {
	var names []string
	for name := range symbols.Iter() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
