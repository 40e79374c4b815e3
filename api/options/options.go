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

// Package options specifies options to compile and run programs.
package options

import (
	"log/slog"

	"github.com/gx-org/rex/build/function"
	"github.com/gx-org/rex/cgx/abi"
)

type (
	// Option modifies a configuration.
	Option func(*Config)

	// Config is the configuration assembled from a list of options.
	Config struct {
		// Registry of the functions available to programs.
		// Nil means the standard library.
		Registry *function.Registry
		// Logger receives debug messages from the compiler and the native code generator.
		Logger *slog.Logger
		// Native is true if calls are lowered to native entry points.
		Native bool
		// ABIVersion is the version of the calling convention used by generated code.
		ABIVersion string
	}
)

// New returns the configuration resulting from a list of options.
func New(opts ...Option) *Config {
	cfg := &Config{
		Logger:     slog.New(slog.DiscardHandler),
		ABIVersion: abi.Version,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithRegistry sets the functions available to programs.
func WithRegistry(reg *function.Registry) Option {
	return func(cfg *Config) {
		cfg.Registry = reg
	}
}

// WithLogger sets the logger. A nil logger discards all messages.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *Config) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		cfg.Logger = logger
	}
}

// WithNative lowers calls to native entry points when enabled.
// Functions without an entry point are still evaluated by the interpreter.
func WithNative(enabled bool) Option {
	return func(cfg *Config) {
		cfg.Native = enabled
	}
}

// WithABIVersion sets the version of the calling convention required from entry points.
func WithABIVersion(version string) Option {
	return func(cfg *Config) {
		cfg.ABIVersion = version
	}
}
