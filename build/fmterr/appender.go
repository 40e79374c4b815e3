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

package fmterr

import "go.uber.org/multierr"

// Appender accumulates the errors of a compilation so that all call sites
// of a program are reported at once.
type Appender struct {
	src *Source
	err error
}

// NewAppender returns an appender for errors in a given source.
func NewAppender(src *Source) *Appender {
	return &Appender{src: src}
}

// Source returns the program source errors refer to.
func (app *Appender) Source() *Source {
	return app.src
}

// Append an error. Always returns false so that callers can write:
//
//	return nil, app.Append(err)
func (app *Appender) Append(err error) bool {
	app.err = multierr.Append(app.err, err)
	return false
}

// Appendf appends a diagnostic with a primary label.
func (app *Appender) Appendf(code Code, span Span, format string, a ...any) bool {
	return app.Append(Errorf(code, span, format, a...))
}

// Empty returns true if no error has been appended.
func (app *Appender) Empty() bool {
	return app.err == nil
}

// Errors returns the list of errors appended so far.
func (app *Appender) Errors() []error {
	return multierr.Errors(app.err)
}

// Err returns all the errors combined in a single error, or nil.
func (app *Appender) Err() error {
	return app.err
}
