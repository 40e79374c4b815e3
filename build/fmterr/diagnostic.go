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

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Code identifies a class of compile-time errors.
// Codes are stable and unique across the whole function library.
type Code int

// Compile-time error codes.
const (
	CodeUnsupported         Code = 100
	CodeSyntax              Code = 101
	CodeUndefinedFunction   Code = 105
	CodeTooManyArguments    Code = 106
	CodeMissingArgument     Code = 107
	CodeUnknownKeyword      Code = 108
	CodeInvalidGrokPattern  Code = 109
	CodeInvalidArgumentType Code = 110
	CodeExpectedLiteral     Code = 111
	CodeInvalidVariant      Code = 112
	CodeUndefinedVariable   Code = 113
	CodeInvalidRegex        Code = 114
	CodeDuplicateArgument   Code = 115
)

// String returns the code as displayed in error messages, e.g. E109.
func (c Code) String() string {
	return fmt.Sprintf("E%03d", int(c))
}

type (
	// Label attaches a message to a span of the program source.
	Label struct {
		Message string
		Span    Span
		Primary bool
	}

	// Diagnostic is a compile-time error.
	// Two diagnostics with the same code belong to the same error class.
	Diagnostic struct {
		Code    Code
		Message string
		Labels  []Label
		// err is the underlying error; it carries the stack trace of the creation of the diagnostic.
		err error
	}
)

// PrimaryLabel returns a label pointing at the cause of an error.
func PrimaryLabel(span Span, format string, a ...any) Label {
	return Label{Message: fmt.Sprintf(format, a...), Span: span, Primary: true}
}

// ContextLabel returns a label giving additional context about an error.
func ContextLabel(span Span, format string, a ...any) Label {
	return Label{Message: fmt.Sprintf(format, a...), Span: span}
}

// Errorf returns a diagnostic with a primary label at span carrying the diagnostic message.
func Errorf(code Code, span Span, format string, a ...any) *Diagnostic {
	err := errors.Errorf(format, a...)
	return &Diagnostic{
		Code:    code,
		Message: err.Error(),
		Labels:  []Label{{Message: err.Error(), Span: span, Primary: true}},
		err:     err,
	}
}

// Wrap converts an error into a diagnostic.
// The message of the diagnostic is the message of the error; labels are provided by the caller.
func Wrap(code Code, err error, labels ...Label) *Diagnostic {
	return &Diagnostic{
		Code:    code,
		Message: err.Error(),
		Labels:  labels,
		err:     errors.WithStack(err),
	}
}

// With returns a copy of the diagnostic with additional labels.
func (d *Diagnostic) With(labels ...Label) *Diagnostic {
	cp := *d
	cp.Labels = append(append([]Label{}, d.Labels...), labels...)
	return &cp
}

// Error returns the code and the message of the diagnostic.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("error[%s]: %s", d.Code, d.Message)
}

// Unwrap returns the underlying error.
func (d *Diagnostic) Unwrap() error {
	return d.err
}

// Format writes the error into the state of the formatter.
func (d *Diagnostic) Format(s fmt.State, verb rune) {
	format(d, s, verb)
}

// Render returns a multi-line description of the diagnostic with the positions
// of its labels in the program source.
func (d *Diagnostic) Render(src string) string {
	var s strings.Builder
	s.WriteString(d.Error())
	for _, label := range d.Labels {
		line, col := LineCol(src, label.Span.Start)
		marker := "-"
		if label.Primary {
			marker = "^"
		}
		fmt.Fprintf(&s, "\n  %d:%d %s %s", line, col, marker, label.Message)
		if label.Span.End > label.Span.Start && label.Span.End <= len(src) {
			fmt.Fprintf(&s, " (%s)", src[label.Span.Start:label.Span.End])
		}
	}
	return s.String()
}

// Diagnostics returns all the diagnostics contained in an error,
// including the diagnostics combined with multierr.
func Diagnostics(err error) []*Diagnostic {
	var diags []*Diagnostic
	for _, e := range multierr.Errors(err) {
		var d *Diagnostic
		if errors.As(e, &d) {
			diags = append(diags, d)
		}
	}
	return diags
}

// Is returns true if err contains a diagnostic with the given code.
func Is(err error, code Code) bool {
	for _, d := range Diagnostics(err) {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Render returns the rendering of all diagnostics in err, or the error message for other errors.
func Render(err error, src string) string {
	var ss []string
	for _, e := range multierr.Errors(err) {
		var d *Diagnostic
		if errors.As(e, &d) {
			ss = append(ss, d.Render(src))
			continue
		}
		ss = append(ss, e.Error())
	}
	return strings.Join(ss, "\n")
}
