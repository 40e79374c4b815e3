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

package builder_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/rex/build/builder"
	"github.com/gx-org/rex/build/fmterr"
	"github.com/gx-org/rex/build/ir"
	"github.com/gx-org/rex/stdlib"
	"github.com/gx-org/rex/value"
)

func newBuilder() *builder.Builder {
	return builder.New(stdlib.Registry(), nil)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		src   string
		codes []fmterr.Code
	}{
		{src: `md5(`, codes: []fmterr.Code{fmterr.CodeSyntax}},
		{src: `}
func other() {`, codes: []fmterr.Code{fmterr.CodeSyntax}},
		{src: `x = (bogus: 5)`, codes: []fmterr.Code{fmterr.CodeSyntax}},
		{src: `md5((value: "a"))`, codes: []fmterr.Code{fmterr.CodeSyntax}},
		{src: `for {}`, codes: []fmterr.Code{fmterr.CodeUnsupported}},
		{src: `x := []int{}`, codes: []fmterr.Code{fmterr.CodeUnsupported}},
		{src: `nope(1)`, codes: []fmterr.Code{fmterr.CodeUndefinedFunction}},
		{src: `md5(x)`, codes: []fmterr.Code{fmterr.CodeUndefinedVariable}},
		{src: `md5("a", "b")`, codes: []fmterr.Code{fmterr.CodeTooManyArguments}},
		{src: `md5(valu: "a")`, codes: []fmterr.Code{fmterr.CodeUnknownKeyword, fmterr.CodeMissingArgument}},
		{src: `md5(value: "a", value: "b")`, codes: []fmterr.Code{fmterr.CodeDuplicateArgument}},
		{src: `md5()`, codes: []fmterr.Code{fmterr.CodeMissingArgument}},
		{src: `md5(1)`, codes: []fmterr.Code{fmterr.CodeInvalidArgumentType}},
		{src: `sha2("a", variant: event.variant)`, codes: []fmterr.Code{fmterr.CodeExpectedLiteral}},
		{src: `if "yes" { md5("a") }`, codes: []fmterr.Code{fmterr.CodeInvalidArgumentType}},
		{
			src: `nope(1)
md5(x)
sha2("a", variant: "SHA-0")`,
			codes: []fmterr.Code{fmterr.CodeUndefinedFunction, fmterr.CodeUndefinedVariable, fmterr.CodeInvalidVariant},
		},
	}
	for _, test := range tests {
		_, err := newBuilder().Build(test.src)
		if err == nil {
			t.Errorf("%s: no error", test.src)
			continue
		}
		var got []fmterr.Code
		for _, d := range fmterr.Diagnostics(err) {
			got = append(got, d.Code)
		}
		// A syntax error can be reported more than once by the parser.
		got = slices.Compact(got)
		if diff := cmp.Diff(test.codes, got); diff != "" {
			t.Errorf("%s: unexpected codes (-want +got):\n%s\nerror: %v", test.src, diff, err)
		}
	}
}

func TestKeywordArguments(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{
			src:  `parse_grok(event.message, "%{INT:n}", remove_empty: true)`,
			want: `{parse_grok(event.message, "%{INT:n}", remove_empty: true)}`,
		},
		{
			src:  `parse_grok(pattern: "%{INT:n}", value: event.message)`,
			want: `{parse_grok(event.message, "%{INT:n}")}`,
		},
		{
			src:  `parse_grok(to_string(value: (1)), pattern: "%{INT:n}")`,
			want: `{parse_grok(to_string(1), "%{INT:n}")}`,
		},
		{
			// Colons in strings do not name arguments.
			src:  `md5(event.message) == "x:y"`,
			want: `{(md5(event.message) == "x:y")}`,
		},
	}
	for _, test := range tests {
		prog, err := newBuilder().Build(test.src)
		if err != nil {
			t.Errorf("%s: %+v", test.src, err)
			continue
		}
		if diff := cmp.Diff(test.want, prog.String()); diff != "" {
			t.Errorf("%s: unexpected program (-want +got):\n%s", test.src, diff)
		}
	}
}

func TestVariableTypes(t *testing.T) {
	tests := []struct {
		src  string
		want map[string]ir.TypeDef
	}{
		{
			src: `parsed, err = parse_grok(event.message, "%{INT:n}")`,
			want: map[string]ir.TypeDef{
				"parsed": ir.TypeOf(value.KindObject | value.KindNull),
				"err":    ir.TypeOf(value.KindBytes | value.KindNull),
			},
		},
		{
			src: `digest, err := md5("a")`,
			want: map[string]ir.TypeDef{
				"digest": ir.TypeOf(value.KindBytes),
				"err":    ir.TypeOf(value.KindNull),
			},
		},
		{
			src: `if event.a == 1 {
	x = 1
} else {
	y = "a"
	x = "b"
}`,
			want: map[string]ir.TypeDef{
				"x": ir.TypeOf(value.KindInteger | value.KindBytes),
				"y": ir.TypeOf(value.KindBytes | value.KindNull),
			},
		},
	}
	for _, test := range tests {
		prog, err := newBuilder().Build(test.src)
		if err != nil {
			t.Errorf("%s: %+v", test.src, err)
			continue
		}
		for name, want := range test.want {
			got, ok := prog.Env().Var(name)
			if !ok {
				t.Errorf("%s: variable %s not defined", test.src, name)
				continue
			}
			if got != want {
				t.Errorf("%s: variable %s has type %s but want %s", test.src, name, got, want)
			}
		}
	}
}

func TestProgramTypeDef(t *testing.T) {
	tests := []struct {
		src  string
		want ir.TypeDef
	}{
		{src: ``, want: ir.TypeOf(value.KindNull)},
		{src: `md5("foo")`, want: ir.TypeOf(value.KindBytes)},
		{src: `md5(event.message)`, want: ir.TypeOf(value.KindBytes).OrFail()},
		{src: `parse_grok("a", "%{WORD:w}")`, want: ir.TypeOf(value.KindObject).OrFail()},
		{src: `v, err = parse_grok("a", "%{WORD:w}")`, want: ir.TypeOf(value.KindObject | value.KindNull)},
		{src: `get_hostname() != ""`, want: ir.TypeOf(value.KindBoolean).OrFail()},
	}
	for _, test := range tests {
		prog, err := newBuilder().Build(test.src)
		if err != nil {
			t.Errorf("%s: %+v", test.src, err)
			continue
		}
		if got := prog.TypeDef(); got != test.want {
			t.Errorf("%s: got type %s but want %s", test.src, got, test.want)
		}
	}
}

func TestSpecializations(t *testing.T) {
	prog, err := newBuilder().Build(`a = sha2("a")
b = sha2("b", variant: "SHA-256")
c = parse_grok(event.message, "%{WORD:w}")
md5(a)`)
	if err != nil {
		t.Fatal(err)
	}
	if prog.Specializations != 3 {
		t.Errorf("got %d specializations but want 3", prog.Specializations)
	}
}

func TestRender(t *testing.T) {
	src := `a = md5(1)
b = nope()`
	_, err := newBuilder().Build(src)
	if err == nil {
		t.Fatal("no error")
	}
	got := fmterr.Render(err, src)
	for _, want := range []string{
		`error[E110]: invalid argument type: "value" of md5 expects bytes, got integer`,
		"1:9 ^",
		"error[E105]: call to undefined function nope",
		"2:5 ^",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("rendering does not contain %q:\n%s", want, got)
		}
	}
}
