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

package parse

import (
	"go/ast"

	"github.com/gx-org/rex/build/fmterr"
	"github.com/gx-org/rex/build/function"
	"github.com/gx-org/rex/build/ir"
	"github.com/gx-org/rex/cgx/abi"
	"github.com/gx-org/rex/internal/grok"
	"github.com/gx-org/rex/value"
	"github.com/pkg/errors"
)

const grokPattern = "%{TIMESTAMP_ISO8601:timestamp} %{LOGLEVEL:level} %{GREEDYDATA:message}"

// errNoGrokMatch is returned when an input does not match a grok pattern.
var errNoGrokMatch = errors.New("unable to parse input with pattern")

// ParseGrok parses a value with a grok pattern.
func ParseGrok(v, removeEmpty value.Value, pattern *grok.Pattern) (value.Value, error) {
	s, err := value.TryBytesUTF8Lossy(v)
	if err != nil {
		return nil, err
	}
	remove, err := value.TryBoolean(removeEmpty)
	if err != nil {
		return nil, err
	}
	captures, ok := pattern.Match(s)
	if !ok {
		return nil, errNoGrokMatch
	}
	obj := value.Object{}
	for _, c := range captures {
		if remove && c.Value == "" {
			continue
		}
		obj[c.Field] = value.Bytes(c.Value)
	}
	return obj, nil
}

type parseGrok struct {
	function.Base
}

var parseGrokFunc = &parseGrok{Base: function.Base{
	Name: "parse_grok",
	Params: []function.Parameter{
		{Keyword: "value", Kind: value.KindBytes, Required: true},
		{Keyword: "pattern", Kind: value.KindBytes, Required: true},
		{Keyword: "remove_empty", Kind: value.KindBoolean},
	},
	Samples: []function.Example{
		{
			Title:  "parse grok pattern",
			Source: "value = \"2020-10-02T23:22:12.223222Z info Hello world\"\nparse_grok(value, \"" + grokPattern + "\")",
			Result: `{"level": "info", "message": "Hello world", "timestamp": "2020-10-02T23:22:12.223222Z"}`,
		},
		{
			Title:  "no match",
			Source: `parse_grok("an ungrokkable message", "` + grokPattern + `")`,
			Error:  "unable to parse input with pattern",
		},
		{
			Title:  "remove empty captures",
			Source: `parse_grok("2020-10-02T23:22:12.223222Z", "(%{TIMESTAMP_ISO8601:timestamp}|%{LOGLEVEL:level})", remove_empty: true)`,
			Result: `{"timestamp": "2020-10-02T23:22:12.223222Z"}`,
		},
		{
			Title:  "keep empty captures",
			Source: `parse_grok("2020-10-02T23:22:12.223222Z", "(%{TIMESTAMP_ISO8601:timestamp}|%{LOGLEVEL:level})")`,
			Result: `{"level": "", "timestamp": "2020-10-02T23:22:12.223222Z"}`,
		},
		{
			Title:  "undefined pattern",
			Source: `parse_grok("foo", "%{NOG}")`,
			Error:  `error[E109]: The given pattern definition name "NOG" could not be found in the definition map`,
		},
	},
	Native: abi.Symbol{Name: "rex_fn_parse_grok", Entry: parseGrokEntry, Version: abi.Version},
}}

func compileGrok(v value.Value) (*grok.Pattern, error) {
	s, err := value.TryBytesUTF8Lossy(v)
	if err != nil {
		return nil, err
	}
	return grok.Compile(s)
}

func (f *parseGrok) Compile(ctx *function.CompileContext, args *function.ArgumentList) (ir.Expr, error) {
	pattern, err := function.CompileLiteral(args, "pattern", nil, fmterr.CodeInvalidGrokPattern, compileGrok)
	if err != nil {
		return nil, err
	}
	return &parseGrokNode{
		value:       args.Required("value"),
		pattern:     pattern,
		removeEmpty: args.OptionalOr("remove_empty", value.Boolean(false)),
	}, nil
}

type parseGrokNode struct {
	value       ir.Expr
	pattern     *grok.Pattern
	removeEmpty ir.Expr
}

var _ ir.Expr = (*parseGrokNode)(nil)

func (n *parseGrokNode) Resolve(ctx *ir.Context) (value.Value, error) {
	v, err := n.value.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	removeEmpty, err := n.removeEmpty.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return ParseGrok(v, removeEmpty, n.pattern)
}

func (n *parseGrokNode) TypeDef(*ir.Env) ir.TypeDef {
	return ir.TypeOf(value.KindObject).OrFail()
}

func (n *parseGrokNode) Source() ast.Node {
	return nil
}

func (n *parseGrokNode) String() string {
	return "parse_grok(" + n.value.String() + ", " + n.pattern.String() + ")"
}

func parseGrokEntry(f *abi.Frame) {
	v := f.Take(0)
	removeEmpty, ok := f.TakeOptional(2)
	if !ok {
		removeEmpty = value.Boolean(false)
	}
	pattern := abi.Literal[*grok.Pattern](f, 1, "parse_grok")
	f.Return(ParseGrok(v, removeEmpty, pattern))
}
