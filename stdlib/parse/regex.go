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
	"regexp"
	"strconv"

	"github.com/gx-org/rex/build/fmterr"
	"github.com/gx-org/rex/build/function"
	"github.com/gx-org/rex/build/ir"
	"github.com/gx-org/rex/cgx/abi"
	"github.com/gx-org/rex/value"
	"github.com/pkg/errors"
)

var errNoRegexMatch = errors.New("could not find any pattern matches")

// ParseRegex returns the groups captured by a regular expression.
// Named groups are always captured. Unnamed groups are captured by index
// when numericGroups is true. Groups that did not participate in the match are null.
func ParseRegex(v, numericGroups value.Value, re *regexp.Regexp) (value.Value, error) {
	s, err := value.TryBytesUTF8Lossy(v)
	if err != nil {
		return nil, err
	}
	numeric, err := value.TryBoolean(numericGroups)
	if err != nil {
		return nil, err
	}
	m := re.FindStringSubmatchIndex(s)
	if m == nil {
		return nil, errNoRegexMatch
	}
	obj := value.Object{}
	for i, name := range re.SubexpNames() {
		var group value.Value = value.Null{}
		if m[2*i] >= 0 {
			group = value.Bytes(s[m[2*i]:m[2*i+1]])
		}
		if numeric {
			obj[strconv.Itoa(i)] = group
		}
		if name != "" {
			obj[name] = value.Clone(group)
		}
	}
	return obj, nil
}

type parseRegex struct {
	function.Base
}

var parseRegexFunc = &parseRegex{Base: function.Base{
	Name: "parse_regex",
	Params: []function.Parameter{
		{Keyword: "value", Kind: value.KindBytes, Required: true},
		{Keyword: "pattern", Kind: value.KindBytes, Required: true},
		{Keyword: "numeric_groups", Kind: value.KindBoolean},
	},
	Samples: []function.Example{
		{
			Title:  "named groups",
			Source: `parse_regex("first group and second group.", "(?P<number>.*?) group")`,
			Result: `{"number": "first"}`,
		},
		{
			Title:  "numeric groups",
			Source: `parse_regex("first group and second group.", "(?P<number>.*?) group", numeric_groups: true)`,
			Result: `{"0": "first group", "1": "first", "number": "first"}`,
		},
		{
			Title:  "no match",
			Source: `parse_regex("first group", "^(?P<n>\\d+)$")`,
			Error:  "could not find any pattern matches",
		},
		{
			Title:  "invalid pattern",
			Source: `parse_regex("x", "(?P<n>")`,
			Error:  "error[E114]: error parsing regexp: missing closing ): `(?P<n>`",
		},
	},
	Native: abi.Symbol{Name: "rex_fn_parse_regex", Entry: parseRegexEntry, Version: abi.Version},
}}

func compileRegex(v value.Value) (*regexp.Regexp, error) {
	s, err := value.TryBytesUTF8Lossy(v)
	if err != nil {
		return nil, err
	}
	return regexp.Compile(s)
}

func (f *parseRegex) Compile(ctx *function.CompileContext, args *function.ArgumentList) (ir.Expr, error) {
	re, err := function.CompileLiteral(args, "pattern", nil, fmterr.CodeInvalidRegex, compileRegex)
	if err != nil {
		return nil, err
	}
	return &parseRegexNode{
		value:         args.Required("value"),
		re:            re,
		numericGroups: args.OptionalOr("numeric_groups", value.Boolean(false)),
	}, nil
}

type parseRegexNode struct {
	value         ir.Expr
	re            *regexp.Regexp
	numericGroups ir.Expr
}

var _ ir.Expr = (*parseRegexNode)(nil)

func (n *parseRegexNode) Resolve(ctx *ir.Context) (value.Value, error) {
	v, err := n.value.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	numericGroups, err := n.numericGroups.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return ParseRegex(v, numericGroups, n.re)
}

func (n *parseRegexNode) TypeDef(*ir.Env) ir.TypeDef {
	return ir.TypeOf(value.KindObject).OrFail()
}

func (n *parseRegexNode) Source() ast.Node {
	return nil
}

func (n *parseRegexNode) String() string {
	return "parse_regex(" + n.value.String() + ", " + strconv.Quote(n.re.String()) + ")"
}

func parseRegexEntry(f *abi.Frame) {
	v := f.Take(0)
	numericGroups, ok := f.TakeOptional(2)
	if !ok {
		numericGroups = value.Boolean(false)
	}
	re := abi.Literal[*regexp.Regexp](f, 1, "parse_regex")
	f.Return(ParseRegex(v, numericGroups, re))
}
