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

// Package grok compiles grok patterns into regular expressions.
//
// A grok pattern is a regular expression in which %{NAME} is replaced by the
// definition of NAME and %{NAME:field} also captures the text matched by NAME
// into field. %{NAME=definition} and %{NAME:field=definition} define NAME
// inline for the rest of the pattern.
package grok

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

// maxDepth bounds the nesting of definitions, which detects recursive definitions.
const maxDepth = 32

const groupPrefix = "grok__"

var reference = regexp.MustCompile(`%\{(\w+)(?::([\w@.\[\]:;/ -]+))?(?:=([^{}]+))?\}`)

type (
	// Grok is a dictionary of named definitions.
	Grok struct {
		defs map[string]string
	}

	// Pattern is a compiled grok pattern. It is immutable and safe for concurrent use.
	Pattern struct {
		src    string
		re     *regexp.Regexp
		fields []string
		// groups maps the index of a group of re to the index of its field, or -1.
		groups []int
	}

	// Capture is a field captured by a pattern.
	Capture struct {
		Field string
		Value string
	}
)

// New returns a dictionary with the default definitions and additional ones.
// Additional definitions replace default definitions with the same name.
func New(defs map[string]string) *Grok {
	all := maps.Clone(defaultDefinitions)
	maps.Copy(all, defs)
	return &Grok{defs: all}
}

var defaultGrok = New(nil)

// Compile a pattern with the default definitions.
func Compile(pattern string) (*Pattern, error) {
	return defaultGrok.Compile(pattern)
}

// Definitions returns the sorted names of the definitions.
func (g *Grok) Definitions() []string {
	keys := maps.Keys(g.defs)
	slices.Sort(keys)
	return keys
}

// Compile a pattern.
func (g *Grok) Compile(pattern string) (*Pattern, error) {
	p := &Pattern{src: pattern}
	x := &expansion{grok: g, pattern: p, inline: make(map[string]string)}
	expanded, err := x.expand(pattern, 0)
	if err != nil {
		return nil, err
	}
	if p.re, err = regexp.Compile(expanded); err != nil {
		return nil, errors.Errorf("invalid regular expression in grok pattern: %v", err)
	}
	p.groups = make([]int, p.re.NumSubexp()+1)
	for i, name := range p.re.SubexpNames() {
		p.groups[i] = -1
		if field, ok := strings.CutPrefix(name, groupPrefix); ok {
			if _, err := fmt.Sscanf(field, "%d", &p.groups[i]); err != nil {
				p.groups[i] = -1
			}
		}
	}
	return p, nil
}

type expansion struct {
	grok    *Grok
	pattern *Pattern
	inline  map[string]string
}

func (x *expansion) definition(name string) (string, bool) {
	if def, ok := x.inline[name]; ok {
		return def, true
	}
	def, ok := x.grok.defs[name]
	return def, ok
}

func (x *expansion) expand(pattern string, depth int) (string, error) {
	if depth > maxDepth {
		return "", errors.Errorf("grok pattern definitions nested more than %d levels: recursive definition?", maxDepth)
	}
	var b strings.Builder
	last := 0
	for _, loc := range reference.FindAllStringSubmatchIndex(pattern, -1) {
		if err := checkText(pattern[last:loc[0]]); err != nil {
			return "", err
		}
		b.WriteString(pattern[last:loc[0]])
		last = loc[1]
		name := pattern[loc[2]:loc[3]]
		if loc[6] >= 0 {
			x.inline[name] = pattern[loc[6]:loc[7]]
		}
		def, ok := x.definition(name)
		if !ok {
			return "", errors.Errorf("The given pattern definition name %q could not be found in the definition map", name)
		}
		sub, err := x.expand(def, depth+1)
		if err != nil {
			return "", err
		}
		if loc[4] < 0 {
			fmt.Fprintf(&b, "(?:%s)", sub)
			continue
		}
		// Field names are not always valid group names: groups are named by index.
		fmt.Fprintf(&b, "(?P<%s%d>%s)", groupPrefix, len(x.pattern.fields), sub)
		x.pattern.fields = append(x.pattern.fields, pattern[loc[4]:loc[5]])
	}
	if err := checkText(pattern[last:]); err != nil {
		return "", err
	}
	b.WriteString(pattern[last:])
	return b.String(), nil
}

// checkText returns an error if text between references starts a reference.
func checkText(text string) error {
	start := strings.Index(text, "%{")
	if start < 0 {
		return nil
	}
	ref := text[start:]
	if end := strings.IndexByte(ref, '}'); end >= 0 {
		ref = ref[:end+1]
	}
	return errors.Errorf("invalid grok reference %q", ref)
}

// String returns the source of the pattern.
func (p *Pattern) String() string {
	return p.src
}

// Fields returns the fields captured by the pattern, in the order they appear in the pattern.
func (p *Pattern) Fields() []string {
	return slices.Clone(p.fields)
}

// Match returns the fields captured in the text and false if the pattern does not match.
// A field in an alternative that did not match is captured as an empty string.
// If a field is captured more than once, the last non-empty capture is kept.
func (p *Pattern) Match(text string) ([]Capture, bool) {
	m := p.re.FindStringSubmatchIndex(text)
	if m == nil {
		return nil, false
	}
	var captures []Capture
	index := make(map[string]int, len(p.fields))
	for i, field := range p.groups {
		if field < 0 || field >= len(p.fields) {
			continue
		}
		val := ""
		if m[2*i] >= 0 {
			val = text[m[2*i]:m[2*i+1]]
		}
		fieldName := p.fields[field]
		prev, seen := index[fieldName]
		if !seen {
			index[fieldName] = len(captures)
			captures = append(captures, Capture{Field: fieldName, Value: val})
			continue
		}
		if val != "" {
			captures[prev].Value = val
		}
	}
	return captures, true
}
