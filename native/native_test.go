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

package native_test

import (
	"fmt"
	"go/ast"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/rex/api/options"
	"github.com/gx-org/rex/build/builder"
	"github.com/gx-org/rex/build/fmterr"
	"github.com/gx-org/rex/build/function"
	"github.com/gx-org/rex/build/ir"
	"github.com/gx-org/rex/cgx/abi"
	"github.com/gx-org/rex/cgx/handle"
	"github.com/gx-org/rex/interp"
	"github.com/gx-org/rex/native"
	"github.com/gx-org/rex/stdlib"
	"github.com/gx-org/rex/value"
)

// prefix prepends a literal to a value and counts how many times its literal is compiled.
type prefix struct {
	function.Base
	compiled atomic.Int32
}

var prefixFunc = &prefix{Base: function.Base{
	Name: "prefix",
	Params: []function.Parameter{
		{Keyword: "value", Kind: value.KindBytes, Required: true},
		{Keyword: "prefix", Kind: value.KindBytes, Required: true},
	},
	Native: abi.Symbol{Name: "rex_test_prefix", Entry: prefixEntry, Version: abi.Version},
}}

func (f *prefix) Compile(ctx *function.CompileContext, args *function.ArgumentList) (ir.Expr, error) {
	p, err := function.CompileLiteral(args, "prefix", nil, fmterr.CodeInvalidArgumentType, func(v value.Value) (*string, error) {
		f.compiled.Add(1)
		s, err := value.TryBytesUTF8Lossy(v)
		return &s, err
	})
	if err != nil {
		return nil, err
	}
	return &prefixNode{value: args.Required("value"), prefix: p}, nil
}

func addPrefix(v value.Value, p *string) (value.Value, error) {
	s, err := value.TryBytesUTF8Lossy(v)
	if err != nil {
		return nil, err
	}
	return value.Bytes(*p + s), nil
}

type prefixNode struct {
	value  ir.Expr
	prefix *string
}

func (n *prefixNode) Resolve(ctx *ir.Context) (value.Value, error) {
	v, err := n.value.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return addPrefix(v, n.prefix)
}

func (n *prefixNode) TypeDef(*ir.Env) ir.TypeDef { return ir.TypeOf(value.KindBytes) }
func (n *prefixNode) Source() ast.Node           { return nil }
func (n *prefixNode) String() string             { return "prefix(" + n.value.String() + ")" }

func prefixEntry(f *abi.Frame) {
	v := f.Take(0)
	f.Return(addPrefix(v, abi.Literal[*string](f, 1, "prefix")))
}

// unlinked exports a symbol that is never registered.
type unlinked struct {
	function.Base
}

var unlinkedFunc = &unlinked{Base: function.Base{
	Name:   "unlinked",
	Native: abi.Symbol{Name: "rex_test_unlinked", Entry: func(f *abi.Frame) { f.Return(value.Null{}, nil) }, Version: abi.Version},
}}

func (f *unlinked) Compile(*function.CompileContext, *function.ArgumentList) (ir.Expr, error) {
	return ir.NewLiteral(value.Null{}), nil
}

func init() {
	if err := abi.Register(prefixFunc.Native); err != nil {
		panic(err)
	}
}

func newBuilder(t *testing.T) *builder.Builder {
	t.Helper()
	reg, err := function.NewRegistry(append(stdlib.Functions(), prefixFunc, unlinkedFunc)...)
	if err != nil {
		t.Fatal(err)
	}
	return builder.New(reg, nil)
}

func build(t *testing.T, bld *builder.Builder, src string) *builder.Program {
	t.Helper()
	prog, err := bld.Build(src)
	if err != nil {
		t.Fatalf("cannot build:\n%s\nerror: %+v", src, err)
	}
	return prog
}

func lower(t *testing.T, prog *builder.Program, opts ...options.Option) *native.Program {
	t.Helper()
	lowered, err := native.Lower(prog, opts...)
	if err != nil {
		t.Fatalf("cannot lower %s: %+v", prog, err)
	}
	t.Cleanup(func() {
		if err := lowered.Close(); err != nil {
			t.Error(err)
		}
	})
	return lowered
}

func TestMatchesInterpreter(t *testing.T) {
	bld := newBuilder(t)
	tests := []struct {
		src    string
		record string
		// err is the error returned by both paths, if any.
		err string
	}{
		{src: `md5("foo")`},
		{
			src:    `event.digest = sha2(event.message, variant: "SHA-256")`,
			record: `{"message": "hello"}`,
		},
		{
			src: `parsed, err = parse_grok(event.message, "%{LOGLEVEL:level} %{GREEDYDATA:msg}")
if err == null {
	event.level = parsed.level
}
event`,
			record: `{"message": "INFO all good"}`,
		},
		{
			src:    `parse_grok(event.message, "%{INT:n}")`,
			record: `{"message": "no number"}`,
		},
		{src: `parse_regex(to_string(42), "(?P<n>\\d+)", numeric_groups: true)`},
		{src: `md5(prefix(to_string(1), "x"))`},
		{
			src:    `sha3(prefix(event.name, "hello "), variant: "SHA3-256")`,
			record: `{"name": "world"}`,
		},
		{src: `sha1(event.missing)`},
		{
			// Arguments are evaluated in parameter order, whatever the order of the keywords.
			src:    `parse_grok(remove_empty: !event.x, value: to_string(event.arr), pattern: "%{INT:n}")`,
			record: `{"x": "s", "arr": [1]}`,
			err:    "unable to coerce array into bytes",
		},
		{
			src:    `parse_grok(remove_empty: !event.x, value: to_string(event.n), pattern: "%{INT:n}")`,
			record: `{"x": "s", "n": 42}`,
			err:    "expected boolean, got bytes",
		},
	}
	for i, test := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			prog := build(t, bld, test.src)
			lowered := lower(t, prog)
			record := parseRecord(t, test.record)
			wantRecord := value.Clone(record).(value.Object)
			want, wantErr := interp.New(prog).Run(wantRecord)
			got, gotErr := lowered.Run(record)
			if (wantErr == nil) != (gotErr == nil) {
				t.Fatalf("interpreter error: %v\nnative error: %v", wantErr, gotErr)
			}
			if test.err != "" && (wantErr == nil || wantErr.Error() != test.err) {
				t.Errorf("got interpreter error %v but want %q", wantErr, test.err)
			}
			if wantErr != nil {
				if diff := cmp.Diff(wantErr.Error(), gotErr.Error()); diff != "" {
					t.Errorf("error mismatch (-interp +native):\n%s", diff)
				}
				return
			}
			if !value.Equal(got, want) {
				t.Errorf("got %s but want %s", got, want)
			}
			if !value.Equal(record, wantRecord) {
				t.Errorf("got record %s but want %s", record, wantRecord)
			}
		})
	}
}

func parseRecord(t *testing.T, s string) value.Object {
	t.Helper()
	if s == "" {
		return value.Object{}
	}
	v, err := value.ParseJSON([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	obj, ok := v.(value.Object)
	if !ok {
		t.Fatalf("record %s is a %s, not an object", s, v.Kind())
	}
	return obj
}

func TestStats(t *testing.T) {
	bld := newBuilder(t)
	tests := []struct {
		src  string
		want native.Stats
	}{
		{src: `md5("a")`, want: native.Stats{Native: 1}},
		{src: `get_hostname()`, want: native.Stats{Interpreted: 1}},
		{src: `md5(to_string(get_hostname()))`, want: native.Stats{Native: 1, Interpreted: 1}},
		{src: `x = sha2(md5("a"))
if x != "" { md5(x) } else { sha1(x) }`, want: native.Stats{Native: 4}},
	}
	for _, test := range tests {
		lowered := lower(t, build(t, bld, test.src))
		if diff := cmp.Diff(test.want, lowered.Stats()); diff != "" {
			t.Errorf("%s: unexpected stats (-want +got):\n%s", test.src, diff)
		}
	}
}

func TestSpecializedOnce(t *testing.T) {
	bld := newBuilder(t)
	before := prefixFunc.compiled.Load()
	prog := build(t, bld, `a = prefix(event.name, "hello ")
b = prefix(a, ">")
b`)
	if got := prefixFunc.compiled.Load() - before; got != 2 {
		t.Errorf("literal compiled %d times but want 2 (once per call site)", got)
	}
	if prog.Specializations != 2 {
		t.Errorf("got %d specializations but want 2", prog.Specializations)
	}
	lowered := lower(t, prog)
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprint("user", i)
			got, err := lowered.Run(value.Object{"name": value.Bytes(name)})
			if err != nil {
				t.Error(err)
				return
			}
			if want := value.Bytes(">hello " + name); !value.Equal(got, want) {
				t.Errorf("got %s but want %s", got, want)
			}
		}()
	}
	wg.Wait()
	if got := prefixFunc.compiled.Load() - before; got != 2 {
		t.Errorf("literal compiled %d times after running but want 2", got)
	}
}

func TestHandles(t *testing.T) {
	bld := newBuilder(t)
	prog := build(t, bld, `a = sha2("x")
b = parse_grok("1", "%{INT:n}")
c = md5(to_string(1))
b`)
	before := handle.Count()
	lowered, err := native.Lower(prog)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := handle.Count()-before, 2; got != want {
		t.Errorf("lowering created %d handles but want %d:\n%s", got, want, handle.Dump())
	}
	if _, err := lowered.Run(value.Object{}); err != nil {
		t.Error(err)
	}
	if err := lowered.Close(); err != nil {
		t.Fatal(err)
	}
	if got := handle.Count(); got != before {
		t.Errorf("%d handles left after close but want %d:\n%s", got, before, handle.Dump())
	}
	if err := lowered.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if _, err := lowered.Run(value.Object{}); err == nil {
		t.Errorf("running a closed program did not fail")
	}
}

func TestLowerErrors(t *testing.T) {
	bld := newBuilder(t)
	tests := []struct {
		src     string
		version string
		want    string
	}{
		{
			src:     `md5("a")`,
			version: "v2.0.0",
			want:    "incompatible with ABI v2.0.0",
		},
		{
			src:     `md5("a")`,
			version: "v1.1.0",
			want:    "but ABI v1.1.0 is required",
		},
		{
			src:     `md5("a")`,
			version: "1.0",
			want:    `invalid generator ABI version "1.0"`,
		},
		{
			src:  `unlinked()`,
			want: "symbol rex_test_unlinked has not been registered",
		},
	}
	for _, test := range tests {
		prog := build(t, bld, test.src)
		before := handle.Count()
		var opts []options.Option
		if test.version != "" {
			opts = append(opts, options.WithABIVersion(test.version))
		}
		_, err := native.Lower(prog, opts...)
		if err == nil {
			t.Errorf("%s: lowering with ABI %q did not fail", test.src, test.version)
			continue
		}
		if !strings.Contains(err.Error(), test.want) {
			t.Errorf("%s: got error %q but want it to contain %q", test.src, err.Error(), test.want)
		}
		if got := handle.Count(); got != before {
			t.Errorf("%s: failed lowering leaked %d handles", test.src, got-before)
		}
	}
}

func TestCompatibleVersion(t *testing.T) {
	prog := build(t, newBuilder(t), `sha3("a")`)
	lowered := lower(t, prog, options.WithABIVersion("v1.0.0"))
	if lowered.Stats().Native != 1 {
		t.Errorf("got stats %+v but want one native call", lowered.Stats())
	}
}
