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

package ir_test

import (
	"go/ast"
	"go/token"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/rex/build/ir"
	"github.com/gx-org/rex/value"
	"github.com/pkg/errors"
)

// failing is an expression always failing at run time.
type failing struct {
	calls *int
}

func (f failing) Resolve(*ir.Context) (value.Value, error) {
	if f.calls != nil {
		*f.calls++
	}
	return nil, errors.New("failing")
}

func (failing) TypeDef(*ir.Env) ir.TypeDef { return ir.TypeOf(value.KindBoolean).OrFail() }
func (failing) Source() ast.Node          { return nil }
func (failing) String() string            { return "failing" }

func lit(x any) *ir.Literal {
	return ir.NewLiteral(value.MustFromGo(x))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		expr    ir.Expr
		want    value.Value
		wantErr string
	}{
		{
			name: "equal",
			expr: &ir.Binary{Op: token.EQL, X: lit("a"), Y: lit("a")},
			want: value.Boolean(true),
		},
		{
			name: "not equal different kinds",
			expr: &ir.Binary{Op: token.NEQ, X: lit(int64(1)), Y: lit(1.0)},
			want: value.Boolean(true),
		},
		{
			name: "and short circuit",
			expr: &ir.Binary{Op: token.LAND, X: lit(false), Y: failing{}},
			want: value.Boolean(false),
		},
		{
			name: "or short circuit",
			expr: &ir.Binary{Op: token.LOR, X: lit(true), Y: failing{}},
			want: value.Boolean(true),
		},
		{
			name:    "or evaluates right",
			expr:    &ir.Binary{Op: token.LOR, X: lit(false), Y: failing{}},
			wantErr: "failing",
		},
		{
			name: "concat",
			expr: &ir.Binary{Op: token.ADD, X: lit("foo"), Y: lit("bar")},
			want: value.Bytes("foobar"),
		},
		{
			name: "add numbers",
			expr: &ir.Binary{Op: token.ADD, X: lit(int64(1)), Y: lit(0.5)},
			want: value.Float(1.5),
		},
		{
			name:    "add mismatch",
			expr:    &ir.Binary{Op: token.ADD, X: lit("a"), Y: lit(int64(1))},
			wantErr: "cannot add bytes and integer",
		},
		{
			name: "not",
			expr: &ir.Not{X: lit(false)},
			want: value.Boolean(true),
		},
		{
			name: "if without else",
			expr: &ir.If{Cond: lit(false), Then: lit("x")},
			want: value.Null{},
		},
		{
			name: "if else",
			expr: &ir.If{Cond: lit(false), Then: lit("x"), Else: lit("y")},
			want: value.Bytes("y"),
		},
		{
			name:    "if non boolean",
			expr:    &ir.If{Cond: lit("true"), Then: lit("x")},
			wantErr: "expected boolean, got bytes",
		},
		{
			name: "empty block",
			expr: &ir.Block{},
			want: value.Null{},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := test.expr.Resolve(ir.NewContext(nil))
			if test.wantErr != "" {
				if err == nil || err.Error() != test.wantErr {
					t.Fatalf("got error %v, want %q", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !value.Equal(got, test.want) {
				t.Errorf("got %v, want %v", got, test.want)
			}
		})
	}
}

func TestBlockStopsAtFirstError(t *testing.T) {
	calls := 0
	block := &ir.Block{Exprs: []ir.Expr{
		failing{calls: &calls},
		failing{calls: &calls},
	}}
	if _, err := block.Resolve(ir.NewContext(nil)); err == nil {
		t.Fatalf("expected an error")
	}
	if calls != 1 {
		t.Errorf("evaluated %d expressions after the first error, want 1", calls)
	}
}

func TestBlockString(t *testing.T) {
	block := &ir.Block{Exprs: []ir.Expr{
		ir.NewLiteral(value.Integer(1)),
		&ir.Not{X: ir.NewLiteral(value.Boolean(true))},
		failing{},
	}}
	if got, want := block.String(), `{1; !true; failing}`; got != want {
		t.Errorf("got %s but want %s", got, want)
	}
	if got, want := (&ir.Block{}).String(), `{}`; got != want {
		t.Errorf("got %s but want %s", got, want)
	}
}

func TestAssignments(t *testing.T) {
	event := value.Object{"message": value.Bytes("hello")}
	ctx := ir.NewContext(event)
	prog := &ir.Block{Exprs: []ir.Expr{
		&ir.Assignment{Target: ir.VarTarget("x"), Value: &ir.EventPath{Path: value.Path{"message"}}},
		&ir.Assignment{Target: ir.EventTarget(value.Path{"parsed", "msg"}), Value: &ir.Variable{Name: "x"}},
		&ir.ErrorAssignment{Value: "v", Err: "err", X: failing{}},
		&ir.Assignment{Target: ir.EventTarget(value.Path{"error"}), Value: &ir.Variable{Name: "err"}},
	}}
	if _, err := prog.Resolve(ctx); err != nil {
		t.Fatal(err)
	}
	want := value.MustFromGo(map[string]any{
		"message": "hello",
		"parsed":  map[string]any{"msg": "hello"},
		"error":   "failing",
	})
	if !value.Equal(event, want) {
		t.Errorf("got %v, want %v", event, want)
	}
	if v := ctx.Var("v"); v.Kind() != value.KindNull {
		t.Errorf("v = %v, want null", v)
	}
}

func TestReplaceEvent(t *testing.T) {
	event := value.Object{"a": value.Integer(1)}
	assign := &ir.Assignment{Target: ir.EventTarget(nil), Value: lit(map[string]any{"b": true})}
	if _, err := assign.Resolve(ir.NewContext(event)); err != nil {
		t.Fatal(err)
	}
	if !value.Equal(event, value.Object{"b": value.Boolean(true)}) {
		t.Errorf("unexpected event %v", event)
	}
	assign = &ir.Assignment{Target: ir.EventTarget(nil), Value: lit("x")}
	if _, err := assign.Resolve(ir.NewContext(event)); err == nil {
		t.Errorf("expected an error when replacing the event with bytes")
	}
}

func TestTypeDef(t *testing.T) {
	env := ir.NewEnv()
	tests := []struct {
		name string
		expr ir.Expr
		want ir.TypeDef
	}{
		{
			name: "literal",
			expr: lit("x"),
			want: ir.TypeOf(value.KindBytes),
		},
		{
			name: "equality of fallible",
			expr: &ir.Binary{Op: token.EQL, X: failing{}, Y: lit(true)},
			want: ir.TypeOf(value.KindBoolean).OrFail(),
		},
		{
			name: "and of non boolean",
			expr: &ir.Binary{Op: token.LAND, X: &ir.EventPath{Path: value.Path{"a"}}, Y: lit(true)},
			want: ir.TypeOf(value.KindBoolean).OrFail(),
		},
		{
			name: "concat",
			expr: &ir.Binary{Op: token.ADD, X: lit("a"), Y: lit("b")},
			want: ir.TypeOf(value.KindBytes),
		},
		{
			name: "add any",
			expr: &ir.Binary{Op: token.ADD, X: &ir.EventPath{Path: value.Path{"a"}}, Y: lit("b")},
			want: ir.TypeOf(value.KindBytes).OrFail(),
		},
		{
			name: "if without else",
			expr: &ir.If{Cond: lit(true), Then: lit(int64(1))},
			want: ir.TypeOf(value.KindInteger | value.KindNull),
		},
		{
			name: "error assignment",
			expr: &ir.ErrorAssignment{Value: "v", Err: "err", X: failing{}},
			want: ir.TypeOf(value.KindBoolean | value.KindNull),
		},
		{
			name: "nested event assignment",
			expr: &ir.Assignment{Target: ir.EventTarget(value.Path{"a", "b"}), Value: lit(int64(1))},
			want: ir.TypeOf(value.KindInteger).OrFail(),
		},
		{
			name: "variable",
			expr: &ir.Variable{Name: "x", Typ: ir.TypeOf(value.KindFloat).OrFail()},
			want: ir.TypeOf(value.KindFloat),
		},
	}
	for _, test := range tests {
		if diff := cmp.Diff(test.want, test.expr.TypeDef(env)); diff != "" {
			t.Errorf("%s: unexpected type (-want +got):\n%s", test.name, diff)
		}
	}
}

func TestRewrite(t *testing.T) {
	expr := &ir.Block{Exprs: []ir.Expr{
		&ir.Binary{Op: token.EQL, X: lit("a"), Y: &ir.Not{X: lit(true)}},
	}}
	var visited []string
	got := ir.Rewrite(expr, func(x ir.Expr) ir.Expr {
		visited = append(visited, x.String())
		if l, ok := x.(*ir.Literal); ok && l.Val.Kind() == value.KindBytes {
			return lit("b")
		}
		return x
	})
	want := []string{`"a"`, "true", "!true", `("b" == !true)`, `{("b" == !true)}`}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Errorf("unexpected visit order (-want +got):\n%s", diff)
	}
	if s := got.String(); s != `{("b" == !true)}` {
		t.Errorf("rewritten expression: %s", s)
	}
	if s := expr.String(); s != `{("a" == !true)}` {
		t.Errorf("original expression has been modified: %s", s)
	}
}

func TestEnvJoin(t *testing.T) {
	env := ir.NewEnv()
	env.SetVar("x", ir.TypeOf(value.KindBytes))
	a, b := env.Clone(), env.Clone()
	a.SetVar("x", ir.TypeOf(value.KindInteger))
	a.SetVar("y", ir.TypeOf(value.KindBoolean).OrFail())
	env.Join(a, b)
	x, _ := env.Var("x")
	y, _ := env.Var("y")
	if x.Kind != value.KindInteger|value.KindBytes {
		t.Errorf("x has kind %s", x.Kind)
	}
	if y.Kind != value.KindBoolean|value.KindNull || y.Fallible {
		t.Errorf("y has type %s", y)
	}
}
