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

package value_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/rex/value"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind value.Kind
		want string
	}{
		{kind: value.KindBytes, want: "bytes"},
		{kind: value.KindBytes | value.KindInteger, want: "bytes or integer"},
		{kind: value.KindAny, want: "any"},
		{kind: value.KindNever, want: "never"},
		{kind: value.KindNumber | value.KindNull, want: "integer or float or null"},
	}
	for _, test := range tests {
		if got := test.kind.String(); got != test.want {
			t.Errorf("Kind(%d).String() = %q, want %q", test.kind, got, test.want)
		}
	}
}

func TestKindSet(t *testing.T) {
	if !value.KindAny.Contains(value.KindObject) {
		t.Errorf("any should contain object")
	}
	if value.KindBytes.Contains(value.KindBytes | value.KindNull) {
		t.Errorf("bytes should not contain bytes or null")
	}
	if value.KindBytes.Intersects(value.KindNumber) {
		t.Errorf("bytes should not intersect numbers")
	}
	if !value.KindFloat.IsExact() || value.KindNumber.IsExact() {
		t.Errorf("wrong exactness")
	}
}

func TestTake(t *testing.T) {
	var slot value.Value = value.Bytes("foo")
	got := value.Take(&slot)
	if !value.Equal(got, value.Bytes("foo")) {
		t.Errorf("Take returned %v, want \"foo\"", got)
	}
	if _, ok := slot.(value.Null); !ok {
		t.Errorf("slot holds %v after Take, want null", slot)
	}
	if again := value.Take(&slot); again.Kind() != value.KindNull {
		t.Errorf("second Take returned %v, want null", again)
	}
}

func TestCloneIsDeep(t *testing.T) {
	src := value.MustFromGo(map[string]any{"a": []any{"x", map[string]any{"b": true}}})
	cl := value.Clone(src)
	cl.(value.Object)["a"].(value.Array)[1].(value.Object)["b"] = value.Boolean(false)
	if !value.Truthy(value.Get(src, value.Path{"a"}).(value.Array)[1].(value.Object)["b"]) {
		t.Errorf("modifying the clone modified the source: %v", src)
	}
}

func TestString(t *testing.T) {
	v := value.MustFromGo(map[string]any{
		"b": []any{int64(1), 2.5, nil},
		"a": "x",
		"c": 3.0,
	})
	const want = `{"a": "x", "b": [1, 2.5, null], "c": 3.0}`
	if got := v.String(); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestParseJSON(t *testing.T) {
	got, err := value.ParseJSON([]byte(`{"n": 1, "f": 1.5, "s": "x", "l": [true, null]}`))
	if err != nil {
		t.Fatal(err)
	}
	want := value.Object{
		"n": value.Integer(1),
		"f": value.Float(1.5),
		"s": value.Bytes("x"),
		"l": value.Array{value.Boolean(true), value.Null{}},
	}
	if !value.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	out, err := value.MarshalJSON(got)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(`{"f":1.5,"l":[true,null],"n":1,"s":"x"}`, string(out)); diff != "" {
		t.Errorf("unexpected JSON (-want +got):\n%s", diff)
	}
	if _, err := value.ParseJSON([]byte(`{} {}`)); err == nil {
		t.Errorf("expected an error for trailing data")
	}
}

func TestPath(t *testing.T) {
	root := value.Object{}
	if err := value.Set(root, value.Path{"a", "b"}, value.Integer(1)); err != nil {
		t.Fatal(err)
	}
	if got := value.Get(root, value.Path{"a", "b"}); !value.Equal(got, value.Integer(1)) {
		t.Errorf("got %v, want 1", got)
	}
	if got := value.Get(root, value.Path{"a", "c"}); got.Kind() != value.KindNull {
		t.Errorf("got %v, want null", got)
	}
	if err := value.Set(root, value.Path{"a", "b", "c"}, value.Null{}); err == nil {
		t.Errorf("expected an error when setting a field of an integer")
	}
}

func TestTryBytes(t *testing.T) {
	if _, err := value.TryBytes(value.Integer(1)); err == nil || err.Error() != "expected bytes, got integer" {
		t.Errorf("unexpected error: %v", err)
	}
	s, err := value.TryBytesUTF8Lossy(value.Bytes("a\xffb"))
	if err != nil {
		t.Fatal(err)
	}
	if s != "a�b" {
		t.Errorf("got %q", s)
	}
}

func TestKeys(t *testing.T) {
	obj := value.Object{"c": value.Null{}, "a": value.Null{}, "b": value.Null{}}
	if diff := cmp.Diff([]string{"a", "b", "c"}, obj.Keys()); diff != "" {
		t.Errorf("unexpected keys (-want +got):\n%s", diff)
	}
	if got := (value.Object{}).Keys(); len(got) != 0 {
		t.Errorf("got keys %v for an empty object", got)
	}
}

func TestMarshalJSONNonFinite(t *testing.T) {
	tests := []struct {
		v    value.Value
		want string
	}{
		{
			v:    value.Float(math.NaN()),
			want: "cannot encode float NaN at . into JSON",
		},
		{
			v:    value.Object{"a": value.Array{value.Float(1), value.Float(math.Inf(1))}},
			want: "cannot encode float +Inf at .a.1 into JSON",
		},
		{
			v:    value.Object{"n": value.Float(math.Inf(-1))},
			want: "cannot encode float -Inf at .n into JSON",
		},
	}
	for _, test := range tests {
		out, err := value.MarshalJSON(test.v)
		if err == nil {
			t.Errorf("%s: got %s but want an error", test.v, out)
			continue
		}
		if got := err.Error(); got != test.want {
			t.Errorf("%s: got error %q but want %q", test.v, got, test.want)
		}
	}
}
