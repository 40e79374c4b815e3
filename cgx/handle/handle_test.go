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

package handle_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/rex/cgx/handle"
)

// checkHandleCount compares the current handle count to a reference.
func checkHandleCount(t *testing.T, startCount int) {
	endCount := handle.Count()
	if endCount != startCount {
		t.Errorf("handles are leaking: started with %d and ended with %d:\n%s", startCount, endCount, handle.Dump())
	}
}

type pattern struct {
	re *regexp.Regexp
}

func TestWrapPointer(t *testing.T) {
	defer checkHandleCount(t, handle.Count())
	want := &pattern{re: regexp.MustCompile(`^\d+$`)}
	h := handle.Wrap(want)
	got := handle.Unwrap[*pattern](h)
	if got != want {
		t.Errorf("Unwrap returned %p, want %p", got, want)
	}
	if !got.re.MatchString("42") {
		t.Errorf("unwrapped pattern does not match")
	}
	handle.Release(h)
}

func TestWrapZero(t *testing.T) {
	defer checkHandleCount(t, handle.Count())
	var p *pattern
	h := handle.Wrap(p)
	if h != 0 {
		t.Errorf("nil pointer wrapped as %v, want 0", h)
	}
	if got := handle.Unwrap[*pattern](h); got != nil {
		t.Errorf("zero handle unwrapped as %v", got)
	}
	handle.Release(h)
}

func TestWrapSlice(t *testing.T) {
	defer checkHandleCount(t, handle.Count())
	words := []string{"the", "quick", "brown", "fox"}
	hs := handle.WrapSlice(words)
	var got []string
	for _, h := range hs {
		got = append(got, handle.Unwrap[string](h))
	}
	if diff := cmp.Diff(words, got); diff != "" {
		t.Errorf("unexpected values (-want +got):\n%s", diff)
	}
	handle.ReleaseSlice(hs)
}

func expectPanic(t *testing.T, contains string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic")
		}
		if msg, _ := r.(string); !strings.Contains(msg, contains) {
			t.Errorf("panic %q does not contain %q", r, contains)
		}
	}()
	f()
}

func TestUnwrapWrongType(t *testing.T) {
	defer checkHandleCount(t, handle.Count())
	h := handle.Wrap(&pattern{})
	defer handle.Release(h)
	expectPanic(t, "not a *regexp.Regexp", func() {
		handle.Unwrap[*regexp.Regexp](h)
	})
}

func TestReleasedHandle(t *testing.T) {
	h := handle.Wrap(&pattern{})
	handle.Release(h)
	expectPanic(t, "invalid handle", func() {
		handle.Unwrap[*pattern](h)
	})
	expectPanic(t, "invalid handle", func() {
		handle.Release(h)
	})
}

func BenchmarkUnwrap(b *testing.B) {
	h := handle.Wrap(&pattern{})
	defer handle.Release(h)
	b.ReportAllocs()
	for range b.N {
		_ = handle.Unwrap[*pattern](h)
	}
}
