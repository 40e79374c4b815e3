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
	"go/ast"
	"go/token"
	"strings"
)

// Span is a range of bytes [Start, End) in the source of a program.
type Span struct {
	Start, End int
}

// String returns the span as start..end.
func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Source maps positions of a parsed file back to the source of the program.
//
// The program source may have been embedded in a larger file to be parsed:
// Offset is the position of the first byte of the program in that file.
type Source struct {
	FSet   *token.FileSet
	Offset int
	Text   string
}

func (src *Source) offset(pos token.Pos) int {
	if src == nil || src.FSet == nil || !pos.IsValid() {
		return 0
	}
	off := src.FSet.Position(pos).Offset - src.Offset
	return max(0, min(off, len(src.Text)))
}

// Span returns the span of a node in the program source.
func (src *Source) Span(node ast.Node) Span {
	if node == nil {
		return Span{}
	}
	return Span{Start: src.offset(node.Pos()), End: src.offset(node.End())}
}

// LineCol returns the 1-based line and column of an offset in a text.
func LineCol(text string, offset int) (line, col int) {
	offset = max(0, min(offset, len(text)))
	before := text[:offset]
	line = strings.Count(before, "\n") + 1
	col = offset - strings.LastIndex(before, "\n")
	return
}
