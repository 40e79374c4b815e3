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

package builder

import (
	"go/scanner"
	"go/token"
)

// blankKeywords replaces the keywords of keyword arguments by spaces so that
// the program can be parsed as Go. Offsets in the program are preserved.
// Only parentheses following an identifier or a closing parenthesis are
// calls: a colon in other parentheses is left to the parser.
// It returns the rewritten source and the keywords indexed by the offset of
// the argument they name.
func blankKeywords(src string) (string, map[int]string) {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))
	var s scanner.Scanner
	// Errors are reported by the parser.
	s.Init(file, []byte(src), nil, 0)

	buf := []byte(src)
	keywords := make(map[int]string)
	var (
		// calls records, for each open parenthesis, if it starts the arguments of a call.
		calls         []bool
		prev, prev2   token.Token
		prevLit       string
		prevOff       int
		pendingKw     string
		pendingActive bool
	)
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		off := file.Offset(pos)
		if pendingActive {
			keywords[off] = pendingKw
			pendingActive = false
		}
		switch tok {
		case token.LPAREN:
			calls = append(calls, prev == token.IDENT || prev == token.RPAREN)
		case token.RPAREN:
			if len(calls) > 0 {
				calls = calls[:len(calls)-1]
			}
		case token.COLON:
			inCall := len(calls) > 0 && calls[len(calls)-1]
			if inCall && prev == token.IDENT && (prev2 == token.LPAREN || prev2 == token.COMMA) {
				for i := prevOff; i < prevOff+len(prevLit); i++ {
					buf[i] = ' '
				}
				buf[off] = ' '
				pendingKw, pendingActive = prevLit, true
			}
		}
		prev2, prev = prev, tok
		prevLit, prevOff = lit, off
	}
	return string(buf), keywords
}
