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

// Package builder builds executable rex programs from source text.
//
// A program is a sequence of statements written with Go syntax:
//
//	value, err = parse_grok(event.message, "%{LOGLEVEL:level} %{GREEDYDATA:message}")
//	if err == null {
//		event.level = value.level
//	}
//
// Calls accept keyword arguments, e.g. parse_grok(x, p, remove_empty: true).
// The source is parsed with [go/parser] and every call site is bound against
// a function registry. Errors are accumulated so that all the errors of a
// program are reported at once.
package builder

import (
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"log/slog"

	"github.com/gx-org/rex/build/fmterr"
	"github.com/gx-org/rex/build/function"
	"github.com/gx-org/rex/build/ir"
	"github.com/pkg/errors"
)

type (
	// Builder compiles programs given a function registry.
	// A builder can be used concurrently.
	Builder struct {
		reg    *function.Registry
		logger *slog.Logger
	}

	// Program is a compiled program.
	// A program is immutable and can be evaluated concurrently.
	Program struct {
		// Source of the program.
		Source *fmterr.Source
		// Root evaluates all the statements of the program.
		Root *ir.Block
		// Specializations is the number of literals specialized at compile time.
		Specializations int

		env *ir.Env
	}
)

// New returns a new builder.
// A nil logger discards all messages.
func New(reg *function.Registry, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{reg: reg, logger: logger}
}

// Registry returns the functions available to programs.
func (b *Builder) Registry() *function.Registry {
	return b.reg
}

const (
	programPrefix = "package rex\n\nfunc program() {\n"
	programSuffix = "\n}\n"
	fileName      = "program.rex"
)

// Build compiles a program.
// The returned error contains all the diagnostics of the program.
func (b *Builder) Build(src string) (*Program, error) {
	text, keywords := blankKeywords(src)
	fset := token.NewFileSet()
	source := &fmterr.Source{FSet: fset, Offset: len(programPrefix), Text: src}
	app := fmterr.NewAppender(source)
	file, err := parser.ParseFile(fset, fileName, programPrefix+text+programSuffix, parser.SkipObjectResolution|parser.AllErrors)
	if err != nil {
		appendSyntaxErrors(app, err)
		return nil, app.Err()
	}
	body, ok := programBody(file)
	if !ok {
		app.Appendf(fmterr.CodeSyntax, fmterr.Span{End: len(src)}, "unexpected declaration in program")
		return nil, app.Err()
	}
	s := &scope{
		reg:      b.reg,
		app:      app,
		ctx:      function.NewCompileContext(b.logger),
		env:      ir.NewEnv(),
		keywords: keywords,
	}
	root, ok := s.processBlock(body)
	if !ok {
		return nil, app.Err()
	}
	prog := &Program{
		Source:          source,
		Root:            root,
		Specializations: s.ctx.Specializations(),
		env:             s.env,
	}
	b.logger.Debug("program built",
		"statements", len(root.Exprs),
		"specializations", prog.Specializations,
		"type", prog.TypeDef().String(),
	)
	return prog, nil
}

func programBody(file *ast.File) (*ast.BlockStmt, bool) {
	if len(file.Decls) != 1 {
		return nil, false
	}
	fn, ok := file.Decls[0].(*ast.FuncDecl)
	if !ok || fn.Name.Name != "program" || fn.Body == nil {
		return nil, false
	}
	return fn.Body, true
}

func appendSyntaxErrors(app *fmterr.Appender, err error) {
	var errList scanner.ErrorList
	if !errors.As(err, &errList) {
		app.Append(fmterr.Wrap(fmterr.CodeSyntax, err))
		return
	}
	src := app.Source()
	for _, e := range errList {
		off := max(0, min(e.Pos.Offset-src.Offset, len(src.Text)))
		app.Appendf(fmterr.CodeSyntax, fmterr.Span{Start: off, End: off}, "%s", e.Msg)
	}
}

// TypeDef returns the type of the value returned by the program.
func (p *Program) TypeDef() ir.TypeDef {
	return p.Root.TypeDef(p.env)
}

// Env returns the static environment at the end of the program.
func (p *Program) Env() *ir.Env {
	return p.env
}

func (p *Program) String() string {
	return p.Root.String()
}
