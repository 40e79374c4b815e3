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

// Package native lowers compiled programs so that library calls go through native entry points.
//
// Every call of a function exporting a symbol is replaced by a node calling the
// entry point with an abi.Frame. Compiled literals of the call are passed as
// handles owned by the lowered program. Calls of functions without a symbol,
// and everything below them, are left to the interpreter.
package native

import (
	"go/ast"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/gx-org/rex/api/options"
	"github.com/gx-org/rex/build/builder"
	"github.com/gx-org/rex/build/fmterr"
	"github.com/gx-org/rex/build/function"
	"github.com/gx-org/rex/build/ir"
	"github.com/gx-org/rex/cgx/abi"
	"github.com/gx-org/rex/cgx/handle"
	"github.com/gx-org/rex/value"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type (
	// Stats counts the call sites of a lowered program.
	Stats struct {
		// Native is the number of calls going through an entry point.
		Native int
		// Interpreted is the number of calls left to the interpreter.
		Interpreted int
	}

	// Program is a program in which calls have been lowered to native entry points.
	// A program can be run concurrently. It owns the handles of its compiled
	// literals until Close is called.
	Program struct {
		prog    *builder.Program
		root    ir.Expr
		handles []handle.Handle
		stats   Stats
		closed  atomic.Bool
	}
)

type lowering struct {
	logger  *slog.Logger
	version string

	handles []handle.Handle
	stats   Stats
	err     error
}

// Lower returns the native version of a program.
// Only the logger and the ABI version of the options are used.
func Lower(prog *builder.Program, opts ...options.Option) (*Program, error) {
	cfg := options.New(opts...)
	l := &lowering{logger: cfg.Logger, version: cfg.ABIVersion}
	root := ir.Rewrite(prog.Root, l.lowerNode)
	if l.err != nil {
		handle.ReleaseSlice(l.handles)
		return nil, l.err
	}
	l.logger.Debug("program lowered",
		"abi", l.version,
		"native", l.stats.Native,
		"interpreted", l.stats.Interpreted,
		"handles", len(l.handles),
	)
	return &Program{
		prog:    prog,
		root:    root,
		handles: l.handles,
		stats:   l.stats,
	}, nil
}

func (l *lowering) lowerNode(x ir.Expr) ir.Expr {
	call, ok := x.(*function.Call)
	if !ok {
		return x
	}
	exported, ok := call.Func.Symbol()
	if !ok {
		l.stats.Interpreted++
		return call
	}
	sym, ok := abi.Lookup(exported.Name)
	if !ok {
		l.err = multierr.Append(l.err, errors.Errorf("%s: symbol %s has not been registered", call.Func.Identifier(), exported.Name))
		return call
	}
	if err := sym.Compatible(l.version); err != nil {
		l.err = multierr.Append(l.err, fmterr.PrefixWith("%s: ", call.Func.Identifier())(err))
		return call
	}
	n := &callNode{
		call: call,
		sym:  sym,
		args: make([]ir.Expr, len(call.Args)),
		lits: make([]handle.Handle, len(call.Args)),
	}
	for i, lit := range call.Literals {
		if lit != nil {
			n.lits[i] = handle.Wrap(lit)
			l.handles = append(l.handles, n.lits[i])
			continue
		}
		n.args[i] = ir.Rewrite(call.Args[i], l.lowerNode)
	}
	l.stats.Native++
	l.logger.Debug("call lowered",
		"function", call.Func.Identifier(),
		"symbol", sym.Name,
		"addr", sym.Addr(),
	)
	return n
}

// Run evaluates the program over a record.
func (p *Program) Run(record value.Object) (value.Value, error) {
	if p.closed.Load() {
		return nil, errors.New("native program has been closed")
	}
	v, err := p.root.Resolve(ir.NewContext(record))
	if err != nil {
		return nil, fmterr.WithStackTrace(err)
	}
	return v, nil
}

// Program returns the compiled program before lowering.
func (p *Program) Program() *builder.Program {
	return p.prog
}

// Stats returns the number of native and interpreted call sites.
func (p *Program) Stats() Stats {
	return p.stats
}

// Close releases the handles of the compiled literals.
// Closing a program more than once is a no-op.
func (p *Program) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	handle.ReleaseSlice(p.handles)
	p.handles = nil
	return nil
}

func (p *Program) String() string {
	return p.root.String()
}

// callNode calls an entry point.
type callNode struct {
	call *function.Call
	sym  abi.Symbol
	// args are the lowered arguments, nil for literals and absent optional arguments.
	args []ir.Expr
	lits []handle.Handle
}

var _ ir.Expr = (*callNode)(nil)

func (n *callNode) Resolve(ctx *ir.Context) (value.Value, error) {
	frame := abi.NewFrame(len(n.args))
	for i, arg := range n.args {
		if n.lits[i] != 0 {
			frame.PutLiteral(i, n.lits[i])
			continue
		}
		if arg == nil {
			continue
		}
		v, err := arg.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		frame.Put(i, v)
	}
	n.sym.Entry(frame)
	return frame.Result()
}

func (n *callNode) TypeDef(env *ir.Env) ir.TypeDef {
	return n.call.TypeDef(env)
}

func (n *callNode) Source() ast.Node {
	return n.call.Src
}

func (n *callNode) String() string {
	var args []string
	for i, arg := range n.args {
		switch {
		case n.lits[i] != 0:
			args = append(args, "&"+n.call.Literals[i].Keyword)
		case arg != nil:
			args = append(args, arg.String())
		}
	}
	return n.sym.Name + "(" + strings.Join(args, ", ") + ")"
}
