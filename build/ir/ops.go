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

package ir

import (
	"go/ast"
	"go/token"

	"github.com/gx-org/rex/value"
	"github.com/pkg/errors"
)

// Binary is a binary operation.
// Supported operators are ==, !=, &&, || and +.
type Binary struct {
	Src  ast.Node
	Op   token.Token
	X, Y Expr
}

var (
	_ Expr     = (*Binary)(nil)
	_ Rewriter = (*Binary)(nil)
)

// IsBinaryOpSupported returns true if the operator can be used in a Binary expression.
func IsBinaryOpSupported(op token.Token) bool {
	switch op {
	case token.EQL, token.NEQ, token.LAND, token.LOR, token.ADD:
		return true
	}
	return false
}

// Resolve evaluates the operands from left to right and applies the operator.
// && and || do not evaluate their right operand when the result is known.
func (b *Binary) Resolve(ctx *Context) (value.Value, error) {
	x, err := b.X.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	switch b.Op {
	case token.LAND, token.LOR:
		xb, err := value.TryBoolean(x)
		if err != nil {
			return nil, err
		}
		if xb == (b.Op == token.LOR) {
			return value.Boolean(xb), nil
		}
		y, err := b.Y.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		yb, err := value.TryBoolean(y)
		if err != nil {
			return nil, err
		}
		return value.Boolean(yb), nil
	}
	y, err := b.Y.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	switch b.Op {
	case token.EQL:
		return value.Boolean(value.Equal(x, y)), nil
	case token.NEQ:
		return value.Boolean(!value.Equal(x, y)), nil
	case token.ADD:
		return add(x, y)
	}
	return nil, errors.Errorf("operator %s not supported", b.Op)
}

func add(x, y value.Value) (value.Value, error) {
	switch xT := x.(type) {
	case value.Bytes:
		if yT, ok := y.(value.Bytes); ok {
			return append(append(value.Bytes{}, xT...), yT...), nil
		}
	case value.Integer:
		switch yT := y.(type) {
		case value.Integer:
			return xT + yT, nil
		case value.Float:
			return value.Float(xT) + yT, nil
		}
	case value.Float:
		switch yT := y.(type) {
		case value.Integer:
			return xT + value.Float(yT), nil
		case value.Float:
			return xT + yT, nil
		}
	}
	return nil, errors.Errorf("cannot add %s and %s", value.OrNull(x).Kind(), value.OrNull(y).Kind())
}

// TypeDef returns the type of the result.
func (b *Binary) TypeDef(env *Env) TypeDef {
	tx, ty := b.X.TypeDef(env), b.Y.TypeDef(env)
	fallible := tx.Fallible || ty.Fallible
	switch b.Op {
	case token.EQL, token.NEQ:
		return TypeDef{Kind: value.KindBoolean, Fallible: fallible}
	case token.LAND, token.LOR:
		fallible = fallible || !value.KindBoolean.Contains(tx.Kind) || !value.KindBoolean.Contains(ty.Kind)
		return TypeDef{Kind: value.KindBoolean, Fallible: fallible}
	case token.ADD:
		return addTypeDef(tx, ty).FallibleIf(fallible)
	}
	return TypeOf(value.KindNever).OrFail()
}

func addTypeDef(tx, ty TypeDef) TypeDef {
	switch {
	case tx.Kind == value.KindBytes && ty.Kind == value.KindBytes:
		return TypeOf(value.KindBytes)
	case tx.Kind == value.KindInteger && ty.Kind == value.KindInteger:
		return TypeOf(value.KindInteger)
	case value.KindNumber.Contains(tx.Kind) && value.KindNumber.Contains(ty.Kind):
		kind := value.KindFloat
		if tx.Kind.Intersects(value.KindInteger) && ty.Kind.Intersects(value.KindInteger) {
			kind |= value.KindInteger
		}
		return TypeOf(kind)
	}
	var kind value.Kind
	if tx.Kind.Intersects(value.KindBytes) && ty.Kind.Intersects(value.KindBytes) {
		kind |= value.KindBytes
	}
	if tx.Kind.Intersects(value.KindNumber) && ty.Kind.Intersects(value.KindNumber) {
		kind |= value.KindNumber
	}
	return TypeOf(kind).OrFail()
}

// Source returns the operation in the program.
func (b *Binary) Source() ast.Node {
	return b.Src
}

// Rewrite both operands.
func (b *Binary) Rewrite(f func(Expr) Expr) Expr {
	cp := *b
	cp.X = f(b.X)
	cp.Y = f(b.Y)
	return &cp
}

func (b *Binary) String() string {
	return "(" + b.X.String() + " " + b.Op.String() + " " + b.Y.String() + ")"
}

// Not negates a boolean.
type Not struct {
	Src ast.Node
	X   Expr
}

var (
	_ Expr     = (*Not)(nil)
	_ Rewriter = (*Not)(nil)
)

// Resolve evaluates the operand and negates it.
func (n *Not) Resolve(ctx *Context) (value.Value, error) {
	x, err := n.X.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	b, err := value.TryBoolean(x)
	if err != nil {
		return nil, err
	}
	return value.Boolean(!b), nil
}

// TypeDef returns a boolean, fallible if the operand may not be a boolean.
func (n *Not) TypeDef(env *Env) TypeDef {
	return TypeOf(value.KindBoolean).FallibleIf(MayFail(env, n.X, value.KindBoolean))
}

// Source returns the operation in the program.
func (n *Not) Source() ast.Node {
	return n.Src
}

// Rewrite the operand.
func (n *Not) Rewrite(f func(Expr) Expr) Expr {
	cp := *n
	cp.X = f(n.X)
	return &cp
}

func (n *Not) String() string {
	return "!" + n.X.String()
}
