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
	"go/ast"
	"go/token"
	"strconv"

	"github.com/gx-org/rex/build/fmterr"
	"github.com/gx-org/rex/build/ir"
	"github.com/gx-org/rex/value"
)

func (s *scope) processExpr(expr ast.Expr) (ir.Expr, bool) {
	switch exprT := expr.(type) {
	case *ast.BasicLit:
		return s.processBasicLit(exprT)
	case *ast.Ident:
		return s.processIdent(exprT)
	case *ast.SelectorExpr:
		return s.processSelector(exprT)
	case *ast.CallExpr:
		return s.processCall(exprT)
	case *ast.ParenExpr:
		return s.processExpr(exprT.X)
	case *ast.UnaryExpr:
		return s.processUnary(exprT)
	case *ast.BinaryExpr:
		return s.processBinary(exprT)
	case *ast.BadExpr:
		return nil, s.errorf(fmterr.CodeSyntax, expr, "invalid expression")
	}
	return nil, s.errorf(fmterr.CodeUnsupported, expr, "expression %T not supported", expr)
}

func (s *scope) processBasicLit(expr *ast.BasicLit) (ir.Expr, bool) {
	switch expr.Kind {
	case token.STRING:
		val, err := strconv.Unquote(expr.Value)
		if err != nil {
			return nil, s.errorf(fmterr.CodeSyntax, expr, "cannot parse string literal %s: %v", expr.Value, err)
		}
		return &ir.Literal{Src: expr, Val: value.Bytes(val)}, true
	case token.INT:
		val, err := strconv.ParseInt(expr.Value, 0, 64)
		if err != nil {
			return nil, s.errorf(fmterr.CodeSyntax, expr, "cannot parse integer literal %s: %v", expr.Value, err)
		}
		return &ir.Literal{Src: expr, Val: value.Integer(val)}, true
	case token.FLOAT:
		val, err := strconv.ParseFloat(expr.Value, 64)
		if err != nil {
			return nil, s.errorf(fmterr.CodeSyntax, expr, "cannot parse float literal %s: %v", expr.Value, err)
		}
		return &ir.Literal{Src: expr, Val: value.Float(val)}, true
	}
	return nil, s.errorf(fmterr.CodeUnsupported, expr, "%s literals not supported", expr.Kind)
}

var reserved = map[string]value.Value{
	"true":  value.Boolean(true),
	"false": value.Boolean(false),
	"null":  value.Null{},
}

func isReserved(name string) bool {
	_, ok := reserved[name]
	return ok
}

func (s *scope) processIdent(ident *ast.Ident) (ir.Expr, bool) {
	if val, ok := reserved[ident.Name]; ok {
		return &ir.Literal{Src: ident, Val: val}, true
	}
	if ident.Name == ir.EventName {
		return &ir.EventPath{Src: ident}, true
	}
	tdef, ok := s.env.Var(ident.Name)
	if !ok {
		return nil, s.errorf(fmterr.CodeUndefinedVariable, ident, "undefined variable %s", ident.Name)
	}
	return &ir.Variable{Src: ident, Name: ident.Name, Typ: tdef}, true
}

// selectorPath returns the identifier at the root of a selector and the path of fields.
func selectorPath(expr *ast.SelectorExpr) (*ast.Ident, value.Path, bool) {
	var path value.Path
	var x ast.Expr = expr
	for {
		switch xT := x.(type) {
		case *ast.SelectorExpr:
			path = append(value.Path{xT.Sel.Name}, path...)
			x = xT.X
		case *ast.Ident:
			return xT, path, true
		default:
			return nil, nil, false
		}
	}
}

func (s *scope) processSelector(expr *ast.SelectorExpr) (ir.Expr, bool) {
	root, path, ok := selectorPath(expr)
	if ok && root.Name == ir.EventName {
		return &ir.EventPath{Src: expr, Path: path}, true
	}
	x, xOk := s.processExpr(expr.X)
	if !xOk {
		return nil, false
	}
	return &ir.Field{Src: expr, X: x, Path: value.Path{expr.Sel.Name}}, true
}

func (s *scope) processUnary(expr *ast.UnaryExpr) (ir.Expr, bool) {
	switch expr.Op {
	case token.NOT:
		x, ok := s.processExpr(expr.X)
		if !ok {
			return nil, false
		}
		return &ir.Not{Src: expr, X: x}, true
	case token.SUB:
		lit, ok := expr.X.(*ast.BasicLit)
		if !ok || (lit.Kind != token.INT && lit.Kind != token.FLOAT) {
			break
		}
		x, ok := s.processBasicLit(&ast.BasicLit{ValuePos: expr.OpPos, Kind: lit.Kind, Value: "-" + lit.Value})
		if !ok {
			return nil, false
		}
		x.(*ir.Literal).Src = expr
		return x, true
	}
	return nil, s.errorf(fmterr.CodeUnsupported, expr, "unary operator %s not supported", expr.Op)
}

func (s *scope) processBinary(expr *ast.BinaryExpr) (ir.Expr, bool) {
	if !ir.IsBinaryOpSupported(expr.Op) {
		return nil, s.errorf(fmterr.CodeUnsupported, expr, "binary operator %s not supported", expr.Op)
	}
	x, xOk := s.processExpr(expr.X)
	y, yOk := s.processExpr(expr.Y)
	if !xOk || !yOk {
		return nil, false
	}
	return &ir.Binary{Src: expr, Op: expr.Op, X: x, Y: y}, true
}
