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

	"github.com/gx-org/rex/build/fmterr"
	"github.com/gx-org/rex/build/ir"
	"github.com/gx-org/rex/value"
)

func (s *scope) processBlock(block *ast.BlockStmt) (*ir.Block, bool) {
	n := &ir.Block{Src: block}
	ok := true
	for _, stmt := range block.List {
		x, xOk := s.processStmt(stmt)
		if x != nil {
			n.Exprs = append(n.Exprs, x)
		}
		ok = ok && xOk
	}
	return n, ok
}

func (s *scope) processStmt(stmt ast.Stmt) (ir.Expr, bool) {
	switch stmtT := stmt.(type) {
	case *ast.ExprStmt:
		return s.processExpr(stmtT.X)
	case *ast.AssignStmt:
		return s.processAssign(stmtT)
	case *ast.IfStmt:
		return s.processIf(stmtT)
	case *ast.BlockStmt:
		return s.processBlock(stmtT)
	case *ast.EmptyStmt:
		return nil, true
	}
	return nil, s.errorf(fmterr.CodeUnsupported, stmt, "statement %T not supported", stmt)
}

func (s *scope) processAssign(stmt *ast.AssignStmt) (ir.Expr, bool) {
	if stmt.Tok != token.ASSIGN && stmt.Tok != token.DEFINE {
		return nil, s.errorf(fmterr.CodeUnsupported, stmt, "assignment operator %s not supported", stmt.Tok)
	}
	if len(stmt.Rhs) != 1 {
		return nil, s.errorf(fmterr.CodeUnsupported, stmt, "assignment of %d values not supported", len(stmt.Rhs))
	}
	x, ok := s.processExpr(stmt.Rhs[0])
	if !ok {
		return nil, false
	}
	switch len(stmt.Lhs) {
	case 1:
		return s.processSingleAssign(stmt, x)
	case 2:
		return s.processErrorAssign(stmt, x)
	}
	return nil, s.errorf(fmterr.CodeUnsupported, stmt, "assignment to %d targets not supported", len(stmt.Lhs))
}

func (s *scope) processSingleAssign(stmt *ast.AssignStmt, x ir.Expr) (ir.Expr, bool) {
	lhs := stmt.Lhs[0]
	if ident, ok := lhs.(*ast.Ident); ok && ident.Name == "_" {
		return x, true
	}
	target, ok := s.processTarget(lhs)
	if !ok {
		return nil, false
	}
	a := &ir.Assignment{Src: stmt, Target: target, Value: x}
	if target.Var != "" {
		s.env.SetVar(target.Var, x.TypeDef(s.env))
	}
	return a, true
}

func (s *scope) processTarget(lhs ast.Expr) (ir.Target, bool) {
	switch lhsT := lhs.(type) {
	case *ast.Ident:
		if lhsT.Name == ir.EventName {
			return ir.EventTarget(nil), true
		}
		if isReserved(lhsT.Name) {
			return ir.Target{}, s.errorf(fmterr.CodeUnsupported, lhs, "cannot assign to %s", lhsT.Name)
		}
		return ir.VarTarget(lhsT.Name), true
	case *ast.SelectorExpr:
		root, path, ok := selectorPath(lhsT)
		if ok && root.Name == ir.EventName {
			return ir.EventTarget(path), true
		}
	}
	return ir.Target{}, s.errorf(fmterr.CodeUnsupported, lhs, "cannot assign to %T: only variables and event fields can be assigned", lhs)
}

// processErrorAssign processes an assignment handling the error of an expression:
//
//	value, err = f(x)
func (s *scope) processErrorAssign(stmt *ast.AssignStmt, x ir.Expr) (ir.Expr, bool) {
	names := [2]string{}
	ok := true
	for i, lhs := range stmt.Lhs {
		ident, isIdent := lhs.(*ast.Ident)
		if !isIdent || ident.Name == ir.EventName || isReserved(ident.Name) {
			ok = s.errorf(fmterr.CodeUnsupported, lhs, "the value and the error of an expression can only be assigned to variables")
			continue
		}
		if ident.Name != "_" {
			names[i] = ident.Name
		}
	}
	if !ok {
		return nil, false
	}
	a := &ir.ErrorAssignment{Src: stmt, Value: names[0], Err: names[1], X: x}
	if a.Value != "" {
		s.env.SetVar(a.Value, a.TypeDef(s.env))
	}
	if a.Err != "" {
		s.env.SetVar(a.Err, a.ErrTypeDef(s.env))
	}
	return a, true
}

func (s *scope) processIf(stmt *ast.IfStmt) (ir.Expr, bool) {
	if stmt.Init != nil {
		return nil, s.errorf(fmterr.CodeUnsupported, stmt.Init, "if statement initializers not supported")
	}
	cond, condOk := s.processExpr(stmt.Cond)
	thenScope := s.withEnv(s.env.Clone())
	then, thenOk := thenScope.processBlock(stmt.Body)
	elseScope := s.withEnv(s.env.Clone())
	var els ir.Expr
	elseOk := true
	if stmt.Else != nil {
		els, elseOk = elseScope.processStmt(stmt.Else)
	}
	s.env.Join(thenScope.env, elseScope.env)
	if !condOk || !thenOk || !elseOk {
		return nil, false
	}
	if tdef := cond.TypeDef(s.env); !tdef.Kind.Intersects(value.KindBoolean) {
		return nil, s.errorf(fmterr.CodeInvalidArgumentType, stmt.Cond, "non-boolean condition: %s", tdef.Kind)
	}
	return &ir.If{Src: stmt, Cond: cond, Then: then, Else: els}, true
}
