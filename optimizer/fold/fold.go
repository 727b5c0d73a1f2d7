// Copyright 2020-2021 Dolthub, Inc.
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

// Package fold implements bottom-up constant folding over expression trees:
// literal arithmetic, AND/OR short-circuit identities, double negation, and
// CASE branch elimination. Folding never evaluates a subtree that contains a
// column reference, a volatile function, or a subquery, since those cannot
// become literals in the first place — only literal-literal combinations are
// ever evaluated; the AND/OR/NOT identities rewrite around a non-literal
// operand without evaluating it.
package fold

import (
	"math"

	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/value"
	"github.com/shopspring/decimal"
)

// Fold rewrites e bottom-up, replacing literal subexpressions with their
// evaluated result and applying the AND/OR/NOT/CASE identities.
func Fold(e expr.Expr) expr.Expr {
	return expr.Transform(e, foldNode)
}

func foldNode(e expr.Expr) expr.Expr {
	switch e.Kind() {
	case expr.KindBinaryOp:
		return foldBinaryOp(e)
	case expr.KindUnaryOp:
		return foldUnaryOp(e)
	case expr.KindIsNull:
		return foldIsNull(e)
	case expr.KindCase:
		return foldCase(e)
	}
	return e
}

func foldBinaryOp(e expr.Expr) expr.Expr {
	left, right := *e.Left(), *e.Right()
	op := e.BinaryOperator()

	if left.Kind() == expr.KindLiteral && right.Kind() == expr.KindLiteral {
		if result, ok := evaluateBinaryOp(left.Literal(), op, right.Literal()); ok {
			return expr.NewLiteral(result)
		}
	}

	switch op {
	case expr.OpAnd:
		return foldAnd(left, right)
	case expr.OpOr:
		return foldOr(left, right)
	}
	return e
}

func foldAnd(left, right expr.Expr) expr.Expr {
	switch {
	case isBoolLiteral(left, true):
		return right
	case isBoolLiteral(right, true):
		return left
	case isBoolLiteral(left, false), isBoolLiteral(right, false):
		return expr.NewLiteral(value.NewBool(false))
	}
	return expr.NewBinaryOp(expr.OpAnd, left, right)
}

func foldOr(left, right expr.Expr) expr.Expr {
	switch {
	case isBoolLiteral(left, false):
		return right
	case isBoolLiteral(right, false):
		return left
	case isBoolLiteral(left, true), isBoolLiteral(right, true):
		return expr.NewLiteral(value.NewBool(true))
	}
	return expr.NewBinaryOp(expr.OpOr, left, right)
}

func isBoolLiteral(e expr.Expr, b bool) bool {
	return e.Kind() == expr.KindLiteral && e.Literal().Kind() == value.KindBool && e.Literal().Bool() == b
}

func foldUnaryOp(e expr.Expr) expr.Expr {
	operand := *e.Left()
	switch e.UnaryOperator() {
	case expr.OpNot:
		if operand.Kind() == expr.KindLiteral {
			lit := operand.Literal()
			if lit.IsNull() {
				return expr.NewLiteral(value.Null())
			}
			if lit.Kind() == value.KindBool {
				return expr.NewLiteral(value.NewBool(!lit.Bool()))
			}
		}
		if operand.Kind() == expr.KindUnaryOp && operand.UnaryOperator() == expr.OpNot {
			return *operand.Left()
		}
	case expr.OpNeg:
		if operand.Kind() == expr.KindLiteral {
			lit := operand.Literal()
			switch {
			case lit.IsNull():
				return expr.NewLiteral(value.Null())
			case lit.Kind() == value.KindInt64:
				return expr.NewLiteral(value.NewInt64(-lit.Int64()))
			case lit.Kind() == value.KindFloat64:
				return expr.NewLiteral(value.NewFloat64(-lit.Float64()))
			case lit.Kind() == value.KindNumeric:
				return expr.NewLiteral(value.NewNumeric(lit.Decimal().Neg()))
			case lit.Kind() == value.KindBigNumeric:
				return expr.NewLiteral(value.NewBigNumeric(lit.Decimal().Neg()))
			}
		}
	case expr.OpPos:
		if operand.Kind() == expr.KindLiteral {
			switch operand.Literal().Kind() {
			case value.KindInt64, value.KindFloat64, value.KindNumeric, value.KindBigNumeric, value.KindNull:
				return operand
			}
		}
	case expr.OpBitNot:
		if operand.Kind() == expr.KindLiteral {
			lit := operand.Literal()
			if lit.IsNull() {
				return expr.NewLiteral(value.Null())
			}
			if lit.Kind() == value.KindInt64 {
				return expr.NewLiteral(value.NewInt64(^lit.Int64()))
			}
		}
	}
	return e
}

func foldIsNull(e expr.Expr) expr.Expr {
	operand := *e.Left()
	if operand.Kind() != expr.KindLiteral {
		return e
	}
	if operand.Literal().IsNull() {
		return expr.NewLiteral(value.NewBool(!e.Negated()))
	}
	return expr.NewLiteral(value.NewBool(e.Negated()))
}

// foldCase folds a Case expression whose operand and when-clauses have
// already been folded by Transform's bottom-up rebuild. A searched CASE
// (no operand) whose condition literal-folds to true returns that branch's
// result directly; one that folds to false is dropped from the clause list.
func foldCase(e expr.Expr) expr.Expr {
	operand := e.Operand()
	whens := e.WhenClauses()
	elseResult := e.ElseResult()

	var kept []expr.WhenClause
	for _, w := range whens {
		if operand == nil && isBoolLiteral(w.Condition, true) {
			return w.Result
		}
		if operand == nil && isBoolLiteral(w.Condition, false) {
			continue
		}
		kept = append(kept, w)
	}

	if len(kept) == 0 {
		if elseResult != nil {
			return *elseResult
		}
		return expr.NewLiteral(value.Null())
	}

	return expr.NewCase(operand, kept, elseResult)
}

// evaluateBinaryOp evaluates a binary operator over two literal values,
// returning ok=false when folding must be deferred: NULL operands outside
// the AND/OR short-circuit cases, checked-arithmetic overflow, or division
// by zero on integer/decimal operands. Float arithmetic always folds.
func evaluateBinaryOp(left value.Value, op expr.BinaryOperator, right value.Value) (value.Value, bool) {
	if left.IsNull() || right.IsNull() {
		switch op {
		case expr.OpAnd:
			if isFalse(left) || isFalse(right) {
				return value.NewBool(false), true
			}
		case expr.OpOr:
			if isTrue(left) || isTrue(right) {
				return value.NewBool(true), true
			}
		}
		return value.Value{}, false
	}

	if left.Kind() != right.Kind() {
		return value.Value{}, false
	}

	switch op {
	case expr.OpEq:
		return value.NewBool(value.Compare(left, right) == 0), true
	case expr.OpNotEq:
		return value.NewBool(value.Compare(left, right) != 0), true
	case expr.OpLt:
		return value.NewBool(value.Compare(left, right) < 0), true
	case expr.OpLtEq:
		return value.NewBool(value.Compare(left, right) <= 0), true
	case expr.OpGt:
		return value.NewBool(value.Compare(left, right) > 0), true
	case expr.OpGtEq:
		return value.NewBool(value.Compare(left, right) >= 0), true
	}

	switch left.Kind() {
	case value.KindBool:
		switch op {
		case expr.OpAnd:
			return value.NewBool(left.Bool() && right.Bool()), true
		case expr.OpOr:
			return value.NewBool(left.Bool() || right.Bool()), true
		}
	case value.KindInt64:
		return evaluateInt64(left.Int64(), op, right.Int64())
	case value.KindFloat64:
		return evaluateFloat64(left.Float64(), op, right.Float64())
	case value.KindNumeric:
		return evaluateDecimal(left.Decimal(), op, right.Decimal(), value.NewNumeric)
	case value.KindBigNumeric:
		return evaluateDecimal(left.Decimal(), op, right.Decimal(), value.NewBigNumeric)
	case value.KindString:
		if op == expr.OpConcat {
			return value.NewString(left.String() + right.String()), true
		}
	}
	return value.Value{}, false
}

func isTrue(v value.Value) bool  { return v.Kind() == value.KindBool && v.Bool() }
func isFalse(v value.Value) bool { return v.Kind() == value.KindBool && !v.Bool() }

func evaluateInt64(l int64, op expr.BinaryOperator, r int64) (value.Value, bool) {
	switch op {
	case expr.OpAdd:
		if v, ok := value.CheckedAddInt64(l, r); ok {
			return value.NewInt64(v), true
		}
	case expr.OpSub:
		if v, ok := value.CheckedSubInt64(l, r); ok {
			return value.NewInt64(v), true
		}
	case expr.OpMul:
		if v, ok := value.CheckedMulInt64(l, r); ok {
			return value.NewInt64(v), true
		}
	case expr.OpDiv, expr.OpIntDiv:
		if v, ok := value.CheckedDivInt64(l, r); ok {
			return value.NewInt64(v), true
		}
	case expr.OpMod:
		if v, ok := value.CheckedModInt64(l, r); ok {
			return value.NewInt64(v), true
		}
	case expr.OpBitAnd:
		return value.NewInt64(l & r), true
	case expr.OpBitOr:
		return value.NewInt64(l | r), true
	case expr.OpBitXor:
		return value.NewInt64(l ^ r), true
	case expr.OpShiftLeft:
		if r >= 0 && r < 64 {
			return value.NewInt64(l << uint(r)), true
		}
	case expr.OpShiftRight:
		if r >= 0 && r < 64 {
			return value.NewInt64(l >> uint(r)), true
		}
	}
	return value.Value{}, false
}

func evaluateFloat64(l float64, op expr.BinaryOperator, r float64) (value.Value, bool) {
	switch op {
	case expr.OpAdd:
		return value.NewFloat64(l + r), true
	case expr.OpSub:
		return value.NewFloat64(l - r), true
	case expr.OpMul:
		return value.NewFloat64(l * r), true
	case expr.OpDiv:
		return value.NewFloat64(l / r), true
	case expr.OpMod:
		return value.NewFloat64(math.Mod(l, r)), true
	}
	return value.Value{}, false
}

func evaluateDecimal(l decimal.Decimal, op expr.BinaryOperator, r decimal.Decimal, wrap func(decimal.Decimal) value.Value) (value.Value, bool) {
	switch op {
	case expr.OpAdd:
		return wrap(l.Add(r)), true
	case expr.OpSub:
		return wrap(l.Sub(r)), true
	case expr.OpMul:
		return wrap(l.Mul(r)), true
	case expr.OpDiv:
		if r.IsZero() {
			return value.Value{}, false
		}
		return wrap(l.Div(r)), true
	case expr.OpMod:
		if r.IsZero() {
			return value.Value{}, false
		}
		return wrap(l.Mod(r)), true
	}
	return value.Value{}, false
}

