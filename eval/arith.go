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

package eval

import (
	"math"

	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/value"
	"github.com/shopspring/decimal"
)

const minInt64 = math.MinInt64

// evalArithmetic implements +, -, *, /, DIV, MOD over Int64/Float64/
// Numeric/BigNumeric operands. Integer division and modulo by zero raise
// ErrDivisionByZero at evaluation time rather than folding it away; float
// division by zero follows IEEE (±Inf/NaN), matching optimizer/fold's
// unconditional float folding.
func evalArithmetic(op expr.BinaryOperator, l, r value.Value) (value.Value, error) {
	if l.IsNull() || r.IsNull() {
		return value.Null(), nil
	}
	if l.Kind() != r.Kind() {
		return value.Value{}, ErrTypeMismatch.New("arithmetic operands of different kinds")
	}
	switch l.Kind() {
	case value.KindInt64:
		return evalArithmeticInt64(op, l.Int64(), r.Int64())
	case value.KindFloat64:
		return evalArithmeticFloat64(op, l.Float64(), r.Float64())
	case value.KindNumeric:
		return evalArithmeticDecimal(op, l, r, value.NewNumeric)
	case value.KindBigNumeric:
		return evalArithmeticDecimal(op, l, r, value.NewBigNumeric)
	default:
		return value.Value{}, ErrTypeMismatch.New("arithmetic not defined for " + l.Kind().String())
	}
}

func evalArithmeticInt64(op expr.BinaryOperator, l, r int64) (value.Value, error) {
	switch op {
	case expr.OpAdd:
		if v, ok := value.CheckedAddInt64(l, r); ok {
			return value.NewInt64(v), nil
		}
		return value.Value{}, ErrOverflow.New()
	case expr.OpSub:
		if v, ok := value.CheckedSubInt64(l, r); ok {
			return value.NewInt64(v), nil
		}
		return value.Value{}, ErrOverflow.New()
	case expr.OpMul:
		if v, ok := value.CheckedMulInt64(l, r); ok {
			return value.NewInt64(v), nil
		}
		return value.Value{}, ErrOverflow.New()
	case expr.OpDiv, expr.OpIntDiv:
		if v, ok := value.CheckedDivInt64(l, r); ok {
			return value.NewInt64(v), nil
		}
		if r == 0 {
			return value.Value{}, ErrDivisionByZero.New()
		}
		return value.Value{}, ErrOverflow.New()
	case expr.OpMod:
		if v, ok := value.CheckedModInt64(l, r); ok {
			return value.NewInt64(v), nil
		}
		if r == 0 {
			return value.Value{}, ErrDivisionByZero.New()
		}
		return value.Value{}, ErrOverflow.New()
	default:
		return value.Value{}, ErrTypeMismatch.New("unknown arithmetic operator")
	}
}

func evalArithmeticFloat64(op expr.BinaryOperator, l, r float64) (value.Value, error) {
	switch op {
	case expr.OpAdd:
		return value.NewFloat64(l + r), nil
	case expr.OpSub:
		return value.NewFloat64(l - r), nil
	case expr.OpMul:
		return value.NewFloat64(l * r), nil
	case expr.OpDiv:
		return value.NewFloat64(l / r), nil
	case expr.OpIntDiv:
		return value.NewFloat64(math.Trunc(l / r)), nil
	case expr.OpMod:
		return value.NewFloat64(math.Mod(l, r)), nil
	default:
		return value.Value{}, ErrTypeMismatch.New("unknown arithmetic operator")
	}
}

func evalArithmeticDecimal(op expr.BinaryOperator, l, r value.Value, wrap func(decimal.Decimal) value.Value) (value.Value, error) {
	ld, rd := l.Decimal(), r.Decimal()
	switch op {
	case expr.OpAdd:
		return wrap(ld.Add(rd)), nil
	case expr.OpSub:
		return wrap(ld.Sub(rd)), nil
	case expr.OpMul:
		return wrap(ld.Mul(rd)), nil
	case expr.OpDiv, expr.OpIntDiv:
		if rd.IsZero() {
			return value.Value{}, ErrDivisionByZero.New()
		}
		q := ld.Div(rd)
		if op == expr.OpIntDiv {
			q = q.Truncate(0)
		}
		return wrap(q), nil
	case expr.OpMod:
		if rd.IsZero() {
			return value.Value{}, ErrDivisionByZero.New()
		}
		return wrap(ld.Mod(rd)), nil
	default:
		return value.Value{}, ErrTypeMismatch.New("unknown arithmetic operator")
	}
}

func evalBitwise(op expr.BinaryOperator, l, r value.Value) (value.Value, error) {
	if l.IsNull() || r.IsNull() {
		return value.Null(), nil
	}
	if l.Kind() != value.KindInt64 || r.Kind() != value.KindInt64 {
		return value.Value{}, ErrTypeMismatch.New("bitwise operands must be INT64")
	}
	lv, rv := l.Int64(), r.Int64()
	switch op {
	case expr.OpBitAnd:
		return value.NewInt64(lv & rv), nil
	case expr.OpBitOr:
		return value.NewInt64(lv | rv), nil
	case expr.OpBitXor:
		return value.NewInt64(lv ^ rv), nil
	case expr.OpShiftLeft:
		if rv < 0 || rv >= 64 {
			return value.Value{}, ErrShiftOutOfRange.New(rv)
		}
		return value.NewInt64(lv << uint(rv)), nil
	case expr.OpShiftRight:
		if rv < 0 || rv >= 64 {
			return value.Value{}, ErrShiftOutOfRange.New(rv)
		}
		return value.NewInt64(lv >> uint(rv)), nil
	default:
		return value.Value{}, ErrTypeMismatch.New("unknown bitwise operator")
	}
}
