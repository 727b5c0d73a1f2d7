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
	"testing"

	"github.com/dollarsql/bqcore/column"
	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/schema"
	"github.com/dollarsql/bqcore/value"
	"github.com/stretchr/testify/require"
)

func testSchema() schema.Schema {
	return schema.New(
		schema.Field{Name: "a", DataType: value.KindInt64},
		schema.Field{Name: "b", DataType: value.KindInt64},
	)
}

func row(a, b value.Value) column.Record { return column.NewRecord(a, b) }

func lit(v value.Value) expr.Expr { return expr.NewLiteral(v) }

func TestEvaluateLiteral(t *testing.T) {
	ev := New(testSchema())
	v, err := ev.Evaluate(lit(value.NewInt64(42)), row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.Equal(t, int64(42), v.Int64())
}

func TestEvaluateColumnByIndex(t *testing.T) {
	ev := New(testSchema())
	col := expr.NewGetField(1, "b")
	v, err := ev.Evaluate(col, row(value.NewInt64(1), value.NewInt64(2)))
	require.NoError(t, err)
	require.Equal(t, int64(2), v.Int64())
}

func TestEvaluateColumnByName(t *testing.T) {
	ev := New(testSchema())
	col := expr.NewColumn("", "a", 0, false)
	v, err := ev.Evaluate(col, row(value.NewInt64(9), value.NewInt64(2)))
	require.NoError(t, err)
	require.Equal(t, int64(9), v.Int64())
}

func TestEvaluateUnresolvedColumnSignalsOuterReference(t *testing.T) {
	ev := New(testSchema())
	col := expr.NewColumn("outer_t", "z", 0, false)
	_, err := ev.Evaluate(col, row(value.NewInt64(1), value.NewInt64(2)))
	require.True(t, ErrUnresolvedColumn.Is(err))
}

func TestTrivalentAnd(t *testing.T) {
	tests := []struct {
		a, b value.Value
		want value.Value
	}{
		{value.NewBool(true), value.NewBool(true), value.NewBool(true)},
		{value.NewBool(true), value.NewBool(false), value.NewBool(false)},
		{value.NewBool(true), value.Null(), value.Null()},
		{value.NewBool(false), value.Null(), value.NewBool(false)},
		{value.Null(), value.Null(), value.Null()},
	}
	ev := New(testSchema())
	for _, tt := range tests {
		e := expr.NewBinaryOp(expr.OpAnd, lit(tt.a), lit(tt.b))
		got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
		require.NoError(t, err)
		if tt.want.IsNull() {
			require.True(t, got.IsNull())
		} else {
			require.Equal(t, tt.want.Bool(), got.Bool())
		}
	}
}

func TestTrivalentOr(t *testing.T) {
	tests := []struct {
		a, b value.Value
		want value.Value
	}{
		{value.NewBool(true), value.Null(), value.NewBool(true)},
		{value.NewBool(false), value.Null(), value.Null()},
		{value.Null(), value.Null(), value.Null()},
		{value.NewBool(false), value.NewBool(false), value.NewBool(false)},
	}
	ev := New(testSchema())
	for _, tt := range tests {
		e := expr.NewBinaryOp(expr.OpOr, lit(tt.a), lit(tt.b))
		got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
		require.NoError(t, err)
		if tt.want.IsNull() {
			require.True(t, got.IsNull())
		} else {
			require.Equal(t, tt.want.Bool(), got.Bool())
		}
	}
}

func TestNotNullIsNull(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewUnaryOp(expr.OpNot, lit(value.Null()))
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.True(t, got.IsNull())
}

func TestComparisonAgainstNullYieldsNull(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewBinaryOp(expr.OpEq, lit(value.NewInt64(1)), lit(value.Null()))
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.True(t, got.IsNull())
}

func TestIsNullReturnsExactBool(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewIsNull(lit(value.Null()), false)
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.True(t, got.Bool())

	e2 := expr.NewIsNull(lit(value.NewInt64(1)), true)
	got2, err := ev.Evaluate(e2, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.True(t, got2.Bool())
}

func TestSearchedCaseReturnsFirstTrueArm(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewCase(nil, []expr.WhenClause{
		{Condition: lit(value.NewBool(false)), Result: lit(value.NewInt64(1))},
		{Condition: lit(value.NewBool(true)), Result: lit(value.NewInt64(2))},
		{Condition: lit(value.NewBool(true)), Result: lit(value.NewInt64(3))},
	}, nil)
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.Equal(t, int64(2), got.Int64())
}

func TestSearchedCaseSkipsNullCondition(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewCase(nil, []expr.WhenClause{
		{Condition: lit(value.Null()), Result: lit(value.NewInt64(1))},
	}, nil)
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.True(t, got.IsNull())
}

func TestSimpleCaseNullOperandMatchesNoArm(t *testing.T) {
	ev := New(testSchema())
	elseVal := lit(value.NewInt64(99))
	e := expr.NewCase(ptr(lit(value.Null())), []expr.WhenClause{
		{Condition: lit(value.Null()), Result: lit(value.NewInt64(1))},
	}, &elseVal)
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.Equal(t, int64(99), got.Int64())
}

func TestSimpleCaseMatchesByEquality(t *testing.T) {
	ev := New(testSchema())
	operand := lit(value.NewInt64(2))
	e := expr.NewCase(&operand, []expr.WhenClause{
		{Condition: lit(value.NewInt64(1)), Result: lit(value.NewString("one"))},
		{Condition: lit(value.NewInt64(2)), Result: lit(value.NewString("two"))},
	}, nil)
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.Equal(t, "two", got.String())
}

func TestIntegerDivisionByZeroRaises(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewBinaryOp(expr.OpDiv, lit(value.NewInt64(1)), lit(value.NewInt64(0)))
	_, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.True(t, ErrDivisionByZero.Is(err))
}

func TestFloatDivisionByZeroFoldsToInf(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewBinaryOp(expr.OpDiv, lit(value.NewFloat64(1)), lit(value.NewFloat64(0)))
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.True(t, got.Float64() > 0)
}

func TestMinInt64DivByNegOneRaisesOverflow(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewBinaryOp(expr.OpDiv, lit(value.NewInt64(math.MinInt64)), lit(value.NewInt64(-1)))
	_, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.True(t, ErrOverflow.Is(err))
}

func TestMinInt64ModNegOneRaisesOverflow(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewBinaryOp(expr.OpMod, lit(value.NewInt64(math.MinInt64)), lit(value.NewInt64(-1)))
	_, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.True(t, ErrOverflow.Is(err))
}

func TestShiftOutOfRangeRaises(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewBinaryOp(expr.OpShiftLeft, lit(value.NewInt64(1)), lit(value.NewInt64(64)))
	_, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.True(t, ErrShiftOutOfRange.Is(err))
}

func TestInListEmptyIsFalse(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewInList(lit(value.NewInt64(1)), nil, false)
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.False(t, got.Bool())
}

func TestInListMatches(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewInList(lit(value.NewInt64(2)), []expr.Expr{lit(value.NewInt64(1)), lit(value.NewInt64(2))}, false)
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.True(t, got.Bool())
}

func TestInListNullPropagation(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewInList(lit(value.NewInt64(5)), []expr.Expr{lit(value.NewInt64(1)), lit(value.Null())}, false)
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.True(t, got.IsNull())
}

func TestBetween(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewBetween(lit(value.NewInt64(5)), lit(value.NewInt64(1)), lit(value.NewInt64(10)), false)
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.True(t, got.Bool())
}

func TestLikeWildcards(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewLike(lit(value.NewString("hello world")), lit(value.NewString("hel%")), false)
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.True(t, got.Bool())

	e2 := expr.NewLike(lit(value.NewString("hello")), lit(value.NewString("h_llo")), false)
	got2, err := ev.Evaluate(e2, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.True(t, got2.Bool())
}

func TestCastNonSafeErrorsOnFailure(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewCast(lit(value.NewString("not a number")), value.KindInt64, false)
	_, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.Error(t, err)
}

func TestCastSafeReturnsNullOnFailure(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewCast(lit(value.NewString("not a number")), value.KindInt64, true)
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.True(t, got.IsNull())
}

func TestArrayAccessOffsetOutOfBounds(t *testing.T) {
	ev := New(testSchema())
	arr := expr.NewArray([]expr.Expr{lit(value.NewInt64(1)), lit(value.NewInt64(2))}, value.KindInt64)
	e := expr.NewArrayAccess(arr, lit(value.NewInt64(5)))
	_, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.True(t, ErrOutOfBounds.Is(err))
}

func TestSafeOffsetReturnsNullOutOfBounds(t *testing.T) {
	ev := New(testSchema())
	arrVal, err := ev.Evaluate(expr.NewArray([]expr.Expr{lit(value.NewInt64(1))}, value.KindInt64), row(value.Null(), value.Null()))
	require.NoError(t, err)
	got, err := ev.funcs.Call("SAFE_OFFSET", []value.Value{arrVal, value.NewInt64(9)})
	require.NoError(t, err)
	require.True(t, got.IsNull())
}

func TestOrdinalIsOneBased(t *testing.T) {
	ev := New(testSchema())
	arrVal, err := ev.Evaluate(expr.NewArray([]expr.Expr{lit(value.NewString("x")), lit(value.NewString("y"))}, value.KindString), row(value.Null(), value.Null()))
	require.NoError(t, err)
	got, err := ev.funcs.Call("ORDINAL", []value.Value{arrVal, value.NewInt64(1)})
	require.NoError(t, err)
	require.Equal(t, "x", got.String())
}

func TestCoalesceReturnsFirstNonNull(t *testing.T) {
	ev := New(testSchema())
	got, err := ev.funcs.Call("COALESCE", []value.Value{value.Null(), value.Null(), value.NewInt64(7)})
	require.NoError(t, err)
	require.Equal(t, int64(7), got.Int64())
}

func TestStructAccessByFieldName(t *testing.T) {
	ev := New(testSchema())
	s := expr.NewStruct([]expr.StructFieldExpr{
		{Name: "x", Value: lit(value.NewInt64(1))},
		{Name: "y", Value: lit(value.NewInt64(2))},
	})
	e := expr.NewStructAccess(s, "Y")
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.Equal(t, int64(2), got.Int64())
}

func TestIsDistinctFromTreatsTwoNullsAsNotDistinct(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewIsDistinctFrom(lit(value.Null()), lit(value.Null()), false)
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.False(t, got.Bool())
}

func TestConcatOperator(t *testing.T) {
	ev := New(testSchema())
	e := expr.NewBinaryOp(expr.OpConcat, lit(value.NewString("foo")), lit(value.NewString("bar")))
	got, err := ev.Evaluate(e, row(value.Null(), value.Null()))
	require.NoError(t, err)
	require.Equal(t, "foobar", got.String())
}

func ptr(e expr.Expr) *expr.Expr { return &e }
