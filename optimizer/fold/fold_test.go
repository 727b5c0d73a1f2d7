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

package fold

import (
	"testing"

	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/value"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func col(name string) expr.Expr        { return expr.NewGetField(0, name) }
func litI64(v int64) expr.Expr         { return expr.NewLiteral(value.NewInt64(v)) }
func litF64(v float64) expr.Expr       { return expr.NewLiteral(value.NewFloat64(v)) }
func litBool(v bool) expr.Expr         { return expr.NewLiteral(value.NewBool(v)) }
func litString(v string) expr.Expr     { return expr.NewLiteral(value.NewString(v)) }
func litNull() expr.Expr               { return expr.NewLiteral(value.Null()) }
func litNumeric(v string) expr.Expr {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return expr.NewLiteral(value.NewNumeric(d))
}

func requireLiteralEqual(t *testing.T, want, got expr.Expr) {
	t.Helper()
	require.Equal(t, expr.KindLiteral, got.Kind())
	require.True(t, value.Compare(want.Literal(), got.Literal()) == 0 && want.Literal().Kind() == got.Literal().Kind())
}

func TestFoldIntegerArithmetic(t *testing.T) {
	require.Equal(t, int64(2), Fold(expr.NewBinaryOp(expr.OpAdd, litI64(1), litI64(1))).Literal().Int64())
	require.Equal(t, int64(7), Fold(expr.NewBinaryOp(expr.OpSub, litI64(10), litI64(3))).Literal().Int64())
	require.Equal(t, int64(20), Fold(expr.NewBinaryOp(expr.OpMul, litI64(4), litI64(5))).Literal().Int64())
	require.Equal(t, int64(5), Fold(expr.NewBinaryOp(expr.OpDiv, litI64(20), litI64(4))).Literal().Int64())
	require.Equal(t, int64(2), Fold(expr.NewBinaryOp(expr.OpMod, litI64(17), litI64(5))).Literal().Int64())
}

func TestFoldIntegerDivisionByZeroNotFolded(t *testing.T) {
	e := expr.NewBinaryOp(expr.OpDiv, litI64(10), litI64(0))
	result := Fold(e)
	require.Equal(t, expr.KindBinaryOp, result.Kind())
}

func TestFoldIntegerOverflowNotFolded(t *testing.T) {
	e := expr.NewBinaryOp(expr.OpAdd, litI64(9223372036854775807), litI64(1))
	result := Fold(e)
	require.Equal(t, expr.KindBinaryOp, result.Kind())
}

func TestFoldIntegerMinInt64DivByNegOneNotFolded(t *testing.T) {
	e := expr.NewBinaryOp(expr.OpDiv, litI64(-9223372036854775808), litI64(-1))
	result := Fold(e)
	require.Equal(t, expr.KindBinaryOp, result.Kind())
}

func TestFoldIntegerMinInt64ModNegOneNotFolded(t *testing.T) {
	e := expr.NewBinaryOp(expr.OpMod, litI64(-9223372036854775808), litI64(-1))
	result := Fold(e)
	require.Equal(t, expr.KindBinaryOp, result.Kind())
}

func TestFoldFloatArithmetic(t *testing.T) {
	require.Equal(t, 4.0, Fold(expr.NewBinaryOp(expr.OpAdd, litF64(1.5), litF64(2.5))).Literal().Float64())
	require.Equal(t, 5.0, Fold(expr.NewBinaryOp(expr.OpDiv, litF64(10.0), litF64(2.0))).Literal().Float64())
}

func TestFoldFloatDivisionByZeroFoldsToInf(t *testing.T) {
	result := Fold(expr.NewBinaryOp(expr.OpDiv, litF64(1.0), litF64(0.0)))
	require.Equal(t, expr.KindLiteral, result.Kind())
}

func TestFoldAndIdentities(t *testing.T) {
	require.Equal(t, col("x"), Fold(expr.NewBinaryOp(expr.OpAnd, litBool(true), col("x"))))
	require.Equal(t, col("x"), Fold(expr.NewBinaryOp(expr.OpAnd, col("x"), litBool(true))))
	requireLiteralEqual(t, litBool(false), Fold(expr.NewBinaryOp(expr.OpAnd, litBool(false), col("x"))))
	requireLiteralEqual(t, litBool(false), Fold(expr.NewBinaryOp(expr.OpAnd, col("x"), litBool(false))))
}

func TestFoldOrIdentities(t *testing.T) {
	requireLiteralEqual(t, litBool(true), Fold(expr.NewBinaryOp(expr.OpOr, litBool(true), col("x"))))
	requireLiteralEqual(t, litBool(true), Fold(expr.NewBinaryOp(expr.OpOr, col("x"), litBool(true))))
	require.Equal(t, col("x"), Fold(expr.NewBinaryOp(expr.OpOr, litBool(false), col("x"))))
	require.Equal(t, col("x"), Fold(expr.NewBinaryOp(expr.OpOr, col("x"), litBool(false))))
}

func TestFoldNotIdentities(t *testing.T) {
	requireLiteralEqual(t, litBool(false), Fold(expr.NewUnaryOp(expr.OpNot, litBool(true))))
	requireLiteralEqual(t, litBool(true), Fold(expr.NewUnaryOp(expr.OpNot, litBool(false))))
	require.Equal(t, col("x"), Fold(expr.NewUnaryOp(expr.OpNot, expr.NewUnaryOp(expr.OpNot, col("x")))))
	requireLiteralEqual(t, litNull(), Fold(expr.NewUnaryOp(expr.OpNot, litNull())))
}

func TestColEqualsColNotSimplified(t *testing.T) {
	e := expr.NewBinaryOp(expr.OpEq, col("x"), col("x"))
	require.Equal(t, e, Fold(e))
}

func TestNullEqualsNullNotSimplified(t *testing.T) {
	e := expr.NewBinaryOp(expr.OpEq, litNull(), litNull())
	require.Equal(t, e, Fold(e))
}

func TestFoldNestedExpressions(t *testing.T) {
	e := expr.NewBinaryOp(expr.OpMul,
		expr.NewBinaryOp(expr.OpAdd, litI64(1), litI64(2)),
		expr.NewBinaryOp(expr.OpAdd, litI64(3), litI64(4)),
	)
	require.Equal(t, int64(21), Fold(e).Literal().Int64())
}

func TestFoldDeeplyNestedAndOr(t *testing.T) {
	e := expr.NewBinaryOp(expr.OpOr,
		expr.NewBinaryOp(expr.OpAnd, litBool(true), col("a")),
		expr.NewBinaryOp(expr.OpAnd, litBool(false), col("b")),
	)
	require.Equal(t, col("a"), Fold(e))
}

func TestFoldIsNullOnLiterals(t *testing.T) {
	requireLiteralEqual(t, litBool(true), Fold(expr.NewIsNull(litNull(), false)))
	requireLiteralEqual(t, litBool(false), Fold(expr.NewIsNull(litNull(), true)))
	requireLiteralEqual(t, litBool(false), Fold(expr.NewIsNull(litI64(5), false)))
	requireLiteralEqual(t, litBool(true), Fold(expr.NewIsNull(litI64(5), true)))
}

func TestFoldCaseWhenTrueReturnsResult(t *testing.T) {
	e := expr.NewCase(nil, []expr.WhenClause{{Condition: litBool(true), Result: litI64(42)}}, ptr(litI64(0)))
	require.Equal(t, int64(42), Fold(e).Literal().Int64())
}

func TestFoldCaseWhenFalseSkipped(t *testing.T) {
	e := expr.NewCase(nil, []expr.WhenClause{
		{Condition: litBool(false), Result: litI64(1)},
		{Condition: litBool(true), Result: litI64(2)},
	}, ptr(litI64(0)))
	require.Equal(t, int64(2), Fold(e).Literal().Int64())
}

func TestFoldCaseAllFalseReturnsElse(t *testing.T) {
	e := expr.NewCase(nil, []expr.WhenClause{{Condition: litBool(false), Result: litI64(1)}}, ptr(litI64(99)))
	require.Equal(t, int64(99), Fold(e).Literal().Int64())
}

func TestFoldCaseNoElseReturnsNull(t *testing.T) {
	e := expr.NewCase(nil, []expr.WhenClause{{Condition: litBool(false), Result: litI64(1)}}, nil)
	require.True(t, Fold(e).Literal().IsNull())
}

func TestFoldAliasFoldsInner(t *testing.T) {
	e := expr.NewAlias(expr.NewBinaryOp(expr.OpAdd, litI64(2), litI64(3)), "sum")
	result := Fold(e)
	require.Equal(t, expr.KindAlias, result.Kind())
	require.Equal(t, int64(5), result.Inner().Literal().Int64())
}

func TestFoldMixedExpressionPreservesColumns(t *testing.T) {
	e := expr.NewBinaryOp(expr.OpMul, expr.NewBinaryOp(expr.OpAdd, litI64(1), litI64(2)), col("x"))
	result := Fold(e)
	require.Equal(t, expr.KindBinaryOp, result.Kind())
	require.Equal(t, int64(3), result.Left().Literal().Int64())
	require.Equal(t, col("x"), *result.Right())
}

func TestFoldNullAndFalseIsFalse(t *testing.T) {
	requireLiteralEqual(t, litBool(false), Fold(expr.NewBinaryOp(expr.OpAnd, litNull(), litBool(false))))
	requireLiteralEqual(t, litBool(false), Fold(expr.NewBinaryOp(expr.OpAnd, litBool(false), litNull())))
}

func TestFoldNullOrTrueIsTrue(t *testing.T) {
	requireLiteralEqual(t, litBool(true), Fold(expr.NewBinaryOp(expr.OpOr, litNull(), litBool(true))))
	requireLiteralEqual(t, litBool(true), Fold(expr.NewBinaryOp(expr.OpOr, litBool(true), litNull())))
}

func TestFoldNullAndTrueIsNull(t *testing.T) {
	e := expr.NewBinaryOp(expr.OpAnd, litNull(), litBool(true))
	result := Fold(e)
	require.Equal(t, litNull(), result)
}

func TestFoldNullOrFalseIsNull(t *testing.T) {
	e := expr.NewBinaryOp(expr.OpOr, litNull(), litBool(false))
	result := Fold(e)
	require.Equal(t, litNull(), result)
}

func TestFoldNumericAddition(t *testing.T) {
	result := Fold(expr.NewBinaryOp(expr.OpAdd, litNumeric("1.5"), litNumeric("2.5")))
	require.True(t, result.Literal().Decimal().Equal(decimal.RequireFromString("4.0")))
}

func TestFoldNumericDivisionByZeroNotFolded(t *testing.T) {
	e := expr.NewBinaryOp(expr.OpDiv, litNumeric("1"), litNumeric("0"))
	result := Fold(e)
	require.Equal(t, expr.KindBinaryOp, result.Kind())
}

func TestFoldStringConcatenation(t *testing.T) {
	result := Fold(expr.NewBinaryOp(expr.OpConcat, litString("hello"), litString(" world")))
	require.Equal(t, "hello world", result.Literal().String())
}

func TestFoldColumnNotSimplified(t *testing.T) {
	require.Equal(t, col("x"), Fold(col("x")))
}

func TestFoldBitwiseAndShift(t *testing.T) {
	require.Equal(t, int64(0b1000), Fold(expr.NewBinaryOp(expr.OpBitAnd, litI64(0b1100), litI64(0b1010))).Literal().Int64())
	require.Equal(t, int64(16), Fold(expr.NewBinaryOp(expr.OpShiftLeft, litI64(1), litI64(4))).Literal().Int64())
	require.Equal(t, int64(4), Fold(expr.NewBinaryOp(expr.OpShiftRight, litI64(16), litI64(2))).Literal().Int64())
}

func ptr(e expr.Expr) *expr.Expr { return &e }
