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

package value

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSQLEqualNullPropagation(t *testing.T) {
	testCases := []struct {
		name string
		a, b Value
	}{
		{"null = null", Null(), Null()},
		{"null = int", Null(), NewInt64(1)},
		{"int = null", NewInt64(1), Null()},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, isNull := SQLEqual(tc.a, tc.b)
			require.True(t, isNull)
		})
	}
}

func TestSQLEqualNonNull(t *testing.T) {
	testCases := []struct {
		name   string
		a, b   Value
		result bool
	}{
		{"1 = 1", NewInt64(1), NewInt64(1), true},
		{"1 = 2", NewInt64(1), NewInt64(2), false},
		{"str eq", NewString("x"), NewString("x"), true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, isNull := SQLEqual(tc.a, tc.b)
			require.False(t, isNull)
			require.Equal(t, tc.result, result)
		})
	}
}

func TestGroupingEqualTwoNullsMatch(t *testing.T) {
	require.True(t, GroupingEqual(Null(), Null()))
	require.False(t, GroupingEqual(Null(), NewInt64(0)))
}

func TestGroupingEqualNaN(t *testing.T) {
	nan1 := NewFloat64(math.NaN())
	nan2 := NewFloat64(math.NaN())
	require.True(t, GroupingEqual(nan1, nan2))
}

func TestCompareFloatTotalOrder(t *testing.T) {
	neg := NewFloat64(math.Inf(-1))
	zero := NewFloat64(0)
	pos := NewFloat64(math.Inf(1))
	nan := NewFloat64(math.NaN())

	require.Equal(t, -1, Compare(neg, zero))
	require.Equal(t, -1, Compare(zero, pos))
	require.Equal(t, -1, Compare(pos, nan))
	require.Equal(t, 0, Compare(nan, nan))
}

func TestCompareNullSortsFirst(t *testing.T) {
	require.Equal(t, -1, Compare(Null(), NewInt64(0)))
	require.Equal(t, 1, Compare(NewInt64(0), Null()))
	require.Equal(t, 0, Compare(Null(), Null()))
}

func TestCompareArrayLexicographic(t *testing.T) {
	a := NewArray([]Value{NewInt64(1), NewInt64(2)})
	b := NewArray([]Value{NewInt64(1), NewInt64(3)})
	require.Equal(t, -1, Compare(a, b))

	shorter := NewArray([]Value{NewInt64(1)})
	require.Equal(t, -1, Compare(shorter, a))
}

func TestNumericScaleEnforced(t *testing.T) {
	d := decimal.RequireFromString("1.123456789123456")
	n := NewNumeric(d)
	require.Equal(t, int32(-NumericScale), n.Decimal().Exponent())
}

func TestBigNumericScaleEnforced(t *testing.T) {
	d := decimal.RequireFromString("1.1")
	n := NewBigNumeric(d)
	require.Equal(t, int32(-BigNumericScale), n.Decimal().Exponent())
}

func TestHashGroupingEqualValuesHashEqual(t *testing.T) {
	a := NewStruct([]StructField{{Name: "x", Value: NewInt64(1)}})
	b := NewStruct([]StructField{{Name: "x", Value: NewInt64(1)}})
	require.Equal(t, a.Hash(), b.Hash())

	require.Equal(t, Null().Hash(), Null().Hash())
}

func TestGroupingKeyMatchesGroupingEqual(t *testing.T) {
	require.Equal(t, Null().GroupingKey(), Null().GroupingKey())
	require.NotEqual(t, NewInt64(1).GroupingKey(), NewInt64(2).GroupingKey())
	require.Equal(t, NewString("a").GroupingKey(), NewString("a").GroupingKey())
}

func TestJSONCanonicalSortsKeys(t *testing.T) {
	a := JSONObject(map[string]JSON{"b": JSONNumber(2), "a": JSONNumber(1)})
	b := JSONObject(map[string]JSON{"a": JSONNumber(1), "b": JSONNumber(2)})
	require.Equal(t, a.Canonical(), b.Canonical())
	require.Equal(t, `{"a":1,"b":2}`, a.Canonical())
}

func TestCastSafeCastFailure(t *testing.T) {
	v := NewArray([]Value{NewInt64(1)})
	_, err := Cast(v, KindInt64)
	require.Error(t, err)

	out := SafeCast(v, KindInt64)
	require.True(t, out.IsNull())
	require.Equal(t, KindInt64, out.Kind())
}

func TestCastStringToInt64(t *testing.T) {
	out, err := Cast(NewString("42"), KindInt64)
	require.NoError(t, err)
	require.Equal(t, int64(42), out.Int64())
}

func TestCastNullPreservesKind(t *testing.T) {
	out, err := Cast(Null(), KindString)
	require.NoError(t, err)
	require.True(t, out.IsNull())
	require.Equal(t, KindString, out.Kind())
}

func TestRangeUnboundedCompare(t *testing.T) {
	lo := NewInt64(1)
	bounded := NewRange(&lo, nil)
	unbounded := NewRange(nil, nil)
	require.Equal(t, 1, Compare(bounded, unbounded))
}
