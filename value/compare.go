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

import "math"

// floatTotalOrderKey maps a float64 onto a uint64 such that the natural
// uint64 order matches IEEE 754 totalOrder: negative values invert (so more
// negative sorts first), positive values flip only the sign bit, and NaN
// sorts consistently above +Inf (this package only ever produces quiet
// NaN, so a single bucket is enough to keep the order total).
func floatTotalOrderKey(f float64) uint64 {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | (1 << 63)
}

// Compare returns -1, 0, or 1 under a total order over values of the same
// Kind: NULL sorts before everything else, floats (including within
// Numeric/BigNumeric-adjacent float comparisons) use totalOrder semantics
// so NaN has one consistent position, and composite kinds compare
// lexicographically by element. Compare never reports two non-null values
// of different kinds as equal; callers needing cross-kind comparison must
// cast first.
func Compare(a, b Value) int {
	if a.kind == KindNull && b.kind == KindNull {
		return 0
	}
	if a.kind == KindNull {
		return -1
	}
	if b.kind == KindNull {
		return 1
	}
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindBool:
		return compareBool(a.b, b.b)
	case KindInt64, KindDate, KindTime, KindDateTime, KindTimestamp:
		return compareInt64(a.i64, b.i64)
	case KindFloat64:
		ka, kb := floatTotalOrderKey(a.f64), floatTotalOrderKey(b.f64)
		return compareUint64(ka, kb)
	case KindNumeric, KindBigNumeric:
		return a.dec.Cmp(b.dec)
	case KindString:
		return compareString(a.str, b.str)
	case KindBytes, KindGeography:
		return compareBytes(a.byts, b.byts)
	case KindInterval:
		return compareInterval(a.interval, b.interval)
	case KindArray:
		return compareArray(a.arr, b.arr)
	case KindStruct:
		return compareStruct(a.strct, b.strct)
	case KindJSON:
		return compareString(a.json.Canonical(), b.json.Canonical())
	case KindRange:
		return compareRange(a.rng, b.rng)
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return compareInt64(int64(len(a)), int64(len(b)))
}

func compareInterval(a, b Interval) int {
	if c := compareInt64(int64(a.Months), int64(b.Months)); c != 0 {
		return c
	}
	if c := compareInt64(int64(a.Days), int64(b.Days)); c != 0 {
		return c
	}
	return compareInt64(a.Nanos, b.Nanos)
}

func compareArray(a, b []Value) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return compareInt64(int64(len(a)), int64(len(b)))
}

func compareStruct(a, b []StructField) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i].Value, b[i].Value); c != 0 {
			return c
		}
	}
	return compareInt64(int64(len(a)), int64(len(b)))
}

func compareRange(a, b *RangeValue) int {
	c := compareRangeBound(a.Lower, b.Lower)
	if c != 0 {
		return c
	}
	return compareRangeBound(a.Upper, b.Upper)
}

func compareRangeBound(a, b *Value) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	return Compare(*a, *b)
}

// SQLEqual implements the three-valued `=` operator: NULL compared against
// anything, including another NULL, yields NULL (reported here as isNull
// true, with result false). A non-null result reports ordinary equality.
func SQLEqual(a, b Value) (result bool, isNull bool) {
	if a.kind == KindNull || b.kind == KindNull {
		return false, true
	}
	return Compare(a, b) == 0, false
}

// GroupingEqual implements the grouping identity used by GROUP BY, DISTINCT
// and ARRAY_AGG dedup: two NULLs ARE indistinguishable here, unlike in
// SQLEqual, and floats compare under total order so NaN groups with itself.
func GroupingEqual(a, b Value) bool {
	if a.kind == KindNull && b.kind == KindNull {
		return true
	}
	if a.kind == KindNull || b.kind == KindNull {
		return false
	}
	return Compare(a, b) == 0
}
