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
	"fmt"

	"github.com/shopspring/decimal"
)

// NumericScale and BigNumericScale fix the decimal representation contract
// for BigQuery's NUMERIC and BIGNUMERIC types.
const (
	NumericScale    = 9
	BigNumericScale = 38
)

// Interval is the BigQuery INTERVAL type: {months, days, nanos}. Arithmetic
// applies months first, then days, then nanos.
type Interval struct {
	Months int32
	Days   int32
	Nanos  int64
}

// StructField is one ordered (name, Value) pair of a Struct value.
type StructField struct {
	Name  string
	Value Value
}

// RangeValue is a BigQuery RANGE<T>. A nil Lower/Upper means UNBOUNDED on
// that side.
type RangeValue struct {
	Lower *Value
	Upper *Value
}

// Value is the tagged-sum runtime representation of every scalar and
// composite BigQuery type this module evaluates. The zero Value is KindNull.
type Value struct {
	kind Kind

	b   bool
	i64 int64
	f64 float64
	dec decimal.Decimal

	str  string
	byts []byte

	interval Interval

	arr   []Value
	strct []StructField
	json  JSON
	rng   *RangeValue
}

// Null returns the NULL value.
func Null() Value { return Value{kind: KindNull} }

func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

func NewInt64(n int64) Value { return Value{kind: KindInt64, i64: n} }

func NewFloat64(f float64) Value { return Value{kind: KindFloat64, f64: f} }

// NewNumeric rounds d to the fixed NUMERIC scale (9).
func NewNumeric(d decimal.Decimal) Value {
	return Value{kind: KindNumeric, dec: d.Round(NumericScale)}
}

// NewBigNumeric rounds d to the fixed BIGNUMERIC scale (38).
func NewBigNumeric(d decimal.Decimal) Value {
	return Value{kind: KindBigNumeric, dec: d.Round(BigNumericScale)}
}

func NewString(s string) Value { return Value{kind: KindString, str: s} }

func NewBytes(b []byte) Value { return Value{kind: KindBytes, byts: b} }

// NewDate takes days since 1970-01-01.
func NewDate(days int32) Value { return Value{kind: KindDate, i64: int64(days)} }

// NewTime takes nanoseconds since midnight.
func NewTime(nanos int64) Value { return Value{kind: KindTime, i64: nanos} }

// NewDateTime takes microseconds since 0000-01-01 00:00, no timezone.
func NewDateTime(micros int64) Value { return Value{kind: KindDateTime, i64: micros} }

// NewTimestamp takes microseconds since 1970-01-01 00:00 UTC.
func NewTimestamp(micros int64) Value { return Value{kind: KindTimestamp, i64: micros} }

func NewInterval(iv Interval) Value { return Value{kind: KindInterval, interval: iv} }

// NewArray preserves element order and may contain Null.
func NewArray(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindArray, arr: elems}
}

// NewStruct preserves field declaration order.
func NewStruct(fields []StructField) Value {
	return Value{kind: KindStruct, strct: fields}
}

func NewJSON(j JSON) Value { return Value{kind: KindJSON, json: j} }

func NewGeography(opaque []byte) Value { return Value{kind: KindGeography, byts: opaque} }

func NewRange(lower, upper *Value) Value {
	return Value{kind: KindRange, rng: &RangeValue{Lower: lower, Upper: upper}}
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == KindNull }
func (v Value) Bool() bool    { return v.b }
func (v Value) Int64() int64  { return v.i64 }
func (v Value) Float64() float64 { return v.f64 }
func (v Value) Decimal() decimal.Decimal { return v.dec }
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNull:
		return "NULL"
	default:
		return v.GoString()
	}
}
func (v Value) Bytes() []byte        { return v.byts }
func (v Value) Days() int32          { return int32(v.i64) }
func (v Value) Nanos() int64         { return v.i64 }
func (v Value) Micros() int64        { return v.i64 }
func (v Value) Interval() Interval   { return v.interval }
func (v Value) Array() []Value       { return v.arr }
func (v Value) StructFields() []StructField { return v.strct }
func (v Value) JSON() JSON           { return v.json }
func (v Value) Range() *RangeValue   { return v.rng }

// GoString renders a debug form, used by error messages and as the fallback
// grouping-key input for kinds without a cheaper encoding.
func (v Value) GoString() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return fmt.Sprintf("Bool(%v)", v.b)
	case KindInt64:
		return fmt.Sprintf("Int64(%d)", v.i64)
	case KindFloat64:
		return fmt.Sprintf("Float64(%v)", v.f64)
	case KindNumeric:
		return fmt.Sprintf("Numeric(%s)", v.dec.String())
	case KindBigNumeric:
		return fmt.Sprintf("BigNumeric(%s)", v.dec.String())
	case KindString:
		return fmt.Sprintf("String(%q)", v.str)
	case KindBytes:
		return fmt.Sprintf("Bytes(%x)", v.byts)
	case KindDate:
		return fmt.Sprintf("Date(%d)", v.i64)
	case KindTime:
		return fmt.Sprintf("Time(%d)", v.i64)
	case KindDateTime:
		return fmt.Sprintf("DateTime(%d)", v.i64)
	case KindTimestamp:
		return fmt.Sprintf("Timestamp(%d)", v.i64)
	case KindInterval:
		return fmt.Sprintf("Interval(%d,%d,%d)", v.interval.Months, v.interval.Days, v.interval.Nanos)
	case KindArray:
		return fmt.Sprintf("Array(%v)", v.arr)
	case KindStruct:
		return fmt.Sprintf("Struct(%v)", v.strct)
	case KindJSON:
		return fmt.Sprintf("Json(%s)", v.json.Canonical())
	case KindGeography:
		return fmt.Sprintf("Geography(%x)", v.byts)
	case KindRange:
		return fmt.Sprintf("Range(%v,%v)", v.rng.Lower, v.rng.Upper)
	default:
		return "?"
	}
}
