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
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	goerrors "gopkg.in/src-d/go-errors.v1"
)

// ErrCastFailed is returned by Cast (never by SafeCast) when no conversion
// from one Kind to another is defined.
var ErrCastFailed = goerrors.NewKind("cannot cast %s to %s")

// Cast converts v to the target Kind, returning ErrCastFailed if the pair
// is not convertible. NULL casts to NULL of the target kind unconditionally.
func Cast(v Value, to Kind) (Value, error) {
	if v.kind == KindNull {
		return Value{kind: to}, nil
	}
	if v.kind == to {
		return v, nil
	}
	switch to {
	case KindString:
		return NewString(castToString(v)), nil
	case KindInt64:
		if n, ok := castToInt64(v); ok {
			return NewInt64(n), nil
		}
	case KindFloat64:
		if f, ok := castToFloat64(v); ok {
			return NewFloat64(f), nil
		}
	case KindBool:
		if b, ok := castToBool(v); ok {
			return NewBool(b), nil
		}
	case KindNumeric:
		if d, ok := castToDecimal(v); ok {
			return NewNumeric(d), nil
		}
	case KindBigNumeric:
		if d, ok := castToDecimal(v); ok {
			return NewBigNumeric(d), nil
		}
	}
	return Value{}, ErrCastFailed.New(v.kind, to)
}

// SafeCast mirrors SAFE_CAST: it returns NULL instead of an error on
// failure.
func SafeCast(v Value, to Kind) Value {
	out, err := Cast(v, to)
	if err != nil {
		return Value{kind: to}
	}
	return out
}

func castToString(v Value) string {
	switch v.kind {
	case KindNumeric, KindBigNumeric:
		return v.dec.String()
	case KindJSON:
		return v.json.Canonical()
	case KindBytes, KindGeography:
		return cast.ToString(v.byts)
	default:
		// int/float/bool/date-like scalars have no decimal or calendar
		// ambiguity, so the generic coercion library is exact here.
		return cast.ToString(scalarGo(v))
	}
}

func castToInt64(v Value) (int64, bool) {
	switch v.kind {
	case KindNumeric, KindBigNumeric:
		return v.dec.IntPart(), true
	case KindString:
		n, err := cast.ToInt64E(v.str)
		return n, err == nil
	default:
		n, err := cast.ToInt64E(scalarGo(v))
		return n, err == nil
	}
}

func castToFloat64(v Value) (float64, bool) {
	switch v.kind {
	case KindNumeric, KindBigNumeric:
		f, _ := v.dec.Float64()
		return f, true
	default:
		f, err := cast.ToFloat64E(scalarGo(v))
		return f, err == nil
	}
}

func castToBool(v Value) (bool, bool) {
	b, err := cast.ToBoolE(scalarGo(v))
	return b, err == nil
}

func castToDecimal(v Value) (decimal.Decimal, bool) {
	switch v.kind {
	case KindInt64:
		return decimal.NewFromInt(v.i64), true
	case KindFloat64:
		return decimal.NewFromFloat(v.f64), true
	case KindString:
		d, err := decimal.NewFromString(v.str)
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}

// scalarGo exposes the handful of kinds spf13/cast can coerce directly,
// without pulling in its own decimal or calendar notion.
func scalarGo(v Value) any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt64, KindDate, KindTime, KindDateTime, KindTimestamp:
		return v.i64
	case KindFloat64:
		return v.f64
	case KindString:
		return v.str
	default:
		return v.GoString()
	}
}
