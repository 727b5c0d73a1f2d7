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

// Package value implements the tagged-sum Value type every SQL expression
// in bqcore produces: a bit-exact representation contract for every
// BigQuery scalar and composite type, total ordering for floats, and the
// grouping identity used by GROUP BY / DISTINCT, distinct from the
// three-valued `=` operator.
package value

// Kind tags which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindFloat64
	KindNumeric
	KindBigNumeric
	KindString
	KindBytes
	KindDate
	KindTime
	KindDateTime
	KindTimestamp
	KindInterval
	KindArray
	KindStruct
	KindJSON
	KindGeography
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindBool:
		return "BOOL"
	case KindInt64:
		return "INT64"
	case KindFloat64:
		return "FLOAT64"
	case KindNumeric:
		return "NUMERIC"
	case KindBigNumeric:
		return "BIGNUMERIC"
	case KindString:
		return "STRING"
	case KindBytes:
		return "BYTES"
	case KindDate:
		return "DATE"
	case KindTime:
		return "TIME"
	case KindDateTime:
		return "DATETIME"
	case KindTimestamp:
		return "TIMESTAMP"
	case KindInterval:
		return "INTERVAL"
	case KindArray:
		return "ARRAY"
	case KindStruct:
		return "STRUCT"
	case KindJSON:
		return "JSON"
	case KindGeography:
		return "GEOGRAPHY"
	case KindRange:
		return "RANGE"
	default:
		return "UNKNOWN"
	}
}
