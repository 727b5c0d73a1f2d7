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

	"github.com/mitchellh/hashstructure/v2"
)

// hashShadow is the structure actually fed to hashstructure: it flattens
// the parts of Value that hashstructure can't traverse safely on its own
// (decimal.Decimal's unexported fields, the float total-order requirement)
// into plain, hashable Go values.
type hashShadow struct {
	Kind   Kind
	Bool   bool
	Int64  int64
	Float  uint64
	Dec    string
	Str    string
	Bytes  []byte
	IvMo   int32
	IvDay  int32
	IvNs   int64
	Arr    []uint64
	Strct  []structShadow
	JSON   string
	RngLo  string
	RngHi  string
}

type structShadow struct {
	Name string
	Hash uint64
}

// Hash returns a 64-bit hash consistent with GroupingEqual: two values that
// are GroupingEqual always hash identically. No package outside value calls
// it; map-keyed grouping in accum uses GroupingKey instead.
func (v Value) Hash() uint64 {
	s := hashShadow{Kind: v.kind}
	switch v.kind {
	case KindNull:
		// identical shadow for every Null, by construction
	case KindBool:
		s.Bool = v.b
	case KindInt64, KindDate, KindTime, KindDateTime, KindTimestamp:
		s.Int64 = v.i64
	case KindFloat64:
		s.Float = floatTotalOrderKey(v.f64)
	case KindNumeric, KindBigNumeric:
		s.Dec = v.dec.String()
	case KindString:
		s.Str = v.str
	case KindBytes, KindGeography:
		s.Bytes = v.byts
	case KindInterval:
		s.IvMo, s.IvDay, s.IvNs = v.interval.Months, v.interval.Days, v.interval.Nanos
	case KindArray:
		s.Arr = make([]uint64, len(v.arr))
		for i, e := range v.arr {
			s.Arr[i] = e.Hash()
		}
	case KindStruct:
		s.Strct = make([]structShadow, len(v.strct))
		for i, f := range v.strct {
			s.Strct[i] = structShadow{Name: f.Name, Hash: f.Value.Hash()}
		}
	case KindJSON:
		s.JSON = v.json.Canonical()
	case KindRange:
		if v.rng.Lower != nil {
			s.RngLo = fmt.Sprintf("%d", v.rng.Lower.Hash())
		}
		if v.rng.Upper != nil {
			s.RngHi = fmt.Sprintf("%d", v.rng.Upper.Hash())
		}
	}
	h, err := hashstructure.Hash(s, hashstructure.FormatV2, nil)
	if err != nil {
		// hashShadow contains only primitive fields hashstructure always
		// supports; a failure here means the shadow's shape is broken.
		panic(fmt.Sprintf("value: hashstructure failed on well-formed shadow: %v", err))
	}
	return h
}

// GroupingKey returns a canonical, comparable Go string usable as a map key
// wherever Go equality must mirror GroupingEqual (e.g. a plain map[string]T
// accumulator bucket). Two values produce the same key iff GroupingEqual
// reports them equal.
func (v Value) GroupingKey() string {
	if v.kind == KindFloat64 {
		return fmt.Sprintf("F:%d", floatTotalOrderKey(v.f64))
	}
	return fmt.Sprintf("%d:%s", v.kind, v.GoString())
}
