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

// Package accum implements the incremental aggregate accumulators the
// executor drives one row at a time: SUM, COUNT, AVG, MIN, MAX, ARRAY_AGG,
// and the three approximate families (quantiles, top-count, top-sum). Every
// accumulator exposes the same two-method shape: Accumulate ingests one
// value and Finalize produces the aggregate result. State lives entirely in
// the accumulator value; nothing here touches a schema or a plan.
package accum

import (
	"sort"

	"github.com/dollarsql/bqcore/value"
	"github.com/shopspring/decimal"
)

// Accumulator is the contract every aggregate function implements: feed it
// values one at a time in row order, then read the result once.
type Accumulator interface {
	Accumulate(v value.Value)
	Finalize() value.Value
}

// New constructs the accumulator for funcName, or reports false if funcName
// names no standard aggregate (the caller falls back to a catalog-provided
// factory for user-defined aggregates). ARRAY_AGG and the approximate
// families take constructor parameters (ORDER BY keys, LIMIT, top_n,
// num_quantiles) that a bare function name can't carry, so callers construct
// those directly (&accum.ArrayAgg{...}, &accum.ApproxTopCount{...}, ...).
func New(funcName string) (Accumulator, bool) {
	switch funcName {
	case "SUM":
		return &Sum{}, true
	case "COUNT":
		return &Count{countNulls: false}, true
	case "COUNT_STAR":
		return &Count{countNulls: true}, true
	case "AVG":
		return &Avg{}, true
	case "MIN":
		return &MinMax{keepMax: false}, true
	case "MAX":
		return &MinMax{keepMax: true}, true
	default:
		return nil, false
	}
}

// Sum accumulates the running total of non-null numeric inputs, promoting to
// the widest kind seen: Int64 until a Float64 or Numeric/BigNumeric input
// arrives, then staying in that wider representation for the rest of the
// group.
type Sum struct {
	seen bool
	kind value.Kind
	i64  int64
	f64  float64
	dec  decimal.Decimal // running total while kind is Numeric/BigNumeric
}

func (s *Sum) Accumulate(v value.Value) {
	if v.IsNull() {
		return
	}
	if !s.seen {
		s.seen = true
		s.kind = v.Kind()
	}
	switch v.Kind() {
	case value.KindFloat64:
		s.promoteToFloat()
		s.f64 += v.Float64()
	case value.KindNumeric, value.KindBigNumeric:
		if s.kind == value.KindFloat64 {
			f, _ := v.Decimal().Float64()
			s.f64 += f
			break
		}
		s.promoteToDecimal(v.Kind())
		s.dec = s.dec.Add(v.Decimal())
	default:
		if s.kind == value.KindFloat64 {
			s.f64 += float64(v.Int64())
		} else if s.kind == value.KindNumeric || s.kind == value.KindBigNumeric {
			s.dec = s.dec.Add(decimal.NewFromInt(v.Int64()))
		} else {
			s.i64 += v.Int64()
		}
	}
}

func (s *Sum) promoteToFloat() {
	if s.kind == value.KindFloat64 {
		return
	}
	if s.kind == value.KindNumeric || s.kind == value.KindBigNumeric {
		f, _ := s.dec.Float64()
		s.f64 = f
	} else {
		s.f64 = float64(s.i64)
	}
	s.kind = value.KindFloat64
}

// promoteToDecimal switches the running total to decimal accumulation the
// first time a Numeric/BigNumeric input is seen, and widens Numeric to
// BigNumeric if a wider input later arrives; BigNumeric never narrows back.
func (s *Sum) promoteToDecimal(k value.Kind) {
	if s.kind == value.KindNumeric || s.kind == value.KindBigNumeric {
		if k == value.KindBigNumeric {
			s.kind = value.KindBigNumeric
		}
		return
	}
	s.dec = decimal.NewFromInt(s.i64)
	s.kind = k
}

func (s *Sum) Finalize() value.Value {
	if !s.seen {
		return value.Null()
	}
	switch s.kind {
	case value.KindFloat64:
		return value.NewFloat64(s.f64)
	case value.KindBigNumeric:
		return value.NewBigNumeric(s.dec)
	case value.KindNumeric:
		return value.NewNumeric(s.dec)
	default:
		return value.NewInt64(s.i64)
	}
}

// Count implements both COUNT(x) (countNulls=false) and COUNT(*)
// (countNulls=true).
type Count struct {
	countNulls bool
	n          int64
}

func (c *Count) Accumulate(v value.Value) {
	if c.countNulls || !v.IsNull() {
		c.n++
	}
}

func (c *Count) Finalize() value.Value { return value.NewInt64(c.n) }

// Avg accumulates sum and count of non-null inputs and divides on finalize.
type Avg struct {
	sum Sum
	n   int64
}

func (a *Avg) Accumulate(v value.Value) {
	if v.IsNull() {
		return
	}
	a.sum.Accumulate(v)
	a.n++
}

func (a *Avg) Finalize() value.Value {
	if a.n == 0 {
		return value.Null()
	}
	total := a.sum.Finalize()
	switch total.Kind() {
	case value.KindFloat64:
		return value.NewFloat64(total.Float64() / float64(a.n))
	case value.KindNumeric, value.KindBigNumeric:
		q := total.Decimal().Div(value.NewInt64(a.n).Decimal())
		if total.Kind() == value.KindBigNumeric {
			return value.NewBigNumeric(q)
		}
		return value.NewNumeric(q)
	default:
		return value.NewFloat64(float64(total.Int64()) / float64(a.n))
	}
}

// MinMax keeps the running extremum under value.Compare's total order,
// ignoring nulls entirely.
type MinMax struct {
	keepMax bool
	seen    bool
	best    value.Value
}

func (m *MinMax) Accumulate(v value.Value) {
	if v.IsNull() {
		return
	}
	if !m.seen {
		m.seen = true
		m.best = v
		return
	}
	c := value.Compare(v, m.best)
	if (m.keepMax && c > 0) || (!m.keepMax && c < 0) {
		m.best = v
	}
}

func (m *MinMax) Finalize() value.Value {
	if !m.seen {
		return value.Null()
	}
	return m.best
}

// arrayAggRow is one buffered (sort keys, value) pair awaiting ARRAY_AGG's
// final sort/truncate.
type arrayAggRow struct {
	keys []value.Value
	val  value.Value
}

// ArrayAggOrder describes one ORDER BY key of an ArrayAgg accumulator.
type ArrayAggOrder struct {
	Desc bool
}

// ArrayAgg buffers every non-filtered input row (dropping nulls on arrival
// when IgnoreNulls is set) and defers sorting and truncation to Finalize:
// truncation always applies after sorting, never before.
type ArrayAgg struct {
	Order       []ArrayAggOrder
	Limit       int // 0 means unbounded
	IgnoreNulls bool

	rows []arrayAggRow
}

// AccumulateOrdered feeds one (value, sort-key-tuple) pair. When the
// accumulator has no ORDER BY, callers pass a nil keys slice and rows are
// finalized in arrival order.
func (a *ArrayAgg) AccumulateOrdered(v value.Value, keys []value.Value) {
	if a.IgnoreNulls && v.IsNull() {
		return
	}
	a.rows = append(a.rows, arrayAggRow{keys: keys, val: v})
}

// Accumulate implements Accumulator for the no-ORDER-BY case.
func (a *ArrayAgg) Accumulate(v value.Value) { a.AccumulateOrdered(v, nil) }

func (a *ArrayAgg) Finalize() value.Value {
	if len(a.Order) > 0 {
		sort.SliceStable(a.rows, func(i, j int) bool {
			return lessByKeys(a.rows[i].keys, a.rows[j].keys, a.Order)
		})
	}
	n := len(a.rows)
	if a.Limit > 0 && a.Limit < n {
		n = a.Limit
	}
	elems := make([]value.Value, n)
	for i := 0; i < n; i++ {
		elems[i] = a.rows[i].val
	}
	return value.NewArray(elems)
}

// lessByKeys compares two key tuples under ORDER BY semantics: each key
// uses value.Compare's total order (NULL smallest), and DESC flips the
// comparison per key, so nulls sort first ascending and last descending.
func lessByKeys(a, b []value.Value, order []ArrayAggOrder) bool {
	for i, o := range order {
		if i >= len(a) || i >= len(b) {
			break
		}
		c := value.Compare(a[i], b[i])
		if c == 0 {
			continue
		}
		if o.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}
