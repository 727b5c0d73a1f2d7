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

package accum

import (
	"sort"

	"github.com/dollarsql/bqcore/value"
)

// ApproxQuantiles buffers float64 samples and, on Finalize, emits numQuantiles+1
// values: the interpolated boundaries at positions i/numQuantiles * (n-1)
// for i in [0, numQuantiles].
type ApproxQuantiles struct {
	NumQuantiles int
	samples      []float64
}

func (a *ApproxQuantiles) Accumulate(v value.Value) {
	if v.IsNull() {
		return
	}
	a.samples = append(a.samples, toFloat64(v))
}

func (a *ApproxQuantiles) Finalize() value.Value {
	n := len(a.samples)
	if n == 0 || a.NumQuantiles <= 0 {
		return value.NewArray(nil)
	}
	sorted := append([]float64(nil), a.samples...)
	sort.Float64s(sorted)

	out := make([]value.Value, a.NumQuantiles+1)
	for i := 0; i <= a.NumQuantiles; i++ {
		pos := float64(i) / float64(a.NumQuantiles) * float64(n-1)
		lo := int(pos)
		hi := lo + 1
		if hi >= n {
			out[i] = value.NewFloat64(sorted[n-1])
			continue
		}
		frac := pos - float64(lo)
		out[i] = value.NewFloat64(sorted[lo] + frac*(sorted[hi]-sorted[lo]))
	}
	return value.NewArray(out)
}

func toFloat64(v value.Value) float64 {
	switch v.Kind() {
	case value.KindFloat64:
		return v.Float64()
	case value.KindInt64:
		return float64(v.Int64())
	case value.KindNumeric, value.KindBigNumeric:
		f, _ := v.Decimal().Float64()
		return f
	default:
		return 0
	}
}

// topEntry is one bucket of an ApproxTopCount/ApproxTopSum accumulator. The
// original value is kept alongside its GroupingKey string so Finalize never
// has to reconstruct a typed Value from the key the way a Debug-string
// round-trip would; the key only ever identifies the bucket.
type topEntry struct {
	val   value.Value
	count int64
	sum   float64
}

// ApproxTopCount keys a running count by each distinct input's GroupingKey,
// sorts descending by count on Finalize, and truncates to TopN.
type ApproxTopCount struct {
	TopN    int
	buckets map[string]*topEntry
}

func (a *ApproxTopCount) Accumulate(v value.Value) {
	if v.IsNull() {
		return
	}
	if a.buckets == nil {
		a.buckets = make(map[string]*topEntry)
	}
	key := v.GroupingKey()
	e, ok := a.buckets[key]
	if !ok {
		e = &topEntry{val: v}
		a.buckets[key] = e
	}
	e.count++
}

func (a *ApproxTopCount) Finalize() value.Value {
	entries := sortedTopEntries(a.buckets, func(e *topEntry) float64 { return float64(e.count) })
	n := a.TopN
	if n <= 0 || n > len(entries) {
		n = len(entries)
	}
	out := make([]value.Value, n)
	for i := 0; i < n; i++ {
		out[i] = value.NewStruct([]value.StructField{
			{Name: "value", Value: entries[i].val},
			{Name: "count", Value: value.NewInt64(entries[i].count)},
		})
	}
	return value.NewArray(out)
}

// ApproxTopSum keys a running weighted sum by each distinct input's
// GroupingKey, sorts descending by sum on Finalize, and truncates to TopN.
type ApproxTopSum struct {
	TopN    int
	buckets map[string]*topEntry
}

// AccumulateWeighted adds weight to v's running sum.
func (a *ApproxTopSum) AccumulateWeighted(v value.Value, weight float64) {
	if v.IsNull() {
		return
	}
	if a.buckets == nil {
		a.buckets = make(map[string]*topEntry)
	}
	key := v.GroupingKey()
	e, ok := a.buckets[key]
	if !ok {
		e = &topEntry{val: v}
		a.buckets[key] = e
	}
	e.sum += weight
}

// Accumulate implements Accumulator by treating v as its own weight when
// numeric, matching APPROX_TOP_SUM(expr, weight)'s single-argument form
// APPROX_TOP_SUM(expr) is not standard BigQuery, so this only exists to
// satisfy the Accumulator interface for uniform dispatch; real callers use
// AccumulateWeighted.
func (a *ApproxTopSum) Accumulate(v value.Value) {
	a.AccumulateWeighted(v, toFloat64(v))
}

func (a *ApproxTopSum) Finalize() value.Value {
	entries := sortedTopEntries(a.buckets, func(e *topEntry) float64 { return e.sum })
	n := a.TopN
	if n <= 0 || n > len(entries) {
		n = len(entries)
	}
	out := make([]value.Value, n)
	for i := 0; i < n; i++ {
		out[i] = value.NewStruct([]value.StructField{
			{Name: "value", Value: entries[i].val},
			{Name: "sum", Value: value.NewFloat64(entries[i].sum)},
		})
	}
	return value.NewArray(out)
}

// sortedTopEntries returns buckets ordered descending by score, breaking
// ties by GroupingKey so Finalize is deterministic across runs with equal
// counts/sums.
func sortedTopEntries(buckets map[string]*topEntry, score func(*topEntry) float64) []*topEntry {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]*topEntry, len(keys))
	for i, k := range keys {
		entries[i] = buckets[k]
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return score(entries[i]) > score(entries[j])
	})
	return entries
}
