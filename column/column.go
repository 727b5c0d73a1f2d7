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

package column

import (
	"github.com/dollarsql/bqcore/schema"
	"github.com/dollarsql/bqcore/value"
)

// Column is a logical vector of Values of one declared type plus a parallel
// NullBitmap of the same length.
type Column struct {
	Type   value.Kind
	Values []value.Value
	Nulls  NullBitmap
}

// NewColumn builds a Column from values, deriving the null bitmap from
// each value's Kind.
func NewColumn(typ value.Kind, values []value.Value) Column {
	nulls := NewValidBitmap(len(values))
	for i, v := range values {
		if v.IsNull() {
			nulls.SetNull(i)
		}
	}
	return Column{Type: typ, Values: values, Nulls: nulls}
}

func (c Column) Len() int { return len(c.Values) }

// At returns the logical value at index i: Null() if the bitmap marks it
// null, regardless of what Values[i] happens to hold.
func (c Column) At(i int) value.Value {
	if c.Nulls.IsNull(i) {
		return value.Null()
	}
	return c.Values[i]
}

// Gather builds a new Column by selecting rows at indices, in order.
func (c Column) Gather(indices []int) Column {
	values := make([]value.Value, len(indices))
	for i, idx := range indices {
		values[i] = c.Values[idx]
	}
	return Column{Type: c.Type, Values: values, Nulls: c.Nulls.Gather(indices)}
}

// Record is a row-sliced view: one Value per field, in schema order.
type Record struct {
	Values []value.Value
}

func NewRecord(values ...value.Value) Record { return Record{Values: values} }

func (r Record) Get(index int) value.Value { return r.Values[index] }

func (r Record) Len() int { return len(r.Values) }

// Table is an ordered sequence of named Columns sharing a Schema.
type Table struct {
	Schema  schema.Schema
	Columns []Column
}

func NewTable(s schema.Schema, columns []Column) Table {
	return Table{Schema: s, Columns: columns}
}

// NumRows returns the row count, 0 for a table with no columns.
func (t Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Row materializes row i as a Record.
func (t Table) Row(i int) Record {
	values := make([]value.Value, len(t.Columns))
	for c, col := range t.Columns {
		values[c] = col.At(i)
	}
	return Record{Values: values}
}

// IsEmpty reports whether the table has zero rows.
func (t Table) IsEmpty() bool { return t.NumRows() == 0 }
