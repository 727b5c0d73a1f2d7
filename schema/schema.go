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

// Package schema describes the ordered, named, typed field lists that every
// plan node and expression evaluator resolves column references against.
package schema

import (
	"strings"

	"github.com/dollarsql/bqcore/value"
)

// Field is one column declaration within a Schema.
type Field struct {
	Name         string
	DataType     value.Kind
	Nullable     bool
	SourceTable  string // empty when unqualified
	DefaultExpr  any    // *expr.Expr; any to avoid an import cycle with package expr
}

// Schema is an ordered sequence of Fields. Field names may repeat only
// across distinct SourceTable qualifiers.
type Schema struct {
	Fields []Field
}

// New builds a Schema from the given fields, in order.
func New(fields ...Field) Schema {
	return Schema{Fields: fields}
}

// Len returns the number of fields.
func (s Schema) Len() int { return len(s.Fields) }

// FieldIndex performs a case-insensitive unqualified lookup, returning the
// index of the first field whose Name matches, or -1 if none match.
func (s Schema) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

// FieldIndexQualified performs a case-insensitive lookup on both name and
// table qualifier. An empty table matches only unqualified fields (fields
// whose SourceTable is also empty).
func (s Schema) FieldIndexQualified(name, table string) int {
	for i, f := range s.Fields {
		if !strings.EqualFold(f.Name, name) {
			continue
		}
		if table == "" {
			if f.SourceTable == "" {
				return i
			}
			continue
		}
		if strings.EqualFold(f.SourceTable, table) {
			return i
		}
	}
	return -1
}

// Concat returns a new schema whose fields are those of each schema in
// argument order, used to build the visible schema at a node with multiple
// children (e.g. a join).
func Concat(schemas ...Schema) Schema {
	var out []Field
	for _, s := range schemas {
		out = append(out, s.Fields...)
	}
	return Schema{Fields: out}
}

// Project returns the sub-schema consisting of the fields at the given
// indices, in the given order.
func (s Schema) Project(indices []int) Schema {
	out := make([]Field, len(indices))
	for i, idx := range indices {
		out[i] = s.Fields[idx]
	}
	return Schema{Fields: out}
}
