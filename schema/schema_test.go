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

package schema

import (
	"testing"

	"github.com/dollarsql/bqcore/value"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func testSchema() Schema {
	return New(
		Field{Name: "id", DataType: value.KindInt64, SourceTable: "t1"},
		Field{Name: "name", DataType: value.KindString, SourceTable: "t1"},
		Field{Name: "id", DataType: value.KindInt64, SourceTable: "t2"},
	)
}

func TestFieldIndexFirstMatchWins(t *testing.T) {
	s := testSchema()
	require.Equal(t, 0, s.FieldIndex("id"))
	require.Equal(t, 0, s.FieldIndex("ID"))
}

func TestFieldIndexQualified(t *testing.T) {
	s := testSchema()
	require.Equal(t, 0, s.FieldIndexQualified("id", "t1"))
	require.Equal(t, 2, s.FieldIndexQualified("id", "t2"))
	require.Equal(t, 2, s.FieldIndexQualified("ID", "T2"))
	require.Equal(t, -1, s.FieldIndexQualified("id", "t3"))
}

func TestFieldIndexQualifiedUnqualifiedEmptyTableOnly(t *testing.T) {
	s := New(Field{Name: "x"}, Field{Name: "y", SourceTable: "t"})
	require.Equal(t, 0, s.FieldIndexQualified("x", ""))
	require.Equal(t, -1, s.FieldIndexQualified("y", ""))
}

func TestFieldIndexNotFound(t *testing.T) {
	s := testSchema()
	require.Equal(t, -1, s.FieldIndex("missing"))
}

func TestConcat(t *testing.T) {
	a := New(Field{Name: "a", DataType: value.KindInt64})
	b := New(Field{Name: "b", DataType: value.KindString, SourceTable: "t"})
	c := Concat(a, b)

	want := []Field{
		{Name: "a", DataType: value.KindInt64},
		{Name: "b", DataType: value.KindString, SourceTable: "t"},
	}
	if diff := cmp.Diff(want, c.Fields); diff != "" {
		t.Errorf("Concat fields mismatch (-want +got):\n%s", diff)
	}
}

func TestProject(t *testing.T) {
	s := testSchema()
	p := s.Project([]int{2, 0})

	want := []Field{
		{Name: "id", DataType: value.KindInt64, SourceTable: "t2"},
		{Name: "id", DataType: value.KindInt64, SourceTable: "t1"},
	}
	if diff := cmp.Diff(want, p.Fields); diff != "" {
		t.Errorf("Project fields mismatch (-want +got):\n%s", diff)
	}
}
