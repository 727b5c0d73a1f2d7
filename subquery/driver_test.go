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

package subquery

import (
	"testing"

	"github.com/dollarsql/bqcore/column"
	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/plan"
	"github.com/dollarsql/bqcore/schema"
	"github.com/dollarsql/bqcore/value"
	"github.com/stretchr/testify/require"
)

func ordersScan() plan.LogicalPlan {
	s := schema.New(
		schema.Field{Name: "user_id", SourceTable: "o"},
		schema.Field{Name: "amount", SourceTable: "o"},
	)
	return plan.NewScan("orders", s)
}

func TestSubstituteOuterRefsReplacesUnresolvedColumn(t *testing.T) {
	inner := ordersScan()
	pred := expr.NewBinaryOp(expr.OpEq,
		expr.NewColumn("o", "user_id", 0, true),
		expr.NewColumn("u", "id", 0, false),
	)
	filterPlan := plan.NewFilter(inner, pred)

	outerSchema := schema.New(schema.Field{Name: "id", SourceTable: "u"})
	outerRow := column.NewRecord(value.NewInt64(42))

	result, correlated := SubstituteOuterRefs(filterPlan, outerSchema, outerRow)
	require.True(t, correlated)

	right := *result.Predicate().Right()
	require.Equal(t, expr.KindLiteral, right.Kind())
	require.Equal(t, int64(42), right.Literal().Int64())

	left := *result.Predicate().Left()
	require.Equal(t, expr.KindColumn, left.Kind())
}

func TestSubstituteOuterRefsLeavesUnresolvableColumnAlone(t *testing.T) {
	inner := ordersScan()
	pred := expr.NewBinaryOp(expr.OpEq,
		expr.NewColumn("o", "user_id", 0, true),
		expr.NewColumn("x", "nope", 0, false),
	)
	filterPlan := plan.NewFilter(inner, pred)

	outerSchema := schema.New(schema.Field{Name: "id", SourceTable: "u"})
	outerRow := column.NewRecord(value.NewInt64(42))

	result, correlated := SubstituteOuterRefs(filterPlan, outerSchema, outerRow)
	require.False(t, correlated)
	require.Equal(t, expr.KindColumn, result.Predicate().Right().Kind())
}

func TestSubstituteOuterRefsReportsNoCorrelationWhenNoneFound(t *testing.T) {
	inner := ordersScan()
	pred := expr.NewBinaryOp(expr.OpEq,
		expr.NewColumn("o", "user_id", 0, true),
		expr.NewLiteral(value.NewInt64(1)),
	)
	filterPlan := plan.NewFilter(inner, pred)

	outerSchema := schema.New(schema.Field{Name: "id", SourceTable: "u"})
	outerRow := column.NewRecord(value.NewInt64(42))

	_, correlated := SubstituteOuterRefs(filterPlan, outerSchema, outerRow)
	require.False(t, correlated)
}

func fakeOptimizer() Optimizer {
	return func(l plan.LogicalPlan) (plan.PhysicalPlan, error) {
		return plan.NewTableScan(l.TableName(), nil, nil, l.Schema()), nil
	}
}

func singleColumnRows(vals ...int64) Executor {
	return func(plan.PhysicalPlan) ([]column.Record, error) {
		rows := make([]column.Record, len(vals))
		for i, v := range vals {
			rows[i] = column.NewRecord(value.NewInt64(v))
		}
		return rows, nil
	}
}

func noRows() Executor {
	return func(plan.PhysicalPlan) ([]column.Record, error) { return nil, nil }
}

func TestEvalScalarSubqueryReturnsFirstRowFirstColumn(t *testing.T) {
	d := New(fakeOptimizer(), singleColumnRows(7, 8, 9))
	inner := ordersScan()
	e := expr.NewScalarSubquery(inner)

	result, err := d.Eval(e, schema.Schema{}, column.Record{}, value.Value{})
	require.NoError(t, err)
	require.Equal(t, int64(7), result.Int64())
}

func TestEvalScalarSubqueryEmptyReturnsNull(t *testing.T) {
	d := New(fakeOptimizer(), noRows())
	inner := ordersScan()
	e := expr.NewScalarSubquery(inner)

	result, err := d.Eval(e, schema.Schema{}, column.Record{}, value.Value{})
	require.NoError(t, err)
	require.True(t, result.IsNull())
}

func TestEvalArraySubquerySingleColumn(t *testing.T) {
	d := New(fakeOptimizer(), singleColumnRows(1, 2, 3))
	inner := plan.NewScan("t", schema.New(schema.Field{Name: "x"}))
	e := expr.NewArraySubquery(inner)

	result, err := d.Eval(e, schema.Schema{}, column.Record{}, value.Value{})
	require.NoError(t, err)
	elems := result.Array()
	require.Len(t, elems, 3)
	require.Equal(t, int64(1), elems[0].Int64())
}

func TestEvalArraySubqueryMultiColumnProducesStructs(t *testing.T) {
	executor := func(plan.PhysicalPlan) ([]column.Record, error) {
		return []column.Record{
			column.NewRecord(value.NewInt64(1), value.NewString("a")),
			column.NewRecord(value.NewInt64(2), value.NewString("b")),
		}, nil
	}
	d := New(fakeOptimizer(), executor)
	inner := ordersScan()
	e := expr.NewArraySubquery(inner)

	result, err := d.Eval(e, schema.Schema{}, column.Record{}, value.Value{})
	require.NoError(t, err)
	elems := result.Array()
	require.Len(t, elems, 2)
	fields := elems[0].StructFields()
	require.Equal(t, "user_id", fields[0].Name)
	require.Equal(t, int64(1), fields[0].Value.Int64())
	require.Equal(t, "amount", fields[1].Name)
	require.Equal(t, "a", fields[1].Value.String())
}

func TestEvalExistsTrueWhenRowsPresent(t *testing.T) {
	d := New(fakeOptimizer(), singleColumnRows(1))
	inner := ordersScan()
	e := expr.NewExists(inner, false)

	result, err := d.Eval(e, schema.Schema{}, column.Record{}, value.Value{})
	require.NoError(t, err)
	require.True(t, result.Bool())
}

func TestEvalExistsNegated(t *testing.T) {
	d := New(fakeOptimizer(), noRows())
	inner := ordersScan()
	e := expr.NewExists(inner, true)

	result, err := d.Eval(e, schema.Schema{}, column.Record{}, value.Value{})
	require.NoError(t, err)
	require.True(t, result.Bool())
}

func TestEvalInSubqueryNullProbeIsAlwaysFalse(t *testing.T) {
	d := New(fakeOptimizer(), singleColumnRows(1, 2, 3))
	inner := ordersScan()
	e := expr.NewInSubquery(expr.NewLiteral(value.Null()), inner, false)

	result, err := d.Eval(e, schema.Schema{}, column.Record{}, value.Null())
	require.NoError(t, err)
	require.False(t, result.Bool())
}

func TestEvalInSubqueryFindsMatch(t *testing.T) {
	d := New(fakeOptimizer(), singleColumnRows(1, 2, 3))
	inner := ordersScan()
	e := expr.NewInSubquery(expr.NewLiteral(value.NewInt64(2)), inner, false)

	result, err := d.Eval(e, schema.Schema{}, column.Record{}, value.NewInt64(2))
	require.NoError(t, err)
	require.True(t, result.Bool())
}

func TestEvalInSubqueryNegatedNoMatch(t *testing.T) {
	d := New(fakeOptimizer(), singleColumnRows(1, 2, 3))
	inner := ordersScan()
	e := expr.NewInSubquery(expr.NewLiteral(value.NewInt64(9)), inner, true)

	result, err := d.Eval(e, schema.Schema{}, column.Record{}, value.NewInt64(9))
	require.NoError(t, err)
	require.True(t, result.Bool())
}
