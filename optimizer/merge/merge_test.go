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

package merge

import (
	"testing"

	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/plan"
	"github.com/dollarsql/bqcore/schema"
	"github.com/dollarsql/bqcore/value"
	"github.com/stretchr/testify/require"
)

func makeSchema(n int) schema.Schema {
	fields := make([]schema.Field, n)
	for i := range fields {
		fields[i] = schema.Field{Name: "col", DataType: value.KindInt64}
	}
	return schema.New(fields...)
}

func makeScan(n int) plan.PhysicalPlan {
	return plan.NewTableScan("t", nil, nil, makeSchema(n))
}

func col(idx int) expr.Expr { return expr.NewGetField(idx, "col") }

func TestMergesTwoAdjacentProjects(t *testing.T) {
	inner := plan.NewPhysicalProject(makeScan(3), []expr.Expr{col(0), col(1), col(2)}, makeSchema(3))
	outer := plan.NewPhysicalProject(inner, []expr.Expr{col(0), col(1)}, makeSchema(2))

	result := Apply(outer)
	require.Equal(t, plan.PhysicalProject, result.Kind())
	require.Equal(t, plan.PhysicalTableScan, result.Input().Kind())
	require.Len(t, result.Expressions(), 2)
}

func TestSubstitutesColumnRefsInExpressions(t *testing.T) {
	innerExprs := []expr.Expr{
		expr.NewBinaryOp(expr.OpAdd, col(0), expr.NewLiteral(value.NewInt64(1))),
		col(1),
	}
	inner := plan.NewPhysicalProject(makeScan(3), innerExprs, makeSchema(2))
	outerExprs := []expr.Expr{expr.NewBinaryOp(expr.OpMul, col(0), expr.NewLiteral(value.NewInt64(2)))}
	outer := plan.NewPhysicalProject(inner, outerExprs, makeSchema(1))

	result := Apply(outer)
	require.Equal(t, plan.PhysicalTableScan, result.Input().Kind())
	require.Len(t, result.Expressions(), 1)

	merged := result.Expressions()[0]
	require.Equal(t, expr.KindBinaryOp, merged.Kind())
	require.Equal(t, expr.OpMul, merged.BinaryOperator())
	require.Equal(t, expr.KindBinaryOp, merged.Left().Kind())
	require.Equal(t, expr.OpAdd, merged.Left().BinaryOperator())
}

func TestMergesThreeAdjacentProjects(t *testing.T) {
	proj1 := plan.NewPhysicalProject(makeScan(3), []expr.Expr{col(0), col(1), col(2)}, makeSchema(3))
	proj2 := plan.NewPhysicalProject(proj1, []expr.Expr{col(0), col(1)}, makeSchema(2))
	proj3 := plan.NewPhysicalProject(proj2, []expr.Expr{col(0)}, makeSchema(1))

	result := Apply(proj3)
	require.Equal(t, plan.PhysicalTableScan, result.Input().Kind())
	require.Len(t, result.Expressions(), 1)
}

func TestPreservesSingleProject(t *testing.T) {
	project := plan.NewPhysicalProject(makeScan(3), []expr.Expr{col(0), col(1)}, makeSchema(2))
	result := Apply(project)
	require.Equal(t, plan.PhysicalTableScan, result.Input().Kind())
	require.Len(t, result.Expressions(), 2)
}

func TestPreservesProjectWithNonProjectInput(t *testing.T) {
	filter := plan.NewPhysicalFilter(makeScan(3), expr.NewLiteral(value.NewBool(true)))
	project := plan.NewPhysicalProject(filter, []expr.Expr{col(0)}, makeSchema(1))

	result := Apply(project)
	require.Equal(t, plan.PhysicalFilter, result.Input().Kind())
}

func TestHandlesLiteralExpressions(t *testing.T) {
	innerExprs := []expr.Expr{
		expr.NewLiteral(value.NewInt64(100)),
		expr.NewLiteral(value.NewString("test")),
	}
	inner := plan.NewPhysicalProject(makeScan(3), innerExprs, makeSchema(2))
	outer := plan.NewPhysicalProject(inner, []expr.Expr{col(0), col(1)}, makeSchema(2))

	result := Apply(outer)
	require.Equal(t, plan.PhysicalTableScan, result.Input().Kind())
	require.Equal(t, int64(100), result.Expressions()[0].Literal().Int64())
	require.Equal(t, "test", result.Expressions()[1].Literal().String())
}

func TestHandlesFunctionExpressions(t *testing.T) {
	innerExprs := []expr.Expr{expr.NewScalarFunction("UPPER", col(0)), col(1)}
	inner := plan.NewPhysicalProject(makeScan(3), innerExprs, makeSchema(2))
	outer := plan.NewPhysicalProject(inner, []expr.Expr{expr.NewScalarFunction("LOWER", col(0))}, makeSchema(1))

	result := Apply(outer)
	require.Equal(t, plan.PhysicalTableScan, result.Input().Kind())
	merged := result.Expressions()[0]
	require.Equal(t, expr.KindScalarFunction, merged.Kind())
	require.Equal(t, "LOWER", merged.FuncName())
	require.Equal(t, expr.KindScalarFunction, merged.Args()[0].Kind())
	require.Equal(t, "UPPER", merged.Args()[0].FuncName())
}

func TestRecursesThroughFilter(t *testing.T) {
	proj1 := plan.NewPhysicalProject(makeScan(3), []expr.Expr{col(0), col(1)}, makeSchema(2))
	proj2 := plan.NewPhysicalProject(proj1, []expr.Expr{col(0)}, makeSchema(1))
	filter := plan.NewPhysicalFilter(proj2, expr.NewLiteral(value.NewBool(true)))

	result := Apply(filter)
	require.Equal(t, plan.PhysicalFilter, result.Kind())
	inner := *result.Input()
	require.Equal(t, plan.PhysicalProject, inner.Kind())
	require.Equal(t, plan.PhysicalTableScan, inner.Input().Kind())
}

func TestVolatileExpressionReferencedTwiceBlocksMerge(t *testing.T) {
	innerExprs := []expr.Expr{expr.NewScalarFunction("RAND")}
	inner := plan.NewPhysicalProject(makeScan(1), innerExprs, makeSchema(1))
	outerExprs := []expr.Expr{expr.NewBinaryOp(expr.OpAdd, col(0), col(0))}
	outer := plan.NewPhysicalProject(inner, outerExprs, makeSchema(1))

	result := Apply(outer)
	require.Equal(t, plan.PhysicalProject, result.Input().Kind())
}
