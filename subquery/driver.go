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

// Package subquery implements the correlated-subquery driver: for every
// ScalarSubquery/ArraySubquery/Exists/InSubquery node an optimizer pass
// leaves unrewritten, the executor calls the driver once per outer row. The
// driver substitutes outer column references with literals, re-plans the
// substituted logical plan from scratch (the planner is reentrant), executes
// it, and reduces the materialized result to the single Value the
// expression tree asked for.
package subquery

import (
	"github.com/dollarsql/bqcore/column"
	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/plan"
	"github.com/dollarsql/bqcore/schema"
	"github.com/dollarsql/bqcore/value"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	goerrors "gopkg.in/src-d/go-errors.v1"
)

// ErrNotSubqueryPlan reports that an Expr's Subquery() payload was not a
// plan.LogicalPlan, which would mean the parser/planner produced a
// malformed tree.
var ErrNotSubqueryPlan = goerrors.NewKind("subquery: expected plan.LogicalPlan payload, got %T")

// ErrNotASubqueryExpr reports that Eval was called on an Expr whose Kind is
// none of Subquery/ScalarSubquery/ArraySubquery/Exists/InSubquery.
var ErrNotASubqueryExpr = goerrors.NewKind("subquery: expr.Kind %d is not a subquery expression")

// Optimizer re-plans a substituted logical plan into a fresh physical plan.
// The driver calls this reentrantly, once per outer row, never memoizing
// across rows unless the substitution proves no outer column was touched.
type Optimizer func(plan.LogicalPlan) (plan.PhysicalPlan, error)

// Executor materializes a physical plan's rows in a fixed, deterministic
// order. It is supplied by the collaborator that owns storage access and
// operator execution; this package only drives it.
type Executor func(plan.PhysicalPlan) ([]column.Record, error)

// Driver evaluates subquery-bearing expression nodes against one outer row.
type Driver struct {
	Optimize Optimizer
	Execute  Executor
	// Logger receives a Warn-level entry whenever evalScalar silently
	// discards rows beyond the first. A nil Logger falls back to
	// logrus.StandardLogger().
	Logger logrus.FieldLogger
}

// New builds a Driver from the two collaborators it re-enters per row.
func New(optimize Optimizer, execute Executor) Driver {
	return Driver{Optimize: optimize, Execute: execute}
}

func (d Driver) logger() logrus.FieldLogger {
	if d.Logger != nil {
		return d.Logger
	}
	return logrus.StandardLogger()
}

// Eval reduces a Subquery/ScalarSubquery/ArraySubquery/Exists/InSubquery
// node to its Value, given the outer row it is being evaluated against.
// probe, for InSubquery, is the already-evaluated left-hand expression.
func (d Driver) Eval(e expr.Expr, outerSchema schema.Schema, outerRow column.Record, probe value.Value) (value.Value, error) {
	switch e.Kind() {
	case expr.KindSubquery, expr.KindScalarSubquery:
		inner, err := asLogicalPlan(e.Subquery())
		if err != nil {
			return value.Value{}, err
		}
		return d.evalScalar(inner, outerSchema, outerRow)
	case expr.KindArraySubquery:
		inner, err := asLogicalPlan(e.Subquery())
		if err != nil {
			return value.Value{}, err
		}
		return d.evalArray(inner, outerSchema, outerRow)
	case expr.KindExists:
		inner, err := asLogicalPlan(e.Subquery())
		if err != nil {
			return value.Value{}, err
		}
		rows, err := d.run(inner, outerSchema, outerRow)
		if err != nil {
			return value.Value{}, err
		}
		result := len(rows) > 0
		if e.Negated() {
			result = !result
		}
		return value.NewBool(result), nil
	case expr.KindInSubquery:
		inner, err := asLogicalPlan(e.Subquery())
		if err != nil {
			return value.Value{}, err
		}
		return d.evalIn(inner, outerSchema, outerRow, probe, e.Negated())
	default:
		return value.Value{}, ErrNotASubqueryExpr.New(e.Kind())
	}
}

func asLogicalPlan(payload any) (plan.LogicalPlan, error) {
	l, ok := payload.(plan.LogicalPlan)
	if !ok {
		return plan.LogicalPlan{}, ErrNotSubqueryPlan.New(payload)
	}
	return l, nil
}

// run substitutes outer references, re-optimizes, and executes, returning
// the materialized rows.
func (d Driver) run(inner plan.LogicalPlan, outerSchema schema.Schema, outerRow column.Record) ([]column.Record, error) {
	substituted, _ := SubstituteOuterRefs(inner, outerSchema, outerRow)
	physical, err := d.Optimize(substituted)
	if err != nil {
		return nil, errors.Wrap(err, "subquery: re-optimize substituted plan")
	}
	rows, err := d.Execute(physical)
	if err != nil {
		return nil, errors.Wrap(err, "subquery: execute substituted plan")
	}
	return rows, nil
}

// evalScalar implements the ScalarSubquery reduction: first value of the
// first column if the result has at least one row, else Null. With more
// than one row, the first row wins — deterministic given a fixed row
// order, left to the implementation where the result is undefined.
func (d Driver) evalScalar(inner plan.LogicalPlan, outerSchema schema.Schema, outerRow column.Record) (value.Value, error) {
	rows, err := d.run(inner, outerSchema, outerRow)
	if err != nil {
		return value.Value{}, err
	}
	if len(rows) == 0 || len(rows[0].Values) == 0 {
		return value.Null(), nil
	}
	if len(rows) > 1 {
		d.logger().WithFields(logrus.Fields{
			"row_count": len(rows),
		}).Warn("subquery: scalar subquery returned more than one row, keeping the first")
	}
	return rows[0].Get(0), nil
}

// evalArray implements the ArraySubquery reduction: an array of the single
// column's values if the inner plan has exactly one output column, else an
// array of structs built from the inner schema's field names.
func (d Driver) evalArray(inner plan.LogicalPlan, outerSchema schema.Schema, outerRow column.Record) (value.Value, error) {
	rows, err := d.run(inner, outerSchema, outerRow)
	if err != nil {
		return value.Value{}, err
	}
	fields := inner.Schema().Fields
	elems := make([]value.Value, len(rows))
	for i, row := range rows {
		if len(fields) == 1 {
			elems[i] = row.Get(0)
			continue
		}
		structFields := make([]value.StructField, len(fields))
		for j, f := range fields {
			structFields[j] = value.StructField{Name: f.Name, Value: row.Get(j)}
		}
		elems[i] = value.NewStruct(structFields)
	}
	return value.NewArray(elems), nil
}

// evalIn implements the InSubquery reduction: a Null probe is always False,
// a deliberate deviation from standard three-valued NULL IN semantics;
// otherwise a linear scan of the first column for a match.
func (d Driver) evalIn(inner plan.LogicalPlan, outerSchema schema.Schema, outerRow column.Record, probe value.Value, negated bool) (value.Value, error) {
	if probe.IsNull() {
		return value.NewBool(false), nil
	}
	rows, err := d.run(inner, outerSchema, outerRow)
	if err != nil {
		return value.Value{}, err
	}
	found := false
	for _, row := range rows {
		if len(row.Values) == 0 {
			continue
		}
		if eq, isNull := value.SQLEqual(row.Get(0), probe); !isNull && eq {
			found = true
			break
		}
	}
	if negated {
		found = !found
	}
	return value.NewBool(found), nil
}

// SubstituteOuterRefs rewrites every unresolved Column reference in l's
// expression tree (one whose HasIdx is false, meaning the inner planner
// never found it in l's own schema) to a Literal of outerRow's value for
// that field, if it resolves against outerSchema. Unresolved columns that
// don't resolve against the outer schema either are left as-is, to surface
// as an unresolved-column error when the re-planned tree is evaluated. The
// second return reports whether any substitution happened — a false result
// proves l carries no correlation to this outer row, which lets a caller
// safely memoize the re-plan across rows with the same input.
func SubstituteOuterRefs(l plan.LogicalPlan, outerSchema schema.Schema, outerRow column.Record) (plan.LogicalPlan, bool) {
	correlated := false
	result := substituteNode(l, outerSchema, outerRow, &correlated)
	return result, correlated
}

func substituteNode(l plan.LogicalPlan, outerSchema schema.Schema, outerRow column.Record, correlated *bool) plan.LogicalPlan {
	l = plan.TransformLogicalChildren(l, func(child plan.LogicalPlan) plan.LogicalPlan {
		return substituteNode(child, outerSchema, outerRow, correlated)
	})
	return plan.TransformLogicalExprs(l, func(e expr.Expr) expr.Expr {
		return expr.Transform(e, func(n expr.Expr) expr.Expr {
			return substituteColumnRef(n, outerSchema, outerRow, correlated)
		})
	})
}

func substituteColumnRef(n expr.Expr, outerSchema schema.Schema, outerRow column.Record, correlated *bool) expr.Expr {
	if n.Kind() != expr.KindColumn {
		return n
	}
	col := n.Column()
	if col.HasIdx {
		return n
	}
	idx := resolveOuterIndex(col, outerSchema)
	if idx < 0 {
		return n
	}
	*correlated = true
	return expr.NewLiteral(outerRow.Get(idx))
}

func resolveOuterIndex(col expr.Column, outerSchema schema.Schema) int {
	if col.Table != "" {
		return outerSchema.FieldIndexQualified(col.Name, col.Table)
	}
	return outerSchema.FieldIndex(col.Name)
}
