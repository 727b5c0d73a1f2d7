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

// Package unnest rewrites a Filter carrying an IN-subquery or EXISTS
// conjunct, whose inner plan is a simple single-column projection (or a
// correlated filter, for EXISTS), into a join — eliminating the need for
// the correlated-subquery driver to re-plan and re-execute the subquery
// once per outer row.
package unnest

import (
	"strings"

	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/optimizer/predicate"
	"github.com/dollarsql/bqcore/plan"
	"github.com/dollarsql/bqcore/schema"
)

// Apply recurses bottom-up through p, rewriting every eligible Filter into
// a semi/anti join. Filter is handled before TransformChildren reaches it
// because the rewrite may replace the Filter node with a different kind
// entirely (HashJoin, NestedLoopJoin), unlike every other node kind which
// only ever rewrites its children.
func Apply(p plan.PhysicalPlan) plan.PhysicalPlan {
	if p.Kind() == plan.PhysicalFilter {
		input := Apply(*p.Input())
		return tryUnnestInFilter(input, *p.Predicate())
	}
	return plan.TransformChildren(p, Apply)
}

func tryUnnestInFilter(input plan.PhysicalPlan, pred expr.Expr) plan.PhysicalPlan {
	outerSchema := input.Schema()

	if outerExpr, subquery, negated, remaining, ok := tryExtractInSubquery(pred); ok {
		if unnested, ok := tryUnnestInSubquery(input, outerSchema, outerExpr, subquery, negated); ok {
			return wrapRemaining(unnested, remaining)
		}
	}

	if subquery, negated, remaining, ok := tryExtractExistsSubquery(pred); ok {
		if unnested, ok := tryUnnestExists(input, outerSchema, subquery, negated); ok {
			return wrapRemaining(unnested, remaining)
		}
	}

	return plan.NewPhysicalFilter(input, pred)
}

func wrapRemaining(p plan.PhysicalPlan, remaining *expr.Expr) plan.PhysicalPlan {
	if remaining != nil {
		return plan.NewPhysicalFilter(p, *remaining)
	}
	return p
}

// tryExtractInSubquery finds an InSubquery conjunct anywhere at the top
// level of predicate's AND-decomposition, returning the remaining
// conjunct (if any) that must still be applied as a Filter on top of the
// join this produces.
func tryExtractInSubquery(pred expr.Expr) (outerExpr expr.Expr, subquery plan.LogicalPlan, negated bool, remaining *expr.Expr, ok bool) {
	switch pred.Kind() {
	case expr.KindInSubquery:
		sq, isPlan := pred.Subquery().(plan.LogicalPlan)
		if !isPlan {
			return
		}
		return *pred.Left(), sq, pred.Negated(), nil, true
	case expr.KindBinaryOp:
		if pred.BinaryOperator() != expr.OpAnd {
			return
		}
		left, right := *pred.Left(), *pred.Right()
		if oe, sq, neg, rem, found := tryExtractInSubquery(left); found {
			r := right
			if rem != nil {
				r = expr.NewBinaryOp(expr.OpAnd, *rem, right)
			}
			return oe, sq, neg, &r, true
		}
		if oe, sq, neg, rem, found := tryExtractInSubquery(right); found {
			l := left
			if rem != nil {
				l = expr.NewBinaryOp(expr.OpAnd, left, *rem)
			}
			return oe, sq, neg, &l, true
		}
	}
	return
}

func tryExtractExistsSubquery(pred expr.Expr) (subquery plan.LogicalPlan, negated bool, remaining *expr.Expr, ok bool) {
	switch pred.Kind() {
	case expr.KindExists:
		sq, isPlan := pred.Subquery().(plan.LogicalPlan)
		if !isPlan {
			return
		}
		return sq, pred.Negated(), nil, true
	case expr.KindBinaryOp:
		if pred.BinaryOperator() != expr.OpAnd {
			return
		}
		left, right := *pred.Left(), *pred.Right()
		if sq, neg, rem, found := tryExtractExistsSubquery(left); found {
			r := right
			if rem != nil {
				r = expr.NewBinaryOp(expr.OpAnd, *rem, right)
			}
			return sq, neg, &r, true
		}
		if sq, neg, rem, found := tryExtractExistsSubquery(right); found {
			l := left
			if rem != nil {
				l = expr.NewBinaryOp(expr.OpAnd, left, *rem)
			}
			return sq, neg, &l, true
		}
	}
	return
}

func tryUnnestInSubquery(outerInput plan.PhysicalPlan, outerSchema schema.Schema, outerExpr expr.Expr, subquery plan.LogicalPlan, negated bool) (plan.PhysicalPlan, bool) {
	innerPlan, innerExpr, ok := extractSingleColumnProjection(subquery)
	if !ok {
		return plan.PhysicalPlan{}, false
	}

	innerPhysical, ok := logicalToPhysical(innerPlan)
	if !ok {
		return plan.PhysicalPlan{}, false
	}

	joinType := plan.JoinLeftSemi
	if negated {
		joinType = plan.JoinLeftAnti
	}

	adjustedInnerExpr := adjustInnerColumnIndices(innerExpr, outerSchema.Len())

	return plan.NewHashJoin(outerInput, innerPhysical, joinType,
		[]expr.Expr{outerExpr}, []expr.Expr{adjustedInnerExpr}, outerSchema, false, plan.ExecutionHints{}), true
}

func tryUnnestExists(outerInput plan.PhysicalPlan, outerSchema schema.Schema, subquery plan.LogicalPlan, negated bool) (plan.PhysicalPlan, bool) {
	innerPlan, correlationPredicate, ok := extractCorrelatedFilter(subquery, outerSchema)
	if !ok {
		return plan.PhysicalPlan{}, false
	}

	innerPhysical, ok := logicalToPhysical(innerPlan)
	if !ok {
		return plan.PhysicalPlan{}, false
	}

	joinType := plan.JoinLeftSemi
	if negated {
		joinType = plan.JoinLeftAnti
	}

	adjustedCondition := adjustInnerColumnIndices(correlationPredicate, outerSchema.Len())

	return plan.NewNestedLoopJoin(outerInput, innerPhysical, joinType, &adjustedCondition, outerSchema, false, plan.ExecutionHints{}), true
}

// extractSingleColumnProjection unwraps a Filter/Distinct/Limit/Sort chain
// down to a Project of exactly one expression, returning the chain with
// the projection and any Distinct removed plus that one expression
// (alias-unwrapped).
func extractSingleColumnProjection(l plan.LogicalPlan) (plan.LogicalPlan, expr.Expr, bool) {
	switch l.Kind() {
	case plan.LogicalProject:
		exprs := l.Expressions()
		if len(exprs) != 1 {
			return plan.LogicalPlan{}, expr.Expr{}, false
		}
		return *l.Input(), unwrapAlias(exprs[0]), true
	case plan.LogicalFilter:
		inner, e, ok := extractSingleColumnProjection(*l.Input())
		if !ok {
			return plan.LogicalPlan{}, expr.Expr{}, false
		}
		return plan.NewFilter(inner, *l.Predicate()), e, true
	case plan.LogicalDistinct:
		return extractSingleColumnProjection(*l.Input())
	case plan.LogicalLimit:
		inner, e, ok := extractSingleColumnProjection(*l.Input())
		if !ok {
			return plan.LogicalPlan{}, expr.Expr{}, false
		}
		return plan.NewLimit(inner, l.Limit(), l.Offset()), e, true
	case plan.LogicalSort:
		inner, e, ok := extractSingleColumnProjection(*l.Input())
		if !ok {
			return plan.LogicalPlan{}, expr.Expr{}, false
		}
		return plan.NewSort(inner, l.SortExprs()), e, true
	}
	return plan.LogicalPlan{}, expr.Expr{}, false
}

// extractCorrelatedFilter walks down through Project/Distinct/Limit to the
// first Filter. If that Filter's predicate has at least one conjunct
// referencing an outer table qualifier, it peels those conjuncts off into
// the join condition and leaves any remaining uncorrelated conjuncts
// applied inside the inner plan; otherwise it reports false without
// looking at deeper Filters.
func extractCorrelatedFilter(l plan.LogicalPlan, outerSchema schema.Schema) (plan.LogicalPlan, expr.Expr, bool) {
	switch l.Kind() {
	case plan.LogicalFilter:
		outerTableNames := map[string]bool{}
		for _, f := range outerSchema.Fields {
			if f.SourceTable != "" {
				outerTableNames[strings.ToUpper(f.SourceTable)] = true
			}
		}
		if len(outerTableNames) == 0 {
			return plan.LogicalPlan{}, expr.Expr{}, false
		}

		correlated, uncorrelated := splitCorrelationPredicatesByTable(*l.Predicate(), outerTableNames)
		if len(correlated) == 0 {
			return plan.LogicalPlan{}, expr.Expr{}, false
		}

		correlationExpr, ok := predicate.CombineAnd(correlated)
		if !ok {
			return plan.LogicalPlan{}, expr.Expr{}, false
		}

		innerPlan := *l.Input()
		if len(uncorrelated) > 0 {
			uncorrExpr, ok := predicate.CombineAnd(uncorrelated)
			if !ok {
				return plan.LogicalPlan{}, expr.Expr{}, false
			}
			innerPlan = plan.NewFilter(innerPlan, uncorrExpr)
		}

		return innerPlan, correlationExpr, true
	case plan.LogicalProject, plan.LogicalDistinct, plan.LogicalLimit:
		return extractCorrelatedFilter(*l.Input(), outerSchema)
	}
	return plan.LogicalPlan{}, expr.Expr{}, false
}

func splitCorrelationPredicatesByTable(pred expr.Expr, outerTableNames map[string]bool) (correlated, uncorrelated []expr.Expr) {
	for _, conjunct := range predicate.SplitAnd(pred) {
		if referencesOuterTable(conjunct, outerTableNames) {
			correlated = append(correlated, conjunct)
		} else {
			uncorrelated = append(uncorrelated, conjunct)
		}
	}
	return
}

func referencesOuterTable(e expr.Expr, outerTableNames map[string]bool) bool {
	found := false
	expr.Walk(e, func(n expr.Expr) bool {
		if found {
			return false
		}
		if n.Kind() == expr.KindColumn {
			c := n.Column()
			if c.Table != "" && outerTableNames[strings.ToUpper(c.Table)] {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

func unwrapAlias(e expr.Expr) expr.Expr {
	for e.Kind() == expr.KindAlias {
		e = *e.Inner()
	}
	return e
}

// adjustInnerColumnIndices shifts every resolved column index in e by
// outerLen, since the inner plan's physical form is placed to the right of
// the outer input in the join's concatenated schema.
func adjustInnerColumnIndices(e expr.Expr, outerLen int) expr.Expr {
	return expr.Transform(e, func(n expr.Expr) expr.Expr {
		if n.Kind() != expr.KindColumn {
			return n
		}
		c := n.Column()
		if !c.HasIdx {
			return n
		}
		return expr.NewColumn(c.Table, c.Name, c.Index+outerLen, true)
	})
}

// logicalToPhysical performs the narrow direct translation unnesting
// needs: the inner plans extractSingleColumnProjection/extractCorrelatedFilter
// ever produce are Scan wrapped in some combination of Filter, Distinct,
// Limit and Sort, never anything requiring cost-based physical strategy
// selection.
func logicalToPhysical(l plan.LogicalPlan) (plan.PhysicalPlan, bool) {
	switch l.Kind() {
	case plan.LogicalScan:
		return plan.NewTableScan(l.TableName(), nil, nil, l.Schema()), true
	case plan.LogicalFilter:
		input, ok := logicalToPhysical(*l.Input())
		if !ok {
			return plan.PhysicalPlan{}, false
		}
		return plan.NewPhysicalFilter(input, *l.Predicate()), true
	case plan.LogicalDistinct:
		input, ok := logicalToPhysical(*l.Input())
		if !ok {
			return plan.PhysicalPlan{}, false
		}
		return plan.NewPhysicalDistinct(input), true
	case plan.LogicalLimit:
		input, ok := logicalToPhysical(*l.Input())
		if !ok {
			return plan.PhysicalPlan{}, false
		}
		return plan.NewPhysicalLimit(input, l.Limit(), l.Offset()), true
	case plan.LogicalSort:
		input, ok := logicalToPhysical(*l.Input())
		if !ok {
			return plan.PhysicalPlan{}, false
		}
		return plan.NewPhysicalSort(input, l.SortExprs(), plan.ExecutionHints{}), true
	}
	return plan.PhysicalPlan{}, false
}
