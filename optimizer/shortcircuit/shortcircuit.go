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

// Package shortcircuit reorders AND/OR conjuncts by estimated selectivity
// so the cheapest-to-reject conjunct (for AND) or likeliest-to-accept
// disjunct (for OR) runs first.
package shortcircuit

import (
	"sort"

	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/optimizer/cost"
	"github.com/dollarsql/bqcore/optimizer/predicate"
	"github.com/dollarsql/bqcore/plan"
)

// Apply recurses through p, reordering every predicate/condition field a
// node carries and descending into every child via plan.TransformChildren.
func Apply(p plan.PhysicalPlan) plan.PhysicalPlan {
	return ApplyWithModel(p, cost.DefaultCostModel())
}

// ApplyWithModel is Apply parameterized by an explicit cost model, letting
// a caller swap the selectivity estimator without touching this pass.
func ApplyWithModel(p plan.PhysicalPlan, model cost.CostModel) plan.PhysicalPlan {
	p = plan.TransformChildren(p, func(child plan.PhysicalPlan) plan.PhysicalPlan {
		return ApplyWithModel(child, model)
	})

	switch p.Kind() {
	case plan.PhysicalFilter, plan.PhysicalQualify:
		if p.Predicate() != nil {
			p = p.WithPredicate(ReorderPredicate(*p.Predicate(), model.Model))
		}
	case plan.PhysicalNestedLoopJoin:
		if p.Condition() != nil {
			p = p.WithCondition(ReorderPredicate(*p.Condition(), model.Model))
		}
	case plan.PhysicalUpdate, plan.PhysicalDelete:
		if p.Predicate() != nil {
			p = p.WithPredicate(ReorderPredicate(*p.Predicate(), model.Model))
		}
	case plan.PhysicalMerge:
		if p.MergeOn() != nil {
			p = p.WithMergeOn(ReorderPredicate(*p.MergeOn(), model.Model))
		}
	case plan.PhysicalIf, plan.PhysicalWhile:
		if p.Predicate() != nil {
			p = p.WithPredicate(ReorderPredicate(*p.Predicate(), model.Model))
		}
	case plan.PhysicalRepeat:
		if p.UntilCondition() != nil {
			p = p.WithUntilCondition(ReorderPredicate(*p.UntilCondition(), model.Model))
		}
	case plan.PhysicalAssert:
		if p.Predicate() != nil {
			p = p.WithPredicate(ReorderPredicate(*p.Predicate(), model.Model))
		}
	}
	return p
}

// ReorderPredicate sorts pred's top-level AND conjuncts ascending by
// selectivity (cheapest rejects first) or its top-level OR disjuncts
// descending by selectivity (likeliest acceptors first), recursing into
// each piece first so nested conjunctions/disjunctions are reordered
// inside-out.
func ReorderPredicate(pred expr.Expr, model predicate.Model) expr.Expr {
	switch {
	case pred.Kind() == expr.KindBinaryOp && pred.BinaryOperator() == expr.OpAnd:
		parts := predicate.SplitAnd(pred)
		if len(parts) <= 1 {
			return reorderSubexpressions(pred, model)
		}
		reordered := make([]expr.Expr, len(parts))
		for i, part := range parts {
			reordered[i] = ReorderPredicate(part, model)
		}
		return combineBySelectivity(reordered, model, true)

	case pred.Kind() == expr.KindBinaryOp && pred.BinaryOperator() == expr.OpOr:
		parts := predicate.SplitOr(pred)
		if len(parts) <= 1 {
			return reorderSubexpressions(pred, model)
		}
		reordered := make([]expr.Expr, len(parts))
		for i, part := range parts {
			reordered[i] = ReorderPredicate(part, model)
		}
		return combineBySelectivity(reordered, model, false)

	default:
		return reorderSubexpressions(pred, model)
	}
}

type scoredPredicate struct {
	expr        expr.Expr
	selectivity float64
}

// combineBySelectivity sorts preds by estimated selectivity (ascending
// when ascending is true, descending otherwise) and left-folds them back
// into a single binary tree with the original operator.
func combineBySelectivity(preds []expr.Expr, model predicate.Model, ascending bool) expr.Expr {
	scored := make([]scoredPredicate, len(preds))
	for i, p := range preds {
		scored[i] = scoredPredicate{expr: p, selectivity: predicate.EstimateSelectivity(p, model)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if ascending {
			return scored[i].selectivity < scored[j].selectivity
		}
		return scored[i].selectivity > scored[j].selectivity
	})

	op := expr.OpAnd
	if !ascending {
		op = expr.OpOr
	}
	acc := scored[0].expr
	for _, s := range scored[1:] {
		acc = expr.NewBinaryOp(op, acc, s.expr)
	}
	return acc
}

func reorderSubexpressions(e expr.Expr, model predicate.Model) expr.Expr {
	switch e.Kind() {
	case expr.KindBinaryOp:
		return expr.NewBinaryOp(e.BinaryOperator(), ReorderPredicate(*e.Left(), model), ReorderPredicate(*e.Right(), model))
	case expr.KindUnaryOp:
		return expr.NewUnaryOp(e.UnaryOperator(), ReorderPredicate(*e.Left(), model))
	case expr.KindIsNull:
		return expr.NewIsNull(ReorderPredicate(*e.Left(), model), e.Negated())
	case expr.KindInList:
		list := make([]expr.Expr, len(e.InList()))
		for i, item := range e.InList() {
			list[i] = ReorderPredicate(item, model)
		}
		return expr.NewInList(ReorderPredicate(*e.Left(), model), list, e.Negated())
	case expr.KindBetween:
		return expr.NewBetween(ReorderPredicate(*e.Left(), model), ReorderPredicate(*e.Low(), model), ReorderPredicate(*e.High(), model), e.Negated())
	case expr.KindLike:
		return expr.NewLike(ReorderPredicate(*e.Left(), model), ReorderPredicate(*e.Pattern(), model), e.Negated())
	case expr.KindCase:
		var operand *expr.Expr
		if e.Operand() != nil {
			o := ReorderPredicate(*e.Operand(), model)
			operand = &o
		}
		whens := make([]expr.WhenClause, len(e.WhenClauses()))
		for i, wc := range e.WhenClauses() {
			whens[i] = expr.WhenClause{Condition: ReorderPredicate(wc.Condition, model), Result: ReorderPredicate(wc.Result, model)}
		}
		var elseResult *expr.Expr
		if e.ElseResult() != nil {
			r := ReorderPredicate(*e.ElseResult(), model)
			elseResult = &r
		}
		return expr.NewCase(operand, whens, elseResult)
	case expr.KindCast:
		return expr.NewCast(ReorderPredicate(*e.Left(), model), e.DataType(), e.Safe())
	case expr.KindScalarFunction:
		args := make([]expr.Expr, len(e.Args()))
		for i, a := range e.Args() {
			args[i] = ReorderPredicate(a, model)
		}
		return expr.NewScalarFunction(e.FuncName(), args...)
	default:
		return e
	}
}
