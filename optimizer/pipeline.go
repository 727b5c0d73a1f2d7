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

package optimizer

import (
	"github.com/sirupsen/logrus"

	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/optimizer/fold"
	"github.com/dollarsql/bqcore/optimizer/inference"
	"github.com/dollarsql/bqcore/optimizer/merge"
	"github.com/dollarsql/bqcore/optimizer/shortcircuit"
	"github.com/dollarsql/bqcore/optimizer/unnest"
	"github.com/dollarsql/bqcore/plan"
)

// Pipeline runs the rule-based and cost-aware passes in a fixed order,
// logging entry/exit of the whole run and any recoverable anomaly a pass
// raises along the way.
type Pipeline struct {
	Options Options
}

// NewPipeline builds a Pipeline from opts. A zero Options{} is not usable;
// callers build opts from Default() or Load first.
func NewPipeline(opts Options) Pipeline {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return Pipeline{Options: opts}
}

// Run rewrites p through, in order: subquery unnesting (removes the need
// for per-row re-planning wherever a correlated IN/EXISTS can become a
// join), constant folding, predicate-equivalence inference, Project-merge,
// and finally selectivity-based AND/OR reordering. Each pass is bottom-up
// and idempotent; running Run twice on its own output is a no-op.
func (pl Pipeline) Run(p plan.PhysicalPlan) plan.PhysicalPlan {
	pl.Options.Logger.WithFields(logrus.Fields{
		"root_kind": p.Kind(),
	}).Trace("optimizer pipeline: start")

	p = unnest.Apply(p)
	p = applyFold(p)
	p = inference.ApplyPredicateInference(p)
	p = merge.Apply(p)
	p = shortcircuit.ApplyWithModel(p, pl.Options.CostModel)

	pl.Options.Logger.WithFields(logrus.Fields{
		"root_kind": p.Kind(),
	}).Trace("optimizer pipeline: done")
	return p
}

// applyFold recurses bottom-up through p, constant-folding every expression
// a node carries: predicates/conditions, Project's output expressions,
// HashAggregate's GROUP BY keys and aggregate calls, Sort/TopN's order keys,
// and Window's window function calls. Its predicate/condition cases are
// those of shortcircuit.Apply except Merge's MergeOn and Repeat's
// UntilCondition, which applyFold does not fold.
func applyFold(p plan.PhysicalPlan) plan.PhysicalPlan {
	p = plan.TransformChildren(p, applyFold)

	switch p.Kind() {
	case plan.PhysicalFilter, plan.PhysicalQualify, plan.PhysicalUpdate,
		plan.PhysicalDelete, plan.PhysicalIf, plan.PhysicalWhile, plan.PhysicalAssert:
		if p.Predicate() != nil {
			p = p.WithPredicate(fold.Fold(*p.Predicate()))
		}
	case plan.PhysicalNestedLoopJoin:
		if p.Condition() != nil {
			p = p.WithCondition(fold.Fold(*p.Condition()))
		}
	case plan.PhysicalProject:
		p = p.WithExpressions(foldAll(p.Expressions()))
	case plan.PhysicalHashAggregate:
		p = p.WithGroupBy(foldAll(p.GroupBy()))
		p = p.WithAggregates(foldAll(p.Aggregates()))
	case plan.PhysicalSort, plan.PhysicalTopN:
		p = p.WithSortExprs(foldOrderKeys(p.SortExprs()))
	case plan.PhysicalWindow:
		p = p.WithWindowExprs(foldAll(p.WindowExprs()))
	}
	return p
}

func foldAll(exprs []expr.Expr) []expr.Expr {
	if exprs == nil {
		return nil
	}
	out := make([]expr.Expr, len(exprs))
	for i, e := range exprs {
		out[i] = fold.Fold(e)
	}
	return out
}

func foldOrderKeys(keys []expr.OrderKey) []expr.OrderKey {
	if keys == nil {
		return nil
	}
	out := make([]expr.OrderKey, len(keys))
	for i, k := range keys {
		out[i] = expr.OrderKey{Expr: fold.Fold(k.Expr), Desc: k.Desc}
	}
	return out
}
