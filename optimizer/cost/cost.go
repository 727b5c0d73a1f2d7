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

// Package cost estimates plan cardinalities and picks a join's build side
// and strategy from those estimates. It is a single-interface seam: a
// caller swaps the estimator by constructing a different Model, not by
// touching the callers that consume CostModel.
package cost

import (
	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/optimizer/predicate"
	"github.com/dollarsql/bqcore/plan"
)

// DefaultTableRowCount is used when a TableScan carries no RowCountHint.
// It is a deliberately middling guess: low enough not to always prefer
// building a hash table on an unmeasured table, high enough not to treat
// every unmeasured scan as trivially small.
const DefaultTableRowCount int64 = 1000

// CostModel is the swappable estimator: replacing it is a single value
// change, not a rewrite of its callers. It embeds the selectivity table the
// predicate toolkit already defines so a single value configures both
// predicate selectivity and join cardinality estimation.
type CostModel struct {
	predicate.Model
	DefaultTableRowCount int64
}

// DefaultCostModel returns the heuristic cost model used when no
// configuration overrides it.
func DefaultCostModel() CostModel {
	return CostModel{Model: predicate.DefaultModel(), DefaultTableRowCount: DefaultTableRowCount}
}

// EstimateRowCount walks p and produces a cardinality estimate. Every
// estimate is a heuristic derived from RowCountHint and selectivity, not
// from actual table statistics — this package never collects or consults
// real table statistics.
func EstimateRowCount(p plan.PhysicalPlan, model CostModel) int64 {
	switch p.Kind() {
	case plan.PhysicalTableScan:
		if hint := p.RowCountHint(); hint != nil {
			return *hint
		}
		return model.tableRowCount()

	case plan.PhysicalFilter, plan.PhysicalQualify:
		input := EstimateRowCount(*p.Input(), model)
		sel := predicate.EstimateSelectivity(*p.Predicate(), model.Model)
		return scaleRowCount(input, sel)

	case plan.PhysicalLimit:
		input := EstimateRowCount(*p.Input(), model)
		if p.Limit() == nil {
			return input
		}
		if *p.Limit() < input {
			return *p.Limit()
		}
		return input

	case plan.PhysicalTopN:
		input := EstimateRowCount(*p.Input(), model)
		if lim := p.Limit(); lim != nil && *lim < input {
			return *lim
		}
		return input

	case plan.PhysicalDistinct:
		input := EstimateRowCount(*p.Input(), model)
		return scaleRowCount(input, 0.5)

	case plan.PhysicalProject, plan.PhysicalSort, plan.PhysicalWindow, plan.PhysicalSample:
		return EstimateRowCount(*p.Input(), model)

	case plan.PhysicalHashAggregate:
		input := EstimateRowCount(*p.Input(), model)
		if len(p.GroupBy()) == 0 {
			return 1
		}
		return scaleRowCount(input, 0.25)

	case plan.PhysicalHashJoin, plan.PhysicalNestedLoopJoin, plan.PhysicalCrossJoin:
		left := EstimateRowCount(*p.Left(), model)
		right := EstimateRowCount(*p.Right(), model)
		switch p.JoinType() {
		case plan.JoinLeftSemi, plan.JoinLeftAnti:
			return scaleRowCount(left, 0.5)
		default:
			product := left * right
			if product <= 0 {
				return left + right
			}
			return scaleRowCount(product, 0.1)
		}

	case plan.PhysicalSetOperation:
		var total int64
		for _, in := range p.Inputs() {
			total += EstimateRowCount(in, model)
		}
		return total
	}

	return model.tableRowCount()
}

func (m CostModel) tableRowCount() int64 {
	if m.DefaultTableRowCount > 0 {
		return m.DefaultTableRowCount
	}
	return DefaultTableRowCount
}

func scaleRowCount(n int64, factor float64) int64 {
	scaled := int64(float64(n) * factor)
	if scaled < 1 {
		return 1
	}
	return scaled
}

// ChooseBuildSide reports whether the left input should be the hash
// table's build side: the side with the smaller estimated row count,
// since the cost of probing is proportional to the non-build side's
// size while the build side pays the hashing cost once.
func ChooseBuildSide(left, right plan.PhysicalPlan, model CostModel) bool {
	return EstimateRowCount(left, model) <= EstimateRowCount(right, model)
}

// PreferHashJoin reports whether a hash join is applicable for the given
// join keys: hash join requires at least one equality key pair on each
// side, one nested-loop join is the fallback for non-equality or
// keyless join conditions.
func PreferHashJoin(leftKeys, rightKeys []expr.Expr) bool {
	return len(leftKeys) > 0 && len(leftKeys) == len(rightKeys)
}
