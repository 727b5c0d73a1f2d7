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

package plan

import "github.com/dollarsql/bqcore/expr"

// WithLeft, WithRight, WithInputs, WithInsertSource, WithCreateQuery,
// WithThenBody and WithElseBody round out the single-field copy-and-rewrite
// helpers started by WithInput/WithPredicate/WithCondition, so that whole-
// tree rewrites (predicate inference, project merging, subquery unnesting,
// short-circuit reordering) can replace exactly the children a given node
// carries without reconstructing every other field.
func (p PhysicalPlan) WithLeft(left PhysicalPlan) PhysicalPlan {
	p.left = &left
	return p
}

func (p PhysicalPlan) WithRight(right PhysicalPlan) PhysicalPlan {
	p.right = &right
	return p
}

func (p PhysicalPlan) WithInputs(inputs []PhysicalPlan) PhysicalPlan {
	p.inputs = inputs
	return p
}

func (p PhysicalPlan) WithInsertSource(source PhysicalPlan) PhysicalPlan {
	p.insertSource = &source
	return p
}

func (p PhysicalPlan) WithCreateQuery(query *PhysicalPlan) PhysicalPlan {
	p.createQuery = query
	return p
}

func (p PhysicalPlan) WithThenBody(body PhysicalPlan) PhysicalPlan {
	p.thenBody = &body
	return p
}

func (p PhysicalPlan) WithElseBody(body *PhysicalPlan) PhysicalPlan {
	p.elseBody = body
	return p
}

func (p PhysicalPlan) WithExplainTarget(target PhysicalPlan) PhysicalPlan {
	p.explainTarget = &target
	return p
}

// WithMergeOn returns a copy of p with its MERGE ON condition replaced.
func (p PhysicalPlan) WithMergeOn(on expr.Expr) PhysicalPlan {
	p.mergeOn = &on
	return p
}

// WithUntilCondition returns a copy of p with its REPEAT UNTIL condition
// replaced.
func (p PhysicalPlan) WithUntilCondition(cond expr.Expr) PhysicalPlan {
	p.untilCondition = &cond
	return p
}

// WithExpressions returns a copy of p with its Project expression list
// replaced.
func (p PhysicalPlan) WithExpressions(expressions []expr.Expr) PhysicalPlan {
	p.expressions = expressions
	return p
}

// WithGroupBy returns a copy of p with its aggregate GROUP BY expression
// list replaced.
func (p PhysicalPlan) WithGroupBy(groupBy []expr.Expr) PhysicalPlan {
	p.groupBy = groupBy
	return p
}

// WithAggregates returns a copy of p with its aggregate function call list
// replaced.
func (p PhysicalPlan) WithAggregates(aggregates []expr.Expr) PhysicalPlan {
	p.aggregates = aggregates
	return p
}

// WithSortExprs returns a copy of p with its Sort/TopN order-key list
// replaced, each key's expression rewritten in place.
func (p PhysicalPlan) WithSortExprs(sortExprs []expr.OrderKey) PhysicalPlan {
	p.sortExprs = sortExprs
	return p
}

// WithWindowExprs returns a copy of p with its window function call list
// replaced.
func (p PhysicalPlan) WithWindowExprs(windowExprs []expr.Expr) PhysicalPlan {
	p.windowExprs = windowExprs
	return p
}

// TransformChildren rebuilds p with every present child replaced by
// fn(child). It does not recurse on its own: fn receives each direct child
// as it is, so a whole-tree bottom-up rewrite passes an fn that itself calls
// TransformChildren first. fn is NOT applied to p itself; callers that need that
// call fn(p) after TransformChildren returns, matching
// apply_predicate_inference's shape of "recurse into children, then handle
// this node specially".
func TransformChildren(p PhysicalPlan, fn func(PhysicalPlan) PhysicalPlan) PhysicalPlan {
	if p.input != nil {
		p = p.WithInput(fn(*p.input))
	}
	if p.left != nil {
		p = p.WithLeft(fn(*p.left))
	}
	if p.right != nil {
		p = p.WithRight(fn(*p.right))
	}
	if p.inputs != nil {
		rewritten := make([]PhysicalPlan, len(p.inputs))
		for i, child := range p.inputs {
			rewritten[i] = fn(child)
		}
		p = p.WithInputs(rewritten)
	}
	if p.insertSource != nil {
		p = p.WithInsertSource(fn(*p.insertSource))
	}
	if p.createQuery != nil {
		q := fn(*p.createQuery)
		p = p.WithCreateQuery(&q)
	}
	if p.thenBody != nil {
		p = p.WithThenBody(fn(*p.thenBody))
	}
	if p.elseBody != nil {
		b := fn(*p.elseBody)
		p = p.WithElseBody(&b)
	}
	if p.explainTarget != nil {
		p = p.WithExplainTarget(fn(*p.explainTarget))
	}
	return p
}
