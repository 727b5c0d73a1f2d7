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

// WithInput, WithLeft, WithRight, WithInputs, WithPredicate, WithExpressions,
// WithGroupBy, WithAggregates, WithCondition and WithSortExprs are the
// copy-and-rewrite helpers LogicalPlan needs for whole-tree rewrites (the
// correlated-subquery driver's outer-reference substitution), mirroring the
// PhysicalPlan family in transform.go.
func (p LogicalPlan) WithInput(input LogicalPlan) LogicalPlan {
	p.input = &input
	return p
}

func (p LogicalPlan) WithLeft(left LogicalPlan) LogicalPlan {
	p.left = &left
	return p
}

func (p LogicalPlan) WithRight(right LogicalPlan) LogicalPlan {
	p.right = &right
	return p
}

func (p LogicalPlan) WithInputs(inputs []LogicalPlan) LogicalPlan {
	p.inputs = inputs
	return p
}

func (p LogicalPlan) WithPredicate(predicate expr.Expr) LogicalPlan {
	p.predicate = &predicate
	return p
}

func (p LogicalPlan) WithExpressions(expressions []expr.Expr) LogicalPlan {
	p.expressions = expressions
	return p
}

func (p LogicalPlan) WithGroupBy(groupBy []expr.Expr) LogicalPlan {
	p.groupBy = groupBy
	return p
}

func (p LogicalPlan) WithAggregates(aggregates []expr.Expr) LogicalPlan {
	p.aggregates = aggregates
	return p
}

func (p LogicalPlan) WithCondition(condition expr.Expr) LogicalPlan {
	p.condition = &condition
	return p
}

func (p LogicalPlan) WithSortExprs(sortExprs []expr.OrderKey) LogicalPlan {
	p.sortExprs = sortExprs
	return p
}

// TransformLogicalChildren rebuilds p with every present child replaced by
// fn(child). It does not recurse on its own: fn receives each direct child
// as it is, so a whole-tree rewrite passes an fn that itself calls
// TransformLogicalChildren. fn is NOT applied to p itself.
func TransformLogicalChildren(p LogicalPlan, fn func(LogicalPlan) LogicalPlan) LogicalPlan {
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
		rewritten := make([]LogicalPlan, len(p.inputs))
		for i, child := range p.inputs {
			rewritten[i] = fn(child)
		}
		p = p.WithInputs(rewritten)
	}
	if p.insertSource != nil {
		src := fn(*p.insertSource)
		p.insertSource = &src
	}
	if p.createQuery != nil {
		q := fn(*p.createQuery)
		p.createQuery = &q
	}
	if p.thenBody != nil {
		b := fn(*p.thenBody)
		p.thenBody = &b
	}
	if p.elseBody != nil {
		b := fn(*p.elseBody)
		p.elseBody = &b
	}
	return p
}

// TransformLogicalExprs rewrites p's predicate, expressions, groupBy,
// aggregates, condition and sortExprs fields via fn, without touching
// children. The MERGE ON condition and clauses, UPDATE assignments, REPEAT
// UNTIL condition and ASSERT message are not rewritten. Callers recurse into
// children themselves via TransformLogicalChildren first.
func TransformLogicalExprs(p LogicalPlan, fn func(expr.Expr) expr.Expr) LogicalPlan {
	if p.predicate != nil {
		p = p.WithPredicate(fn(*p.predicate))
	}
	if p.expressions != nil {
		rewritten := make([]expr.Expr, len(p.expressions))
		for i, e := range p.expressions {
			rewritten[i] = fn(e)
		}
		p = p.WithExpressions(rewritten)
	}
	if p.groupBy != nil {
		rewritten := make([]expr.Expr, len(p.groupBy))
		for i, e := range p.groupBy {
			rewritten[i] = fn(e)
		}
		p = p.WithGroupBy(rewritten)
	}
	if p.aggregates != nil {
		rewritten := make([]expr.Expr, len(p.aggregates))
		for i, e := range p.aggregates {
			rewritten[i] = fn(e)
		}
		p = p.WithAggregates(rewritten)
	}
	if p.condition != nil {
		p = p.WithCondition(fn(*p.condition))
	}
	if p.sortExprs != nil {
		rewritten := make([]expr.OrderKey, len(p.sortExprs))
		for i, k := range p.sortExprs {
			rewritten[i] = expr.OrderKey{Expr: fn(k.Expr), Desc: k.Desc}
		}
		p = p.WithSortExprs(rewritten)
	}
	return p
}
