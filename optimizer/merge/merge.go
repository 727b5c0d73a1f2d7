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

// Package merge collapses adjacent Project nodes into one, substituting the
// inner project's expressions for the column references the outer project
// makes into it. A chain of N projects over a table scan becomes a single
// project once merging has run to a fixed shape.
package merge

import (
	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/plan"
)

// countColumnRefs tallies how many times each resolved column index is
// referenced anywhere within e.
func countColumnRefs(e expr.Expr, counts map[int]int) {
	expr.Walk(e, func(n expr.Expr) bool {
		if n.Kind() == expr.KindColumn {
			c := n.Column()
			if c.HasIdx {
				counts[c.Index]++
			}
		}
		return true
	})
}

// canMergeProjects refuses to merge when the outer project references an
// inner expression more than once and that inner expression is volatile
// (RAND(), GENERATE_UUID(), CURRENT_TIMESTAMP(), ...) — duplicating a
// volatile expression would change how many times it's evaluated.
func canMergeProjects(outerExprs, innerExprs []expr.Expr) bool {
	counts := map[int]int{}
	for _, e := range outerExprs {
		countColumnRefs(e, counts)
	}
	for idx, count := range counts {
		if count > 1 && idx >= 0 && idx < len(innerExprs) && expr.ContainsVolatile(innerExprs[idx]) {
			return false
		}
	}
	return true
}

// substituteColumnRefs replaces every resolved column reference in e with
// the corresponding inner project expression.
func substituteColumnRefs(e expr.Expr, innerExprs []expr.Expr) expr.Expr {
	return expr.Transform(e, func(n expr.Expr) expr.Expr {
		if n.Kind() != expr.KindColumn {
			return n
		}
		c := n.Column()
		if !c.HasIdx || c.Index < 0 || c.Index >= len(innerExprs) {
			return n
		}
		return innerExprs[c.Index]
	})
}

// Apply recurses bottom-up through p, merging every Project whose input is
// itself a Project into a single Project node where it is safe to do so.
func Apply(p plan.PhysicalPlan) plan.PhysicalPlan {
	p = plan.TransformChildren(p, Apply)

	if p.Kind() != plan.PhysicalProject {
		return p
	}

	inner := *p.Input()
	if inner.Kind() != plan.PhysicalProject {
		return p
	}

	outerExprs := p.Expressions()
	innerExprs := inner.Expressions()
	if !canMergeProjects(outerExprs, innerExprs) {
		return p
	}

	merged := make([]expr.Expr, len(outerExprs))
	for i, e := range outerExprs {
		merged[i] = substituteColumnRefs(e, innerExprs)
	}

	return plan.NewPhysicalProject(*inner.Input(), merged, p.Schema())
}
