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

// Package predicate provides the conjunct-splitting and selectivity
// toolkit shared by predicate inference, subquery unnesting, and
// short-circuit ordering.
package predicate

import "github.com/dollarsql/bqcore/expr"

// SplitAnd decomposes pred into its top-level AND conjuncts via a
// left-leaning traversal. A predicate with no top-level AND returns a
// single-element slice containing pred itself.
func SplitAnd(pred expr.Expr) []expr.Expr {
	if pred.Kind() != expr.KindBinaryOp || pred.BinaryOperator() != expr.OpAnd {
		return []expr.Expr{pred}
	}
	left := SplitAnd(*pred.Left())
	right := SplitAnd(*pred.Right())
	return append(left, right...)
}

// SplitOr decomposes pred into its top-level OR disjuncts.
func SplitOr(pred expr.Expr) []expr.Expr {
	if pred.Kind() != expr.KindBinaryOp || pred.BinaryOperator() != expr.OpOr {
		return []expr.Expr{pred}
	}
	left := SplitOr(*pred.Left())
	right := SplitOr(*pred.Right())
	return append(left, right...)
}

// CombineAnd left-folds conjuncts into a single binary-AND tree. Returns
// false for an empty input.
func CombineAnd(conjuncts []expr.Expr) (expr.Expr, bool) {
	return combine(conjuncts, expr.OpAnd)
}

// CombineOr left-folds disjuncts into a single binary-OR tree.
func CombineOr(disjuncts []expr.Expr) (expr.Expr, bool) {
	return combine(disjuncts, expr.OpOr)
}

func combine(exprs []expr.Expr, op expr.BinaryOperator) (expr.Expr, bool) {
	if len(exprs) == 0 {
		return expr.Expr{}, false
	}
	acc := exprs[0]
	for _, e := range exprs[1:] {
		acc = expr.NewBinaryOp(op, acc, e)
	}
	return acc, true
}
