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

package predicate

import (
	"strings"

	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/value"
)

// Model holds the coarse selectivity constants EstimateSelectivity looks
// up. It is intentionally independent of table statistics — a design
// decision, not a limitation to fix later; the cost package embeds Model as
// part of its larger join-ordering CostModel, and optimizer.Options can
// override any field from a TOML config file.
type Model struct {
	ColumnEqualsLiteral  float64
	IsNull               float64
	IsNotNull            float64
	Comparison           float64
	Between              float64
	InPerItem            float64
	InMax                float64
	Like                 float64
	LikeLeadingWildcard  float64
	Unknown              float64
}

// DefaultModel returns the built-in heuristic selectivity table.
func DefaultModel() Model {
	return Model{
		ColumnEqualsLiteral: 0.10,
		IsNull:              0.05,
		IsNotNull:           0.90,
		Comparison:          0.33,
		Between:             0.25,
		InPerItem:           0.10,
		InMax:               0.5,
		Like:                0.25,
		LikeLeadingWildcard: 0.50,
		Unknown:             0.50,
	}
}

// EstimateSelectivity returns a heuristic estimate in [0, 1] for pred,
// looked up from model's table.
func EstimateSelectivity(pred expr.Expr, model Model) float64 {
	switch pred.Kind() {
	case expr.KindIsNull:
		if pred.Negated() {
			return model.IsNotNull
		}
		return model.IsNull
	case expr.KindBetween:
		return model.Between
	case expr.KindInList:
		k := len(pred.InList())
		sel := float64(k) * model.InPerItem
		if sel > model.InMax {
			sel = model.InMax
		}
		return sel
	case expr.KindLike:
		if hasLeadingWildcard(pred) {
			return model.LikeLeadingWildcard
		}
		return model.Like
	case expr.KindUnaryOp:
		if pred.UnaryOperator() == expr.OpNot {
			return 1 - EstimateSelectivity(*pred.Left(), model)
		}
		return model.Unknown
	case expr.KindBinaryOp:
		switch pred.BinaryOperator() {
		case expr.OpEq:
			if isColumnLiteralPair(pred) {
				return model.ColumnEqualsLiteral
			}
			return model.Unknown
		case expr.OpLt, expr.OpLtEq, expr.OpGt, expr.OpGtEq:
			return model.Comparison
		case expr.OpAnd:
			return estimateConjunction(SplitAnd(pred), model)
		case expr.OpOr:
			return estimateDisjunction(SplitOr(pred), model)
		}
	}
	return model.Unknown
}

func estimateConjunction(conjuncts []expr.Expr, model Model) float64 {
	product := 1.0
	for _, c := range conjuncts {
		product *= EstimateSelectivity(c, model)
	}
	return product
}

func estimateDisjunction(disjuncts []expr.Expr, model Model) float64 {
	product := 1.0
	for _, d := range disjuncts {
		product *= 1 - EstimateSelectivity(d, model)
	}
	return 1 - product
}

func isColumnLiteralPair(pred expr.Expr) bool {
	l, r := pred.Left(), pred.Right()
	return (l.Kind() == expr.KindColumn && r.Kind() == expr.KindLiteral) ||
		(r.Kind() == expr.KindColumn && l.Kind() == expr.KindLiteral)
}

func hasLeadingWildcard(pred expr.Expr) bool {
	patternExpr := pred.Pattern()
	if patternExpr == nil || patternExpr.Kind() != expr.KindLiteral {
		return false
	}
	lit := patternExpr.Literal()
	if lit.Kind() != value.KindString {
		return false
	}
	s := lit.String()
	return strings.HasPrefix(s, "%") || strings.HasPrefix(s, "_")
}
