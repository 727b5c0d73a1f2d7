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

// Package inference derives new predicates from equality chains: if a = b
// and b = 5 both hold, it adds a = 5; if a = b and a > 10 both hold, it adds
// b > 10. The derived predicates let a downstream rule push a restriction
// onto whichever side of the equality a table scan can actually index.
package inference

import (
	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/optimizer/predicate"
	"github.com/dollarsql/bqcore/plan"
)

// EquivalenceClass is a set of expressions known to be equal to one another
// and, optionally, to a single constant.
type EquivalenceClass struct {
	Members  []expr.Expr
	Constant *expr.Expr
}

func newEquivalenceClass() *EquivalenceClass {
	return &EquivalenceClass{}
}

func (c *EquivalenceClass) addMember(e expr.Expr) {
	if !c.Contains(e) {
		c.Members = append(c.Members, e)
	}
}

func (c *EquivalenceClass) setConstant(e expr.Expr) {
	if c.Constant == nil {
		c.Constant = &e
	}
}

// Contains reports whether e is structurally equal to an existing member.
func (c *EquivalenceClass) Contains(e expr.Expr) bool {
	for _, m := range c.Members {
		if expr.StructurallyEqual(m, e) {
			return true
		}
	}
	return false
}

func (c *EquivalenceClass) mergeFrom(other *EquivalenceClass) {
	for _, m := range other.Members {
		c.addMember(m)
	}
	if c.Constant == nil {
		c.Constant = other.Constant
	}
}

func isLiteral(e expr.Expr) bool { return e.Kind() == expr.KindLiteral }

// buildEquivalenceClasses groups the column references and constants
// connected by top-level `=` predicates. literal = literal comparisons
// contribute no class (there is no column to substitute through).
func buildEquivalenceClasses(predicates []expr.Expr) []*EquivalenceClass {
	var classes []*EquivalenceClass

	findClass := func(e expr.Expr) int {
		for i, c := range classes {
			if c.Contains(e) {
				return i
			}
		}
		return -1
	}

	for _, pred := range predicates {
		if pred.Kind() != expr.KindBinaryOp || pred.BinaryOperator() != expr.OpEq {
			continue
		}
		left, right := *pred.Left(), *pred.Right()
		leftLit, rightLit := isLiteral(left), isLiteral(right)

		switch {
		case leftLit && rightLit:
			// no column on either side; nothing to derive.
		case leftLit && !rightLit:
			if idx := findClass(right); idx >= 0 {
				classes[idx].setConstant(left)
			} else {
				c := newEquivalenceClass()
				c.addMember(right)
				c.setConstant(left)
				classes = append(classes, c)
			}
		case !leftLit && rightLit:
			if idx := findClass(left); idx >= 0 {
				classes[idx].setConstant(right)
			} else {
				c := newEquivalenceClass()
				c.addMember(left)
				c.setConstant(right)
				classes = append(classes, c)
			}
		default:
			leftIdx, rightIdx := findClass(left), findClass(right)
			switch {
			case leftIdx < 0 && rightIdx < 0:
				c := newEquivalenceClass()
				c.addMember(left)
				c.addMember(right)
				classes = append(classes, c)
			case leftIdx >= 0 && rightIdx < 0:
				classes[leftIdx].addMember(right)
			case leftIdx < 0 && rightIdx >= 0:
				classes[rightIdx].addMember(left)
			default:
				if leftIdx != rightIdx {
					merged := classes[rightIdx]
					classes = append(classes[:rightIdx], classes[rightIdx+1:]...)
					if leftIdx > rightIdx {
						leftIdx--
					}
					classes[leftIdx].mergeFrom(merged)
				}
			}
		}
	}

	return classes
}

// isRangePredicate reports whether pred constrains a single expression to
// an ordered range: a comparison against a literal, BETWEEN, or IN.
func isRangePredicate(pred expr.Expr) bool {
	switch pred.Kind() {
	case expr.KindBinaryOp:
		switch pred.BinaryOperator() {
		case expr.OpGt, expr.OpLt, expr.OpGtEq, expr.OpLtEq:
			return true
		}
	case expr.KindBetween, expr.KindInList:
		return true
	}
	return false
}

// getRangePredicateSubject returns the non-literal side of a range
// predicate, or nil if neither side is literal (so substitution would be
// ambiguous) or the node isn't range-shaped.
func getRangePredicateSubject(pred expr.Expr) *expr.Expr {
	switch pred.Kind() {
	case expr.KindBinaryOp:
		switch pred.BinaryOperator() {
		case expr.OpGt, expr.OpLt, expr.OpGtEq, expr.OpLtEq:
			left, right := *pred.Left(), *pred.Right()
			switch {
			case isLiteral(right):
				return &left
			case isLiteral(left):
				return &right
			}
			return nil
		}
	case expr.KindBetween:
		return pred.Left()
	case expr.KindInList:
		return pred.Left()
	}
	return nil
}

// substituteExprInPredicate replaces every occurrence of oldExpr with
// newExpr within the top-level shape of a range predicate.
func substituteExprInPredicate(pred, oldExpr, newExpr expr.Expr) expr.Expr {
	switch pred.Kind() {
	case expr.KindBinaryOp:
		left, right := *pred.Left(), *pred.Right()
		if expr.StructurallyEqual(left, oldExpr) {
			left = newExpr
		}
		if expr.StructurallyEqual(right, oldExpr) {
			right = newExpr
		}
		return expr.NewBinaryOp(pred.BinaryOperator(), left, right)
	case expr.KindBetween:
		inner := *pred.Left()
		if expr.StructurallyEqual(inner, oldExpr) {
			inner = newExpr
		}
		return expr.NewBetween(inner, *pred.Low(), *pred.High(), pred.Negated())
	case expr.KindInList:
		inner := *pred.Left()
		if expr.StructurallyEqual(inner, oldExpr) {
			inner = newExpr
		}
		return expr.NewInList(inner, pred.InList(), pred.Negated())
	}
	return pred
}

func predicateExists(pred expr.Expr, predicates []expr.Expr) bool {
	for _, p := range predicates {
		if expr.StructurallyEqual(p, pred) {
			return true
		}
	}
	return false
}

// deriveNewPredicates produces the equality predicates implied by a
// constant joining an equivalence class, plus the range predicates implied
// by substituting any class member for the one a range predicate names.
func deriveNewPredicates(classes []*EquivalenceClass, predicates []expr.Expr) []expr.Expr {
	var derived []expr.Expr

	for _, class := range classes {
		if class.Constant == nil {
			continue
		}
		for _, member := range class.Members {
			eqPred := expr.NewBinaryOp(expr.OpEq, member, *class.Constant)
			if !predicateExists(eqPred, predicates) && !predicateExists(eqPred, derived) {
				derived = append(derived, eqPred)
			}
		}
	}

	for _, pred := range predicates {
		if !isRangePredicate(pred) {
			continue
		}
		subject := getRangePredicateSubject(pred)
		if subject == nil {
			continue
		}
		for _, class := range classes {
			if !class.Contains(*subject) {
				continue
			}
			for _, member := range class.Members {
				if expr.StructurallyEqual(member, *subject) {
					continue
				}
				newPred := substituteExprInPredicate(pred, *subject, member)
				if !predicateExists(newPred, predicates) && !predicateExists(newPred, derived) {
					derived = append(derived, newPred)
				}
			}
		}
	}

	return derived
}

// applyInferenceToPredicate splits predicate into its top-level conjuncts,
// derives whatever new conjuncts the equivalence classes imply, and
// recombines. Returns predicate unchanged if nothing new was derivable.
func applyInferenceToPredicate(pred expr.Expr) expr.Expr {
	conjuncts := predicate.SplitAnd(pred)
	classes := buildEquivalenceClasses(conjuncts)
	derived := deriveNewPredicates(classes, conjuncts)

	if len(derived) == 0 {
		return pred
	}

	all := append(append([]expr.Expr{}, conjuncts...), derived...)
	if combined, ok := predicate.CombineAnd(all); ok {
		return combined
	}
	return pred
}

// ApplyPredicateInference recurses through p bottom-up, enriching every
// Filter/Qualify predicate with the equalities and ranges its equivalence
// classes imply.
func ApplyPredicateInference(p plan.PhysicalPlan) plan.PhysicalPlan {
	p = plan.TransformChildren(p, ApplyPredicateInference)

	switch p.Kind() {
	case plan.PhysicalFilter, plan.PhysicalQualify:
		if p.Predicate() != nil {
			p = p.WithPredicate(applyInferenceToPredicate(*p.Predicate()))
		}
	}
	return p
}
