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

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ValidateLogicalTree walks l and its whole subtree, checking the
// shape invariants each LogicalPlan constructor in logical.go assumes but does not
// itself re-check (a caller may have built or rewritten a LogicalPlan by
// hand, e.g. via TransformLogicalChildren). Every violation found anywhere
// in the tree is collected rather than returning on the first one, so a
// caller debugging a malformed plan sees every broken node in one pass.
// A nil return means the tree is well-formed.
func ValidateLogicalTree(l LogicalPlan) error {
	var errs *multierror.Error
	validateNode(l, &errs)
	for _, child := range l.Children() {
		if err := ValidateLogicalTree(child); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func validateNode(l LogicalPlan, errs **multierror.Error) {
	switch l.Kind() {
	case LogicalProject:
		if len(l.Expressions()) != l.Schema().Len() {
			*errs = multierror.Append(*errs, fmt.Errorf(
				"project %s: %d expressions but schema has %d fields",
				l.ID(), len(l.Expressions()), l.Schema().Len()))
		}
	case LogicalJoin:
		if l.Left() == nil || l.Right() == nil {
			*errs = multierror.Append(*errs, fmt.Errorf("join %s: missing left or right input", l.ID()))
			break
		}
		wantLen := l.Left().Schema().Len() + l.Right().Schema().Len()
		switch l.JoinType() {
		case JoinLeftSemi, JoinLeftAnti:
			wantLen = l.Left().Schema().Len()
		}
		if l.Schema().Len() != wantLen {
			*errs = multierror.Append(*errs, fmt.Errorf(
				"join %s: schema has %d fields, want %d for join type %v",
				l.ID(), l.Schema().Len(), wantLen, l.JoinType()))
		}
	case LogicalAggregate:
		if len(l.GroupingSets()) > 0 {
			for _, set := range l.GroupingSets() {
				for _, idx := range set {
					if idx < 0 || idx >= len(l.GroupBy()) {
						*errs = multierror.Append(*errs, fmt.Errorf(
							"aggregate %s: grouping set index %d out of range for %d GROUP BY expressions",
							l.ID(), idx, len(l.GroupBy())))
					}
				}
			}
		}
	case LogicalFilter:
		if l.Predicate() == nil {
			*errs = multierror.Append(*errs, fmt.Errorf("filter %s: missing predicate", l.ID()))
		}
	}
}
