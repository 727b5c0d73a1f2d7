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

package expr

import "github.com/dollarsql/bqcore/value"

// StructurallyEqual reports whether a and b are the same variant with
// equal fields, recursively. Used by predicate inference's equivalence
// classes, which compare members structurally, and by duplicate-conjunct
// suppression.
func StructurallyEqual(a, b Expr) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindLiteral:
		return value.Compare(a.lit, b.lit) == 0 && a.lit.Kind() == b.lit.Kind()
	case KindColumn, KindWildcard:
		return a.col.Table == b.col.Table && a.col.Name == b.col.Name &&
			a.col.HasIdx == b.col.HasIdx && (!a.col.HasIdx || a.col.Index == b.col.Index)
	case KindBinaryOp:
		return a.binOp == b.binOp && ptrEqual(a.left, b.left) && ptrEqual(a.right, b.right)
	case KindUnaryOp:
		return a.unOp == b.unOp && ptrEqual(a.left, b.left)
	case KindScalarFunction:
		return a.funcName == b.funcName && sliceEqual(a.args, b.args)
	case KindAggregate, KindUserDefinedAggregate:
		return a.funcName == b.funcName && a.distinct == b.distinct &&
			a.ignoreNulls == b.ignoreNulls && sliceEqual(a.args, b.args)
	case KindCase:
		if !ptrEqualOpt(a.operand, b.operand) || !ptrEqualOpt(a.elseResult, b.elseResult) {
			return false
		}
		if len(a.whenClauses) != len(b.whenClauses) {
			return false
		}
		for i := range a.whenClauses {
			if !StructurallyEqual(a.whenClauses[i].Condition, b.whenClauses[i].Condition) ||
				!StructurallyEqual(a.whenClauses[i].Result, b.whenClauses[i].Result) {
				return false
			}
		}
		return true
	case KindCast:
		return a.dataType == b.dataType && a.safe == b.safe && ptrEqual(a.left, b.left)
	case KindIsNull:
		return a.negated == b.negated && ptrEqual(a.left, b.left)
	case KindInList:
		return a.negated == b.negated && ptrEqual(a.left, b.left) && sliceEqual(a.inList, b.inList)
	case KindBetween:
		return a.negated == b.negated && ptrEqual(a.left, b.left) &&
			ptrEqual(a.low, b.low) && ptrEqual(a.high, b.high)
	case KindLike:
		return a.negated == b.negated && ptrEqual(a.left, b.left) && ptrEqual(a.pattern, b.pattern)
	case KindArray:
		return a.elementType == b.elementType && sliceEqual(a.elements, b.elements)
	case KindArrayAccess:
		return ptrEqual(a.container, b.container) && ptrEqual(a.index, b.index)
	case KindStruct:
		if len(a.fields) != len(b.fields) {
			return false
		}
		for i := range a.fields {
			if a.fields[i].Name != b.fields[i].Name || !StructurallyEqual(a.fields[i].Value, b.fields[i].Value) {
				return false
			}
		}
		return true
	case KindStructAccess, KindJSONAccess:
		return a.fieldName == b.fieldName && ptrEqual(a.container, b.container)
	case KindAlias:
		return a.alias == b.alias && ptrEqual(a.inner, b.inner)
	case KindParameter, KindVariable:
		return a.name == b.name
	case KindPlaceholder:
		return a.pos == b.pos
	case KindIsDistinctFrom:
		return a.negated == b.negated && ptrEqual(a.left, b.left) && ptrEqual(a.right, b.right)
	case KindDefault:
		return true
	default:
		// Subquery-bearing and other composite variants are never deemed
		// structurally equal to one another by this pass; equivalence
		// classes only ever compare scalar expression shapes.
		return false
	}
}

func ptrEqual(a, b *Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return StructurallyEqual(*a, *b)
}

func ptrEqualOpt(a, b *Expr) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return StructurallyEqual(*a, *b)
}

func sliceEqual(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !StructurallyEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// IsVolatile reports whether calling e's scalar function may yield a
// different result on every invocation within the same query (CURRENT_*,
// RAND, GENERATE_UUID, and similar).
func IsVolatile(e Expr) bool {
	if e.kind != KindScalarFunction {
		return false
	}
	switch e.funcName {
	case "GENERATE_UUID", "RAND", "RAND_CANONICAL",
		"CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME", "CURRENT_DATETIME":
		return true
	default:
		return false
	}
}

// ContainsVolatile reports whether e or any descendant is a volatile
// scalar function call.
func ContainsVolatile(e Expr) bool {
	found := false
	Walk(e, func(n Expr) bool {
		if found {
			return false
		}
		if IsVolatile(n) {
			found = true
			return false
		}
		return true
	})
	return found
}

// ContainsColumnRef reports whether e or any descendant references a
// column, used by constant folding to avoid evaluating column-dependent
// subtrees.
func ContainsColumnRef(e Expr) bool {
	found := false
	Walk(e, func(n Expr) bool {
		if found {
			return false
		}
		if n.kind == KindColumn {
			found = true
			return false
		}
		return true
	})
	return found
}

// ContainsSubquery reports whether e or any descendant embeds a subquery
// plan, used by constant folding to avoid evaluating subquery-bearing
// subtrees.
func ContainsSubquery(e Expr) bool {
	found := false
	Walk(e, func(n Expr) bool {
		if found {
			return false
		}
		switch n.kind {
		case KindSubquery, KindScalarSubquery, KindArraySubquery, KindExists, KindInSubquery:
			found = true
			return false
		}
		return true
	})
	return found
}
