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

// Children returns e's immediate child expressions, in evaluation order.
// Subquery payloads (LogicalPlan values) are not expressions and are not
// included; callers that need to recurse into them do so via the plan
// package directly.
func (e Expr) Children() []Expr {
	var out []Expr
	appendPtr := func(p *Expr) {
		if p != nil {
			out = append(out, *p)
		}
	}
	switch e.kind {
	case KindBinaryOp:
		appendPtr(e.left)
		appendPtr(e.right)
	case KindUnaryOp, KindIsNull, KindExtract:
		appendPtr(e.left)
	case KindScalarFunction:
		out = append(out, e.args...)
	case KindAggregate, KindUserDefinedAggregate:
		out = append(out, e.args...)
		if e.filter != nil {
			appendPtr(e.filter)
		}
		for _, ok := range e.orderBy {
			out = append(out, ok.Expr)
		}
	case KindWindow:
		out = append(out, e.args...)
		out = append(out, e.windowPartitionBy...)
		for _, ok := range e.windowOrderBy {
			out = append(out, ok.Expr)
		}
	case KindAggregateWindow:
		appendPtr(e.windowFunc)
		out = append(out, e.windowPartitionBy...)
		for _, ok := range e.windowOrderBy {
			out = append(out, ok.Expr)
		}
	case KindCase:
		if e.operand != nil {
			appendPtr(e.operand)
		}
		for _, w := range e.whenClauses {
			out = append(out, w.Condition, w.Result)
		}
		if e.elseResult != nil {
			appendPtr(e.elseResult)
		}
	case KindCast:
		appendPtr(e.left)
	case KindInList:
		appendPtr(e.left)
		out = append(out, e.inList...)
	case KindInUnnest, KindIsDistinctFrom:
		appendPtr(e.left)
		appendPtr(e.right)
	case KindBetween:
		appendPtr(e.left)
		appendPtr(e.low)
		appendPtr(e.high)
	case KindLike:
		appendPtr(e.left)
		appendPtr(e.pattern)
	case KindArray:
		out = append(out, e.elements...)
	case KindArrayAccess:
		appendPtr(e.container)
		appendPtr(e.index)
	case KindStruct:
		for _, f := range e.fields {
			out = append(out, f.Value)
		}
	case KindStructAccess, KindJSONAccess:
		appendPtr(e.container)
	case KindLambda:
		appendPtr(e.body)
	case KindSubstring:
		appendPtr(e.str)
		appendPtr(e.from)
		if e.forLen != nil {
			appendPtr(e.forLen)
		}
	case KindTrim:
		if e.trimWhat != nil {
			appendPtr(e.trimWhat)
		}
		appendPtr(e.str)
	case KindOverlay:
		appendPtr(e.str)
		appendPtr(e.insert)
		appendPtr(e.from)
		if e.forLen != nil {
			appendPtr(e.forLen)
		}
	case KindPosition:
		appendPtr(e.sub)
		appendPtr(e.str)
	case KindAtTimeZone:
		appendPtr(e.left)
		appendPtr(e.zone)
	case KindInterval:
		appendPtr(e.intervalValue)
	case KindAlias:
		appendPtr(e.inner)
	}
	return out
}

// Walk calls fn on e and every descendant, depth-first pre-order. Walk
// stops descending into a subtree when fn returns false for that node's
// root but still visits the remaining siblings of the caller.
func Walk(e Expr, fn func(Expr) bool) {
	if !fn(e) {
		return
	}
	for _, child := range e.Children() {
		Walk(child, fn)
	}
}

// Transform rebuilds e bottom-up, replacing each node with fn(rebuiltNode).
// Used by constant folding, predicate inference's substitution, and project
// merging's column-index rewrite.
func Transform(e Expr, fn func(Expr) Expr) Expr {
	rebuilt := rebuildWithTransformedChildren(e, fn)
	return fn(rebuilt)
}

func rebuildWithTransformedChildren(e Expr, fn func(Expr) Expr) Expr {
	t := func(p *Expr) *Expr {
		if p == nil {
			return nil
		}
		v := Transform(*p, fn)
		return &v
	}
	switch e.kind {
	case KindBinaryOp:
		e.left, e.right = t(e.left), t(e.right)
	case KindUnaryOp, KindIsNull, KindExtract:
		e.left = t(e.left)
	case KindScalarFunction:
		e.args = transformSlice(e.args, fn)
	case KindAggregate, KindUserDefinedAggregate:
		e.args = transformSlice(e.args, fn)
		e.filter = t(e.filter)
		e.orderBy = transformOrderBy(e.orderBy, fn)
	case KindWindow:
		e.args = transformSlice(e.args, fn)
		e.windowPartitionBy = transformSlice(e.windowPartitionBy, fn)
		e.windowOrderBy = transformOrderBy(e.windowOrderBy, fn)
	case KindAggregateWindow:
		e.windowFunc = t(e.windowFunc)
		e.windowPartitionBy = transformSlice(e.windowPartitionBy, fn)
		e.windowOrderBy = transformOrderBy(e.windowOrderBy, fn)
	case KindCase:
		e.operand = t(e.operand)
		newWhens := make([]WhenClause, len(e.whenClauses))
		for i, w := range e.whenClauses {
			newWhens[i] = WhenClause{Condition: Transform(w.Condition, fn), Result: Transform(w.Result, fn)}
		}
		e.whenClauses = newWhens
		e.elseResult = t(e.elseResult)
	case KindCast:
		e.left = t(e.left)
	case KindInList:
		e.left = t(e.left)
		e.inList = transformSlice(e.inList, fn)
	case KindInUnnest, KindIsDistinctFrom:
		e.left, e.right = t(e.left), t(e.right)
	case KindBetween:
		e.left, e.low, e.high = t(e.left), t(e.low), t(e.high)
	case KindLike:
		e.left, e.pattern = t(e.left), t(e.pattern)
	case KindArray:
		e.elements = transformSlice(e.elements, fn)
	case KindArrayAccess:
		e.container, e.index = t(e.container), t(e.index)
	case KindStruct:
		newFields := make([]StructFieldExpr, len(e.fields))
		for i, f := range e.fields {
			newFields[i] = StructFieldExpr{Name: f.Name, Value: Transform(f.Value, fn)}
		}
		e.fields = newFields
	case KindStructAccess, KindJSONAccess:
		e.container = t(e.container)
	case KindLambda:
		e.body = t(e.body)
	case KindSubstring:
		e.str, e.from = t(e.str), t(e.from)
		e.forLen = t(e.forLen)
	case KindTrim:
		e.trimWhat = t(e.trimWhat)
		e.str = t(e.str)
	case KindOverlay:
		e.str, e.insert, e.from = t(e.str), t(e.insert), t(e.from)
		e.forLen = t(e.forLen)
	case KindPosition:
		e.sub, e.str = t(e.sub), t(e.str)
	case KindAtTimeZone:
		e.left, e.zone = t(e.left), t(e.zone)
	case KindInterval:
		e.intervalValue = t(e.intervalValue)
	case KindAlias:
		e.inner = t(e.inner)
	}
	return e
}

func transformSlice(exprs []Expr, fn func(Expr) Expr) []Expr {
	if exprs == nil {
		return nil
	}
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = Transform(e, fn)
	}
	return out
}

func transformOrderBy(keys []OrderKey, fn func(Expr) Expr) []OrderKey {
	if keys == nil {
		return nil
	}
	out := make([]OrderKey, len(keys))
	for i, k := range keys {
		out[i] = OrderKey{Expr: Transform(k.Expr, fn), Desc: k.Desc}
	}
	return out
}
