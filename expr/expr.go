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

// Package expr implements the immutable SQL expression tree: literals,
// column references, operators, function calls, CASE, CAST, subquery forms
// and the struct/array/lambda constructors. Expr is a tagged sum in the
// same style as value.Value, rather than one Go type per variant, so that
// optimizer rewrites can pattern-match on Kind uniformly.
package expr

import "github.com/dollarsql/bqcore/value"

// Kind tags which variant an Expr holds.
type Kind uint8

const (
	KindLiteral Kind = iota
	KindColumn
	KindBinaryOp
	KindUnaryOp
	KindScalarFunction
	KindAggregate
	KindWindow
	KindAggregateWindow
	KindCase
	KindCast
	KindIsNull
	KindInList
	KindInSubquery
	KindInUnnest
	KindExists
	KindSubquery
	KindScalarSubquery
	KindArraySubquery
	KindBetween
	KindLike
	KindArray
	KindArrayAccess
	KindStruct
	KindStructAccess
	KindLambda
	KindExtract
	KindSubstring
	KindTrim
	KindOverlay
	KindPosition
	KindAtTimeZone
	KindJSONAccess
	KindInterval
	KindAlias
	KindWildcard
	KindParameter
	KindVariable
	KindPlaceholder
	KindDefault
	KindTypedString
	KindIsDistinctFrom
	KindUserDefinedAggregate
)

// BinaryOperator enumerates the binary operators BinaryOp can carry.
type BinaryOperator uint8

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpDiv
	OpIntDiv
	OpMod
	OpEq
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpAnd
	OpOr
	OpConcat
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShiftLeft
	OpShiftRight
)

// UnaryOperator enumerates the unary operators UnaryOp can carry.
type UnaryOperator uint8

const (
	OpNeg UnaryOperator = iota
	OpPos
	OpNot
	OpBitNot
)

// WhenClause is one WHEN/THEN arm of a Case expression.
type WhenClause struct {
	Condition Expr
	Result    Expr
}

// OrderKey is one key of an ORDER BY list on a window/aggregate expression.
type OrderKey struct {
	Expr descSortable
	Desc bool
}

type descSortable = Expr

// Column identifies a field reference, optionally table-qualified and
// optionally resolved to a schema position.
type Column struct {
	Table   string
	Name    string
	HasIdx  bool
	Index   int
}

// Expr is the tagged-sum expression node. Zero value is an invalid
// expression; always construct via the New* functions.
type Expr struct {
	kind Kind

	// Literal
	lit value.Value

	// Column
	col Column

	// BinaryOp / UnaryOp
	binOp       BinaryOperator
	unOp        UnaryOperator
	left, right *Expr

	// ScalarFunction / Aggregate / UserDefinedAggregate
	funcName string
	args     []Expr
	distinct bool
	filter   *Expr
	orderBy  []OrderKey
	limit    *int
	ignoreNulls bool

	// Window / AggregateWindow
	windowPartitionBy []Expr
	windowOrderBy     []OrderKey
	windowFunc        *Expr

	// Case
	operand     *Expr
	whenClauses []WhenClause
	elseResult  *Expr

	// Cast / TypedString
	dataType value.Kind
	safe     bool
	typedStr string

	// IsNull / InList / Between / Like / Exists / InSubquery / IsDistinctFrom
	negated bool
	inList  []Expr
	low     *Expr
	high    *Expr
	pattern *Expr

	// Subquery-family: embedded by value to keep the tree acyclic. `any`
	// avoids an import cycle between expr and plan; callers type-assert
	// to *plan.LogicalPlan.
	subquery any

	// Array / Struct
	elements    []Expr
	elementType value.Kind
	fields      []StructFieldExpr

	// ArrayAccess / StructAccess / JsonAccess
	container *Expr
	index     *Expr
	fieldName string

	// Lambda
	params []string
	body   *Expr

	// Extract / AtTimeZone
	part string
	zone *Expr

	// Substring / Overlay / Position
	str    *Expr
	from   *Expr
	forLen *Expr
	insert *Expr
	sub    *Expr

	// Trim
	trimWhat *Expr
	leading  bool
	trailing bool

	// Interval (literal interval expression, distinct from value.Interval)
	intervalValue *Expr
	intervalPart  string

	// Alias
	alias string
	inner *Expr

	// Parameter / Variable / Placeholder
	name string
	pos  int
}

// StructFieldExpr is one named field inside a Struct constructor expression.
type StructFieldExpr struct {
	Name  string
	Value Expr
}

func (e Expr) Kind() Kind { return e.kind }

// --- constructors ---

func NewLiteral(v value.Value) Expr { return Expr{kind: KindLiteral, lit: v} }

// NewColumn builds an unresolved or resolved column reference. Pass
// hasIndex=false when index is not yet known.
func NewColumn(table, name string, index int, hasIndex bool) Expr {
	return Expr{kind: KindColumn, col: Column{Table: table, Name: name, Index: index, HasIdx: hasIndex}}
}

// NewGetField is the resolved-column convenience constructor, matching the
// shape of the positional constructors used throughout the expression
// package's tests.
func NewGetField(index int, name string) Expr {
	return Expr{kind: KindColumn, col: Column{Name: name, Index: index, HasIdx: true}}
}

func NewBinaryOp(op BinaryOperator, left, right Expr) Expr {
	return Expr{kind: KindBinaryOp, binOp: op, left: &left, right: &right}
}

func NewUnaryOp(op UnaryOperator, operand Expr) Expr {
	return Expr{kind: KindUnaryOp, unOp: op, left: &operand}
}

func NewScalarFunction(name string, args ...Expr) Expr {
	return Expr{kind: KindScalarFunction, funcName: name, args: args}
}

func NewAggregate(funcName string, args []Expr, distinct bool, filter *Expr, orderBy []OrderKey, limit *int, ignoreNulls bool) Expr {
	return Expr{kind: KindAggregate, funcName: funcName, args: args, distinct: distinct, filter: filter, orderBy: orderBy, limit: limit, ignoreNulls: ignoreNulls}
}

func NewUserDefinedAggregate(funcName string, args []Expr) Expr {
	return Expr{kind: KindUserDefinedAggregate, funcName: funcName, args: args}
}

func NewWindow(funcName string, args []Expr, partitionBy []Expr, orderBy []OrderKey) Expr {
	return Expr{kind: KindWindow, funcName: funcName, args: args, windowPartitionBy: partitionBy, windowOrderBy: orderBy}
}

func NewAggregateWindow(aggregate Expr, partitionBy []Expr, orderBy []OrderKey) Expr {
	return Expr{kind: KindAggregateWindow, windowFunc: &aggregate, windowPartitionBy: partitionBy, windowOrderBy: orderBy}
}

func NewCase(operand *Expr, whens []WhenClause, elseResult *Expr) Expr {
	return Expr{kind: KindCase, operand: operand, whenClauses: whens, elseResult: elseResult}
}

func NewCast(e Expr, to value.Kind, safe bool) Expr {
	return Expr{kind: KindCast, left: &e, dataType: to, safe: safe}
}

func NewTypedString(s string, to value.Kind) Expr {
	return Expr{kind: KindTypedString, typedStr: s, dataType: to}
}

func NewIsNull(e Expr, negated bool) Expr {
	return Expr{kind: KindIsNull, left: &e, negated: negated}
}

func NewInList(e Expr, list []Expr, negated bool) Expr {
	return Expr{kind: KindInList, left: &e, inList: list, negated: negated}
}

func NewInSubquery(e Expr, subquery any, negated bool) Expr {
	return Expr{kind: KindInSubquery, left: &e, subquery: subquery, negated: negated}
}

func NewInUnnest(e Expr, array Expr, negated bool) Expr {
	return Expr{kind: KindInUnnest, left: &e, right: &array, negated: negated}
}

func NewExists(subquery any, negated bool) Expr {
	return Expr{kind: KindExists, subquery: subquery, negated: negated}
}

func NewSubquery(subquery any) Expr       { return Expr{kind: KindSubquery, subquery: subquery} }
func NewScalarSubquery(subquery any) Expr { return Expr{kind: KindScalarSubquery, subquery: subquery} }
func NewArraySubquery(subquery any) Expr  { return Expr{kind: KindArraySubquery, subquery: subquery} }

func NewBetween(e, low, high Expr, negated bool) Expr {
	return Expr{kind: KindBetween, left: &e, low: &low, high: &high, negated: negated}
}

func NewLike(e, pattern Expr, negated bool) Expr {
	return Expr{kind: KindLike, left: &e, pattern: &pattern, negated: negated}
}

func NewArray(elements []Expr, elementType value.Kind) Expr {
	return Expr{kind: KindArray, elements: elements, elementType: elementType}
}

func NewArrayAccess(array, index Expr) Expr {
	return Expr{kind: KindArrayAccess, container: &array, index: &index}
}

func NewStruct(fields []StructFieldExpr) Expr { return Expr{kind: KindStruct, fields: fields} }

func NewStructAccess(s Expr, fieldName string) Expr {
	return Expr{kind: KindStructAccess, container: &s, fieldName: fieldName}
}

func NewLambda(params []string, body Expr) Expr {
	return Expr{kind: KindLambda, params: params, body: &body}
}

func NewExtract(part string, e Expr) Expr {
	return Expr{kind: KindExtract, part: part, left: &e}
}

func NewSubstring(str Expr, from Expr, forLen *Expr) Expr {
	return Expr{kind: KindSubstring, str: &str, from: &from, forLen: forLen}
}

func NewTrim(what *Expr, str Expr, leading, trailing bool) Expr {
	return Expr{kind: KindTrim, trimWhat: what, str: &str, leading: leading, trailing: trailing}
}

func NewOverlay(str, insert, from Expr, forLen *Expr) Expr {
	return Expr{kind: KindOverlay, str: &str, insert: &insert, from: &from, forLen: forLen}
}

func NewPosition(sub, str Expr) Expr {
	return Expr{kind: KindPosition, sub: &sub, str: &str}
}

func NewAtTimeZone(e, zone Expr) Expr {
	return Expr{kind: KindAtTimeZone, left: &e, zone: &zone}
}

func NewJSONAccess(e Expr, fieldName string) Expr {
	return Expr{kind: KindJSONAccess, container: &e, fieldName: fieldName}
}

func NewInterval(e Expr, part string) Expr {
	return Expr{kind: KindInterval, intervalValue: &e, intervalPart: part}
}

func NewAlias(e Expr, alias string) Expr { return Expr{kind: KindAlias, inner: &e, alias: alias} }

func NewWildcard(table string) Expr { return Expr{kind: KindWildcard, col: Column{Table: table}} }

func NewParameter(name string) Expr { return Expr{kind: KindParameter, name: name} }

func NewVariable(name string) Expr { return Expr{kind: KindVariable, name: name} }

func NewPlaceholder(pos int) Expr { return Expr{kind: KindPlaceholder, pos: pos} }

func NewDefault() Expr { return Expr{kind: KindDefault} }

func NewIsDistinctFrom(left, right Expr, negated bool) Expr {
	return Expr{kind: KindIsDistinctFrom, left: &left, right: &right, negated: negated}
}

// --- accessors ---

func (e Expr) Literal() value.Value      { return e.lit }
func (e Expr) Column() Column            { return e.col }
func (e Expr) BinaryOperator() BinaryOperator { return e.binOp }
func (e Expr) UnaryOperator() UnaryOperator   { return e.unOp }
func (e Expr) Left() *Expr                { return e.left }
func (e Expr) Right() *Expr                { return e.right }
func (e Expr) FuncName() string           { return e.funcName }
func (e Expr) Args() []Expr               { return e.args }
func (e Expr) Distinct() bool             { return e.distinct }
func (e Expr) Filter() *Expr              { return e.filter }
func (e Expr) OrderBy() []OrderKey        { return e.orderBy }
func (e Expr) Limit() *int                { return e.limit }
func (e Expr) IgnoreNulls() bool          { return e.ignoreNulls }
func (e Expr) WindowPartitionBy() []Expr  { return e.windowPartitionBy }
func (e Expr) WindowOrderBy() []OrderKey  { return e.windowOrderBy }
func (e Expr) WindowFunc() *Expr          { return e.windowFunc }
func (e Expr) Operand() *Expr             { return e.operand }
func (e Expr) WhenClauses() []WhenClause  { return e.whenClauses }
func (e Expr) ElseResult() *Expr          { return e.elseResult }
func (e Expr) DataType() value.Kind       { return e.dataType }
func (e Expr) Safe() bool                 { return e.safe }
func (e Expr) TypedStringValue() string   { return e.typedStr }
func (e Expr) Negated() bool              { return e.negated }
func (e Expr) InList() []Expr             { return e.inList }
func (e Expr) Low() *Expr                 { return e.low }
func (e Expr) High() *Expr                { return e.high }
func (e Expr) Pattern() *Expr             { return e.pattern }
func (e Expr) Subquery() any              { return e.subquery }
func (e Expr) Elements() []Expr           { return e.elements }
func (e Expr) ElementType() value.Kind    { return e.elementType }
func (e Expr) StructFields() []StructFieldExpr { return e.fields }
func (e Expr) Container() *Expr           { return e.container }
func (e Expr) Index() *Expr               { return e.index }
func (e Expr) FieldName() string          { return e.fieldName }
func (e Expr) Params() []string           { return e.params }
func (e Expr) Body() *Expr                { return e.body }
func (e Expr) Part() string               { return e.part }
func (e Expr) Zone() *Expr                { return e.zone }
func (e Expr) Str() *Expr                 { return e.str }
func (e Expr) From() *Expr                { return e.from }
func (e Expr) ForLen() *Expr              { return e.forLen }
func (e Expr) Insert() *Expr              { return e.insert }
func (e Expr) Sub() *Expr                 { return e.sub }
func (e Expr) TrimWhat() *Expr            { return e.trimWhat }
func (e Expr) Leading() bool              { return e.leading }
func (e Expr) Trailing() bool             { return e.trailing }
func (e Expr) IntervalValue() *Expr       { return e.intervalValue }
func (e Expr) IntervalPart() string       { return e.intervalPart }
func (e Expr) Alias() string              { return e.alias }
func (e Expr) Inner() *Expr               { return e.inner }
func (e Expr) Name() string               { return e.name }
func (e Expr) Pos() int                   { return e.pos }

// WithColumnIndex returns a copy of e with its column index set, used by
// constant folding and project merging after index resolution/rewriting.
func (e Expr) WithColumnIndex(index int) Expr {
	if e.kind != KindColumn {
		return e
	}
	e.col.Index = index
	e.col.HasIdx = true
	return e
}
