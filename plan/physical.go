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
	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/schema"
	"github.com/google/uuid"
)

// PhysicalKind tags which executable-operator variant a PhysicalPlan node
// is. It extends LogicalKind's relational shapes with join/aggregate
// strategies and executor-only operators (Sample, GapFill, Explain, Values).
type PhysicalKind uint8

const (
	PhysicalTableScan PhysicalKind = iota
	PhysicalValues
	PhysicalFilter
	PhysicalProject
	PhysicalHashAggregate
	PhysicalSort
	PhysicalTopN
	PhysicalLimit
	PhysicalHashJoin
	PhysicalNestedLoopJoin
	PhysicalCrossJoin
	PhysicalSetOperation
	PhysicalUnnest
	PhysicalDistinct
	PhysicalWithCte
	PhysicalWindow
	PhysicalQualify
	PhysicalGapFill
	PhysicalSample
	PhysicalExplain
	// DML / procedural, carried through unchanged in shape from LogicalPlan
	PhysicalInsert
	PhysicalCreateTable
	PhysicalCreateView
	PhysicalMerge
	PhysicalUpdate
	PhysicalDelete
	PhysicalIf
	PhysicalWhile
	PhysicalRepeat
	PhysicalAssert
)

// SampleKind enumerates TABLESAMPLE strategies.
type SampleKind uint8

const (
	SampleSystem SampleKind = iota
	SampleBernoulli
)

// PhysicalPlan is the tagged-sum executable plan tree. Every node exposes
// Schema(); join/aggregate/set-operation/WITH nodes additionally carry
// ExecutionHints and a Parallel flag, and Sort/Window nodes carry
// ExecutionHints only.
type PhysicalPlan struct {
	id     uuid.UUID
	kind   PhysicalKind
	schema schema.Schema
	hints  ExecutionHints
	parallel bool

	input       *PhysicalPlan
	left, right *PhysicalPlan
	inputs      []PhysicalPlan

	tableName       string
	projectedColumns []string
	rowCountHint    *int64

	values [][]expr.Expr

	predicate *expr.Expr

	expressions []expr.Expr

	groupBy      []expr.Expr
	aggregates   []expr.Expr
	groupingSets [][]int

	sortExprs []expr.OrderKey

	limit  *int64
	offset *int64

	joinType  JoinType
	condition *expr.Expr
	leftKeys  []expr.Expr
	rightKeys []expr.Expr

	setOp SetOpKind
	all   bool

	unnestColumns []string

	ctes []CteEntry

	windowExprs []expr.Expr

	gapFillBucket  *expr.Expr
	gapFillOrigin  *expr.Expr

	sampleKind  SampleKind
	sampleValue float64

	explainTarget *PhysicalPlan
	explainAnalyze bool

	insertColumns []string
	insertSource  *PhysicalPlan
	createColumns []schema.Field
	ifNotExists   bool
	orReplace     bool
	createQuery   *PhysicalPlan
	viewName      string
	viewQuerySQL  string
	mergeOn       *expr.Expr
	mergeClauses  []MergeClause
	updateAlias   string
	updateAssignments map[string]expr.Expr
	thenBody    *PhysicalPlan
	elseBody    *PhysicalPlan
	untilCondition *expr.Expr
	assertMessage  *expr.Expr
}

func (p PhysicalPlan) ID() uuid.UUID             { return p.id }
func (p PhysicalPlan) Kind() PhysicalKind        { return p.kind }
func (p PhysicalPlan) Schema() schema.Schema     { return p.schema }
func (p PhysicalPlan) Hints() ExecutionHints     { return p.hints }
func (p PhysicalPlan) Parallel() bool            { return p.parallel }
func (p PhysicalPlan) Input() *PhysicalPlan      { return p.input }
func (p PhysicalPlan) Left() *PhysicalPlan       { return p.left }
func (p PhysicalPlan) Right() *PhysicalPlan      { return p.right }
func (p PhysicalPlan) Inputs() []PhysicalPlan    { return p.inputs }
func (p PhysicalPlan) TableName() string         { return p.tableName }
func (p PhysicalPlan) ProjectedColumns() []string { return p.projectedColumns }
func (p PhysicalPlan) RowCountHint() *int64      { return p.rowCountHint }
func (p PhysicalPlan) Values() [][]expr.Expr     { return p.values }
func (p PhysicalPlan) Predicate() *expr.Expr     { return p.predicate }
func (p PhysicalPlan) Expressions() []expr.Expr  { return p.expressions }
func (p PhysicalPlan) GroupBy() []expr.Expr      { return p.groupBy }
func (p PhysicalPlan) Aggregates() []expr.Expr   { return p.aggregates }
func (p PhysicalPlan) GroupingSets() [][]int     { return p.groupingSets }
func (p PhysicalPlan) SortExprs() []expr.OrderKey { return p.sortExprs }
func (p PhysicalPlan) Limit() *int64             { return p.limit }
func (p PhysicalPlan) Offset() *int64            { return p.offset }
func (p PhysicalPlan) JoinType() JoinType        { return p.joinType }
func (p PhysicalPlan) Condition() *expr.Expr     { return p.condition }
func (p PhysicalPlan) LeftKeys() []expr.Expr     { return p.leftKeys }
func (p PhysicalPlan) RightKeys() []expr.Expr    { return p.rightKeys }
func (p PhysicalPlan) SetOp() SetOpKind          { return p.setOp }
func (p PhysicalPlan) All() bool                 { return p.all }
func (p PhysicalPlan) UnnestColumns() []string   { return p.unnestColumns }
func (p PhysicalPlan) Ctes() []CteEntry          { return p.ctes }
func (p PhysicalPlan) WindowExprs() []expr.Expr  { return p.windowExprs }
func (p PhysicalPlan) GapFillBucket() *expr.Expr { return p.gapFillBucket }
func (p PhysicalPlan) GapFillOrigin() *expr.Expr { return p.gapFillOrigin }
func (p PhysicalPlan) SampleKind() SampleKind    { return p.sampleKind }
func (p PhysicalPlan) SampleValue() float64      { return p.sampleValue }
func (p PhysicalPlan) ExplainTarget() *PhysicalPlan { return p.explainTarget }
func (p PhysicalPlan) ExplainAnalyze() bool      { return p.explainAnalyze }
func (p PhysicalPlan) InsertColumns() []string   { return p.insertColumns }
func (p PhysicalPlan) InsertSource() *PhysicalPlan { return p.insertSource }
func (p PhysicalPlan) CreateColumns() []schema.Field { return p.createColumns }
func (p PhysicalPlan) IfNotExists() bool         { return p.ifNotExists }
func (p PhysicalPlan) OrReplace() bool           { return p.orReplace }
func (p PhysicalPlan) CreateQuery() *PhysicalPlan { return p.createQuery }
func (p PhysicalPlan) ViewName() string          { return p.viewName }
func (p PhysicalPlan) ViewQuerySQL() string      { return p.viewQuerySQL }
func (p PhysicalPlan) MergeOn() *expr.Expr       { return p.mergeOn }
func (p PhysicalPlan) MergeClauses() []MergeClause { return p.mergeClauses }
func (p PhysicalPlan) UpdateAlias() string       { return p.updateAlias }
func (p PhysicalPlan) UpdateAssignments() map[string]expr.Expr { return p.updateAssignments }
func (p PhysicalPlan) ThenBody() *PhysicalPlan   { return p.thenBody }
func (p PhysicalPlan) ElseBody() *PhysicalPlan   { return p.elseBody }
func (p PhysicalPlan) UntilCondition() *expr.Expr { return p.untilCondition }
func (p PhysicalPlan) AssertMessage() *expr.Expr { return p.assertMessage }

func NewTableScan(tableName string, projectedColumns []string, rowCountHint *int64, s schema.Schema) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalTableScan, tableName: tableName, projectedColumns: projectedColumns, rowCountHint: rowCountHint, schema: s}
}

func NewValues(rows [][]expr.Expr, s schema.Schema) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalValues, values: rows, schema: s}
}

func NewPhysicalFilter(input PhysicalPlan, predicate expr.Expr) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalFilter, input: &input, predicate: &predicate, schema: input.schema}
}

// NewPhysicalProject requires len(expressions) == s.Len(), mirroring the
// logical-level invariant.
func NewPhysicalProject(input PhysicalPlan, expressions []expr.Expr, s schema.Schema) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalProject, input: &input, expressions: expressions, schema: s}
}

func NewHashAggregate(input PhysicalPlan, groupBy, aggregates []expr.Expr, groupingSets [][]int, s schema.Schema, hints ExecutionHints, parallel bool) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalHashAggregate, input: &input, groupBy: groupBy, aggregates: aggregates, groupingSets: groupingSets, schema: s, hints: hints, parallel: parallel}
}

func NewPhysicalSort(input PhysicalPlan, sortExprs []expr.OrderKey, hints ExecutionHints) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalSort, input: &input, sortExprs: sortExprs, schema: input.schema, hints: hints}
}

// NewTopN is Sort+Limit fused.
func NewTopN(input PhysicalPlan, sortExprs []expr.OrderKey, limit int64) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalTopN, input: &input, sortExprs: sortExprs, limit: &limit, schema: input.schema}
}

func NewPhysicalLimit(input PhysicalPlan, limit, offset *int64) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalLimit, input: &input, limit: limit, offset: offset, schema: input.schema}
}

// NewHashJoin requires len(leftKeys) == len(rightKeys).
func NewHashJoin(left, right PhysicalPlan, joinType JoinType, leftKeys, rightKeys []expr.Expr, s schema.Schema, parallel bool, hints ExecutionHints) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalHashJoin, left: &left, right: &right, joinType: joinType, leftKeys: leftKeys, rightKeys: rightKeys, schema: s, parallel: parallel, hints: hints}
}

func NewNestedLoopJoin(left, right PhysicalPlan, joinType JoinType, condition *expr.Expr, s schema.Schema, parallel bool, hints ExecutionHints) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalNestedLoopJoin, left: &left, right: &right, joinType: joinType, condition: condition, schema: s, parallel: parallel, hints: hints}
}

func NewCrossJoin(left, right PhysicalPlan, s schema.Schema, parallel bool, hints ExecutionHints) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalCrossJoin, left: &left, right: &right, joinType: JoinCross, schema: s, parallel: parallel, hints: hints}
}

func NewPhysicalSetOperation(op SetOpKind, all bool, inputs []PhysicalPlan, parallel bool, hints ExecutionHints) PhysicalPlan {
	var s schema.Schema
	if len(inputs) > 0 {
		s = inputs[0].schema
	}
	return PhysicalPlan{id: debugID(), kind: PhysicalSetOperation, setOp: op, all: all, inputs: inputs, schema: s, parallel: parallel, hints: hints}
}

func NewPhysicalUnnest(input PhysicalPlan, columns []string, s schema.Schema) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalUnnest, input: &input, unnestColumns: columns, schema: s}
}

func NewPhysicalDistinct(input PhysicalPlan) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalDistinct, input: &input, schema: input.schema}
}

func NewPhysicalWithCte(ctes []CteEntry, body PhysicalPlan, parallelCtes bool, hints ExecutionHints) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalWithCte, ctes: ctes, input: &body, schema: body.schema, parallel: parallelCtes, hints: hints}
}

func NewPhysicalWindow(input PhysicalPlan, windowExprs []expr.Expr, s schema.Schema, hints ExecutionHints) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalWindow, input: &input, windowExprs: windowExprs, schema: s, hints: hints}
}

func NewQualify(input PhysicalPlan, predicate expr.Expr) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalQualify, input: &input, predicate: &predicate, schema: input.schema}
}

func NewGapFill(input PhysicalPlan, bucket, origin expr.Expr) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalGapFill, input: &input, gapFillBucket: &bucket, gapFillOrigin: &origin, schema: input.schema}
}

func NewSample(input PhysicalPlan, kind SampleKind, value float64) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalSample, input: &input, sampleKind: kind, sampleValue: value, schema: input.schema}
}

func NewExplain(target PhysicalPlan, analyze bool) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalExplain, explainTarget: &target, explainAnalyze: analyze}
}

func NewPhysicalInsert(tableName string, columns []string, source PhysicalPlan) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalInsert, tableName: tableName, insertColumns: columns, insertSource: &source}
}

func NewPhysicalCreateTable(tableName string, columns []schema.Field, ifNotExists, orReplace bool, query *PhysicalPlan) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalCreateTable, tableName: tableName, createColumns: columns, ifNotExists: ifNotExists, orReplace: orReplace, createQuery: query}
}

func NewPhysicalCreateView(name string, query PhysicalPlan, querySQL string) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalCreateView, viewName: name, input: &query, viewQuerySQL: querySQL}
}

func NewPhysicalMerge(targetTable string, source PhysicalPlan, on expr.Expr, clauses []MergeClause) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalMerge, tableName: targetTable, right: &source, mergeOn: &on, mergeClauses: clauses}
}

func NewPhysicalUpdate(tableName, alias string, assignments map[string]expr.Expr, filter *expr.Expr) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalUpdate, tableName: tableName, updateAlias: alias, updateAssignments: assignments, predicate: filter}
}

func NewPhysicalDelete(tableName string, filter *expr.Expr) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalDelete, tableName: tableName, predicate: filter}
}

func NewPhysicalIf(condition expr.Expr, thenBody PhysicalPlan, elseBody *PhysicalPlan) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalIf, predicate: &condition, thenBody: &thenBody, elseBody: elseBody}
}

func NewPhysicalWhile(condition expr.Expr, body PhysicalPlan) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalWhile, predicate: &condition, thenBody: &body}
}

func NewPhysicalRepeat(body PhysicalPlan, untilCondition expr.Expr) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalRepeat, thenBody: &body, untilCondition: &untilCondition}
}

func NewPhysicalAssert(condition expr.Expr, message *expr.Expr) PhysicalPlan {
	return PhysicalPlan{id: debugID(), kind: PhysicalAssert, predicate: &condition, assertMessage: message}
}

// Children mirrors LogicalPlan.Children for the physical tree.
func (p PhysicalPlan) Children() []PhysicalPlan {
	var out []PhysicalPlan
	if p.input != nil {
		out = append(out, *p.input)
	}
	if p.left != nil {
		out = append(out, *p.left)
	}
	if p.right != nil {
		out = append(out, *p.right)
	}
	out = append(out, p.inputs...)
	if p.insertSource != nil {
		out = append(out, *p.insertSource)
	}
	if p.createQuery != nil {
		out = append(out, *p.createQuery)
	}
	if p.thenBody != nil {
		out = append(out, *p.thenBody)
	}
	if p.elseBody != nil {
		out = append(out, *p.elseBody)
	}
	if p.explainTarget != nil {
		out = append(out, *p.explainTarget)
	}
	return out
}

// WithInput returns a copy of p with its single-child input replaced,
// preserving every other field. Used by passes that rewrite a node's
// input without touching the node itself (predicate inference,
// short-circuit ordering).
func (p PhysicalPlan) WithInput(input PhysicalPlan) PhysicalPlan {
	p.input = &input
	return p
}

// WithPredicate returns a copy of p with its predicate replaced.
func (p PhysicalPlan) WithPredicate(predicate expr.Expr) PhysicalPlan {
	p.predicate = &predicate
	return p
}

// WithCondition returns a copy of p with its join/loop condition replaced.
func (p PhysicalPlan) WithCondition(condition expr.Expr) PhysicalPlan {
	p.condition = &condition
	return p
}
