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

// LogicalKind tags which relational-algebra variant a LogicalPlan node is.
type LogicalKind uint8

const (
	LogicalScan LogicalKind = iota
	LogicalFilter
	LogicalProject
	LogicalAggregate
	LogicalSort
	LogicalLimit
	LogicalJoin
	LogicalSetOperation
	LogicalUnnest
	LogicalDistinct
	LogicalWithCte
	LogicalEmpty
	// DML
	LogicalInsert
	LogicalCreateTable
	LogicalCreateView
	LogicalMerge
	LogicalUpdate
	LogicalDelete
	// procedural
	LogicalIf
	LogicalWhile
	LogicalRepeat
	LogicalAssert
)

// MergeClause is one WHEN MATCHED / WHEN NOT MATCHED arm of a MERGE.
type MergeClause struct {
	Matched   bool
	ByTarget  bool // WHEN NOT MATCHED BY TARGET vs BY SOURCE
	Condition *expr.Expr
	IsDelete  bool
	Assignments map[string]expr.Expr
	InsertColumns []string
	InsertValues  []expr.Expr
}

// LogicalPlan is the tagged-sum relational-algebra tree. Every node carries
// its own output Schema; subquery nodes elsewhere in the tree embed a
// *LogicalPlan by value (copied), keeping the whole structure a strict
// tree with no cycles.
type LogicalPlan struct {
	id     uuid.UUID
	kind   LogicalKind
	schema schema.Schema

	input       *LogicalPlan
	left, right *LogicalPlan
	inputs      []LogicalPlan // Union-style set operations, WithCte's CTE list consumers

	// Scan
	tableName string

	// Filter / Qualify-like / procedural conditions
	predicate *expr.Expr

	// Project
	expressions []expr.Expr

	// Aggregate
	groupBy    []expr.Expr
	aggregates []expr.Expr
	groupingSets [][]int

	// Sort
	sortExprs []expr.OrderKey

	// Limit
	limit  *int64
	offset *int64

	// Join
	joinType  JoinType
	condition *expr.Expr

	// SetOperation
	setOp SetOpKind
	all   bool

	// Unnest
	unnestColumns []string

	// Distinct: input only

	// WithCte
	ctes []CteEntry

	// Insert
	insertColumns []string
	insertSource  *LogicalPlan

	// CreateTable
	createColumns  []schema.Field
	ifNotExists    bool
	orReplace      bool
	createQuery    *LogicalPlan

	// CreateView
	viewName        string
	viewQuerySQL    string
	viewColumnAlias []string

	// Merge
	mergeOn      *expr.Expr
	mergeClauses []MergeClause

	// Update
	updateAlias       string
	updateAssignments map[string]expr.Expr

	// If / While / Repeat
	thenBody *LogicalPlan
	elseBody *LogicalPlan
	untilCondition *expr.Expr

	// Assert
	assertMessage *expr.Expr
}

func (p LogicalPlan) ID() uuid.UUID           { return p.id }
func (p LogicalPlan) Kind() LogicalKind       { return p.kind }
func (p LogicalPlan) Schema() schema.Schema   { return p.schema }
func (p LogicalPlan) Input() *LogicalPlan     { return p.input }
func (p LogicalPlan) Left() *LogicalPlan      { return p.left }
func (p LogicalPlan) Right() *LogicalPlan     { return p.right }
func (p LogicalPlan) Inputs() []LogicalPlan   { return p.inputs }
func (p LogicalPlan) TableName() string       { return p.tableName }
func (p LogicalPlan) Predicate() *expr.Expr   { return p.predicate }
func (p LogicalPlan) Expressions() []expr.Expr { return p.expressions }
func (p LogicalPlan) GroupBy() []expr.Expr    { return p.groupBy }
func (p LogicalPlan) Aggregates() []expr.Expr { return p.aggregates }
func (p LogicalPlan) GroupingSets() [][]int   { return p.groupingSets }
func (p LogicalPlan) SortExprs() []expr.OrderKey { return p.sortExprs }
func (p LogicalPlan) Limit() *int64           { return p.limit }
func (p LogicalPlan) Offset() *int64          { return p.offset }
func (p LogicalPlan) JoinType() JoinType      { return p.joinType }
func (p LogicalPlan) Condition() *expr.Expr   { return p.condition }
func (p LogicalPlan) SetOp() SetOpKind        { return p.setOp }
func (p LogicalPlan) All() bool               { return p.all }
func (p LogicalPlan) UnnestColumns() []string { return p.unnestColumns }
func (p LogicalPlan) Ctes() []CteEntry        { return p.ctes }
func (p LogicalPlan) InsertColumns() []string { return p.insertColumns }
func (p LogicalPlan) InsertSource() *LogicalPlan { return p.insertSource }
func (p LogicalPlan) CreateColumns() []schema.Field { return p.createColumns }
func (p LogicalPlan) IfNotExists() bool       { return p.ifNotExists }
func (p LogicalPlan) OrReplace() bool         { return p.orReplace }
func (p LogicalPlan) CreateQuery() *LogicalPlan { return p.createQuery }
func (p LogicalPlan) ViewName() string        { return p.viewName }
func (p LogicalPlan) ViewQuerySQL() string    { return p.viewQuerySQL }
func (p LogicalPlan) ViewColumnAlias() []string { return p.viewColumnAlias }
func (p LogicalPlan) MergeOn() *expr.Expr     { return p.mergeOn }
func (p LogicalPlan) MergeClauses() []MergeClause { return p.mergeClauses }
func (p LogicalPlan) UpdateAlias() string     { return p.updateAlias }
func (p LogicalPlan) UpdateAssignments() map[string]expr.Expr { return p.updateAssignments }
func (p LogicalPlan) ThenBody() *LogicalPlan  { return p.thenBody }
func (p LogicalPlan) ElseBody() *LogicalPlan  { return p.elseBody }
func (p LogicalPlan) UntilCondition() *expr.Expr { return p.untilCondition }
func (p LogicalPlan) AssertMessage() *expr.Expr { return p.assertMessage }

func NewScan(tableName string, s schema.Schema) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalScan, tableName: tableName, schema: s}
}

func NewEmpty(s schema.Schema) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalEmpty, schema: s}
}

// NewFilter preserves input's schema unchanged: Filter never projects.
func NewFilter(input LogicalPlan, predicate expr.Expr) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalFilter, input: &input, predicate: &predicate, schema: input.schema}
}

// NewProject requires len(expressions) == s.Len().
func NewProject(input LogicalPlan, expressions []expr.Expr, s schema.Schema) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalProject, input: &input, expressions: expressions, schema: s}
}

func NewAggregate(input LogicalPlan, groupBy, aggregates []expr.Expr, groupingSets [][]int, s schema.Schema) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalAggregate, input: &input, groupBy: groupBy, aggregates: aggregates, groupingSets: groupingSets, schema: s}
}

func NewSort(input LogicalPlan, sortExprs []expr.OrderKey) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalSort, input: &input, sortExprs: sortExprs, schema: input.schema}
}

func NewLimit(input LogicalPlan, limit, offset *int64) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalLimit, input: &input, limit: limit, offset: offset, schema: input.schema}
}

// NewJoin concatenates left and right's schemas as the join's output
// schema: column indices refer to the concatenation of child schemas.
// Semi/anti joins take left's schema alone as their output schema
// (unnesting builds these at the physical level instead).
func NewJoin(left, right LogicalPlan, joinType JoinType, condition *expr.Expr) LogicalPlan {
	s := schema.Concat(left.schema, right.schema)
	if joinType == JoinLeftSemi || joinType == JoinLeftAnti {
		s = left.schema
	}
	return LogicalPlan{id: debugID(), kind: LogicalJoin, left: &left, right: &right, joinType: joinType, condition: condition, schema: s}
}

func NewSetOperation(op SetOpKind, all bool, inputs []LogicalPlan) LogicalPlan {
	var s schema.Schema
	if len(inputs) > 0 {
		s = inputs[0].schema
	}
	return LogicalPlan{id: debugID(), kind: LogicalSetOperation, setOp: op, all: all, inputs: inputs, schema: s}
}

func NewUnnest(input LogicalPlan, columns []string, s schema.Schema) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalUnnest, input: &input, unnestColumns: columns, schema: s}
}

func NewDistinct(input LogicalPlan) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalDistinct, input: &input, schema: input.schema}
}

func NewWithCte(ctes []CteEntry, body LogicalPlan) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalWithCte, ctes: ctes, input: &body, schema: body.schema}
}

func NewInsert(tableName string, columns []string, source LogicalPlan) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalInsert, tableName: tableName, insertColumns: columns, insertSource: &source}
}

func NewCreateTable(tableName string, columns []schema.Field, ifNotExists, orReplace bool, query *LogicalPlan) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalCreateTable, tableName: tableName, createColumns: columns, ifNotExists: ifNotExists, orReplace: orReplace, createQuery: query}
}

func NewCreateView(name string, query LogicalPlan, querySQL string, columnAlias []string, orReplace, ifNotExists bool) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalCreateView, viewName: name, input: &query, viewQuerySQL: querySQL, viewColumnAlias: columnAlias, orReplace: orReplace, ifNotExists: ifNotExists}
}

func NewMerge(targetTable string, source LogicalPlan, on expr.Expr, clauses []MergeClause) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalMerge, tableName: targetTable, right: &source, mergeOn: &on, mergeClauses: clauses}
}

func NewUpdate(tableName, alias string, assignments map[string]expr.Expr, filter *expr.Expr) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalUpdate, tableName: tableName, updateAlias: alias, updateAssignments: assignments, predicate: filter}
}

func NewDelete(tableName string, filter *expr.Expr) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalDelete, tableName: tableName, predicate: filter}
}

func NewIf(condition expr.Expr, thenBody LogicalPlan, elseBody *LogicalPlan) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalIf, predicate: &condition, thenBody: &thenBody, elseBody: elseBody}
}

func NewWhile(condition expr.Expr, body LogicalPlan) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalWhile, predicate: &condition, thenBody: &body}
}

func NewRepeat(body LogicalPlan, untilCondition expr.Expr) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalRepeat, thenBody: &body, untilCondition: &untilCondition}
}

func NewAssert(condition expr.Expr, message *expr.Expr) LogicalPlan {
	return LogicalPlan{id: debugID(), kind: LogicalAssert, predicate: &condition, assertMessage: message}
}

// Children returns p's immediate plan children, in a stable order,
// skipping nils. Used by the logical-plan validation walk in validate.go,
// which must visit every plan node.
func (p LogicalPlan) Children() []LogicalPlan {
	var out []LogicalPlan
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
	return out
}
