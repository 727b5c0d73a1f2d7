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

// Package eval evaluates an expression tree against a schema and a record,
// producing a Value or a typed error. It implements three-valued boolean
// logic, searched/simple CASE semantics, and SAFE.-style error suppression
// expressed through the scalar function registry rather than a flag on the
// operator itself.
package eval

import (
	"strings"

	"github.com/dollarsql/bqcore/column"
	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/schema"
	"github.com/dollarsql/bqcore/value"
	goerrors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrUnresolvedColumn signals a column reference that resolves in
	// neither name nor (table, name) form against the current schema. A
	// correlated-subquery driver substitutes these to literals before
	// evaluation ever sees them; if one reaches Evaluate unsubstituted,
	// that is itself the signal that substitution is still owed.
	ErrUnresolvedColumn = goerrors.NewKind("unresolved column reference %q")

	// ErrTypeMismatch is raised when an operator or function is applied
	// to operand kinds it has no defined behavior for.
	ErrTypeMismatch = goerrors.NewKind("type mismatch: %s")

	// ErrDivisionByZero is raised by integer division/modulo by zero
	// outside a SAFE_-prefixed function call.
	ErrDivisionByZero = goerrors.NewKind("division by zero")

	// ErrOverflow is raised by a checked integer arithmetic op that would
	// overflow 64 bits.
	ErrOverflow = goerrors.NewKind("integer overflow")

	// ErrOutOfBounds is raised by OFFSET/ORDINAL array access outside
	// [0, len).
	ErrOutOfBounds = goerrors.NewKind("array index %d out of bounds for length %d")

	// ErrShiftOutOfRange is raised by SHIFT_LEFT/SHIFT_RIGHT with a shift
	// amount outside [0, 64).
	ErrShiftOutOfRange = goerrors.NewKind("shift amount %d out of range [0, 64)")

	// ErrUnknownFunction is raised when no registry entry matches a
	// scalar function call by name.
	ErrUnknownFunction = goerrors.NewKind("unknown function %q")
)

// FuncRegistry is the scalar function registry collaborator:
// `Call(name, []Value) -> Value`, case-insensitive names.
type FuncRegistry interface {
	Call(name string, args []value.Value) (value.Value, error)
}

// Bindings carries the optional evaluation context: named query
// parameters and session variables.
type Bindings struct {
	Parameters map[string]value.Value
	Variables  map[string]value.Value
}

// Evaluator evaluates expressions against one fixed schema. It holds no
// mutable state; every Evaluate call is independent and safe to call from
// multiple goroutines.
type Evaluator struct {
	schema   schema.Schema
	bindings Bindings
	funcs    FuncRegistry
}

// New builds an Evaluator over s with no bindings and the default scalar
// function registry.
func New(s schema.Schema) Evaluator {
	return Evaluator{schema: s, funcs: DefaultFuncRegistry()}
}

// WithBindings returns a copy of ev with its parameter/variable bindings
// replaced.
func (ev Evaluator) WithBindings(b Bindings) Evaluator {
	ev.bindings = b
	return ev
}

// WithFuncRegistry returns a copy of ev with its scalar function registry
// replaced, letting a caller supply catalog-registered UDFs — individual
// scalar UDF bodies are out of this package's scope; only the dispatch
// contract lives here.
func (ev Evaluator) WithFuncRegistry(r FuncRegistry) Evaluator {
	ev.funcs = r
	return ev
}

// Evaluate produces row's Value for e.
func (ev Evaluator) Evaluate(e expr.Expr, row column.Record) (value.Value, error) {
	switch e.Kind() {
	case expr.KindLiteral:
		return e.Literal(), nil

	case expr.KindColumn:
		return ev.evalColumn(e, row)

	case expr.KindAlias:
		return ev.Evaluate(*e.Inner(), row)

	case expr.KindBinaryOp:
		return ev.evalBinaryOp(e, row)

	case expr.KindUnaryOp:
		return ev.evalUnaryOp(e, row)

	case expr.KindIsNull:
		v, err := ev.Evaluate(*e.Left(), row)
		if err != nil {
			return value.Value{}, err
		}
		result := v.IsNull()
		if e.Negated() {
			result = !result
		}
		return value.NewBool(result), nil

	case expr.KindInList:
		return ev.evalInList(e, row)

	case expr.KindBetween:
		return ev.evalBetween(e, row)

	case expr.KindLike:
		return ev.evalLike(e, row)

	case expr.KindCase:
		return ev.evalCase(e, row)

	case expr.KindCast:
		return ev.evalCast(e, row)

	case expr.KindTypedString:
		return value.Cast(value.NewString(e.TypedStringValue()), e.DataType())

	case expr.KindScalarFunction:
		return ev.evalScalarFunction(e, row)

	case expr.KindArrayAccess:
		return ev.evalArrayAccess(e, row)

	case expr.KindArray:
		return ev.evalArray(e, row)

	case expr.KindStruct:
		return ev.evalStruct(e, row)

	case expr.KindStructAccess:
		return ev.evalStructAccess(e, row)

	case expr.KindIsDistinctFrom:
		return ev.evalIsDistinctFrom(e, row)

	case expr.KindParameter:
		if v, ok := ev.bindings.Parameters[e.Name()]; ok {
			return v, nil
		}
		return value.Value{}, ErrUnresolvedColumn.New("@" + e.Name())

	case expr.KindVariable:
		if v, ok := ev.bindings.Variables[e.Name()]; ok {
			return v, nil
		}
		return value.Value{}, ErrUnresolvedColumn.New("@@" + e.Name())

	case expr.KindDefault:
		return value.Null(), nil

	default:
		return value.Value{}, ErrTypeMismatch.New("expression kind not evaluable in this context")
	}
}

func (ev Evaluator) evalColumn(e expr.Expr, row column.Record) (value.Value, error) {
	c := e.Column()
	if c.HasIdx {
		if c.Index >= 0 && c.Index < row.Len() {
			return row.Get(c.Index), nil
		}
		return value.Value{}, ErrUnresolvedColumn.New(c.Name)
	}
	idx := ev.schema.FieldIndexQualified(c.Name, c.Table)
	if idx < 0 {
		idx = ev.schema.FieldIndex(c.Name)
	}
	if idx < 0 {
		return value.Value{}, ErrUnresolvedColumn.New(c.Name)
	}
	return row.Get(idx), nil
}

// evalBinaryOp dispatches by operator. AND/OR implement their three-valued
// truth table directly rather than falling through to generic NULL
// propagation, since NULL does not always win (FALSE AND NULL = FALSE,
// TRUE OR NULL = TRUE).
func (ev Evaluator) evalBinaryOp(e expr.Expr, row column.Record) (value.Value, error) {
	op := e.BinaryOperator()

	if op == expr.OpAnd || op == expr.OpOr {
		l, err := ev.Evaluate(*e.Left(), row)
		if err != nil {
			return value.Value{}, err
		}
		r, err := ev.Evaluate(*e.Right(), row)
		if err != nil {
			return value.Value{}, err
		}
		return evalTrivalentLogic(op, l, r)
	}

	l, err := ev.Evaluate(*e.Left(), row)
	if err != nil {
		return value.Value{}, err
	}
	r, err := ev.Evaluate(*e.Right(), row)
	if err != nil {
		return value.Value{}, err
	}

	switch op {
	case expr.OpEq:
		return sqlEqualValue(l, r, false)
	case expr.OpNotEq:
		return sqlEqualValue(l, r, true)
	case expr.OpLt, expr.OpLtEq, expr.OpGt, expr.OpGtEq:
		return compareValue(op, l, r)
	case expr.OpAdd, expr.OpSub, expr.OpMul, expr.OpDiv, expr.OpIntDiv, expr.OpMod:
		return evalArithmetic(op, l, r)
	case expr.OpConcat:
		return evalConcat(l, r)
	case expr.OpBitAnd, expr.OpBitOr, expr.OpBitXor, expr.OpShiftLeft, expr.OpShiftRight:
		return evalBitwise(op, l, r)
	default:
		return value.Value{}, ErrTypeMismatch.New("unknown binary operator")
	}
}

func evalTrivalentLogic(op expr.BinaryOperator, l, r value.Value) (value.Value, error) {
	lNull := l.IsNull()
	rNull := r.IsNull()

	if op == expr.OpAnd {
		if (!lNull && !l.Bool()) || (!rNull && !r.Bool()) {
			return value.NewBool(false), nil
		}
		if lNull || rNull {
			return value.Null(), nil
		}
		return value.NewBool(true), nil
	}

	// OpOr
	if (!lNull && l.Bool()) || (!rNull && r.Bool()) {
		return value.NewBool(true), nil
	}
	if lNull || rNull {
		return value.Null(), nil
	}
	return value.NewBool(false), nil
}

func sqlEqualValue(l, r value.Value, negate bool) (value.Value, error) {
	result, isNull := value.SQLEqual(l, r)
	if isNull {
		return value.Null(), nil
	}
	if negate {
		result = !result
	}
	return value.NewBool(result), nil
}

func compareValue(op expr.BinaryOperator, l, r value.Value) (value.Value, error) {
	if l.IsNull() || r.IsNull() {
		return value.Null(), nil
	}
	c := value.Compare(l, r)
	switch op {
	case expr.OpLt:
		return value.NewBool(c < 0), nil
	case expr.OpLtEq:
		return value.NewBool(c <= 0), nil
	case expr.OpGt:
		return value.NewBool(c > 0), nil
	case expr.OpGtEq:
		return value.NewBool(c >= 0), nil
	}
	return value.Value{}, ErrTypeMismatch.New("unknown comparison operator")
}

func evalConcat(l, r value.Value) (value.Value, error) {
	if l.IsNull() || r.IsNull() {
		return value.Null(), nil
	}
	ls, err := value.Cast(l, value.KindString)
	if err != nil {
		return value.Value{}, err
	}
	rs, err := value.Cast(r, value.KindString)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewString(ls.String() + rs.String()), nil
}

func (ev Evaluator) evalUnaryOp(e expr.Expr, row column.Record) (value.Value, error) {
	v, err := ev.Evaluate(*e.Left(), row)
	if err != nil {
		return value.Value{}, err
	}
	switch e.UnaryOperator() {
	case expr.OpNot:
		if v.IsNull() {
			return value.Null(), nil
		}
		return value.NewBool(!v.Bool()), nil
	case expr.OpNeg:
		return evalNegate(v)
	case expr.OpPos:
		return v, nil
	case expr.OpBitNot:
		if v.IsNull() {
			return value.Null(), nil
		}
		return value.NewInt64(^v.Int64()), nil
	default:
		return value.Value{}, ErrTypeMismatch.New("unknown unary operator")
	}
}

func evalNegate(v value.Value) (value.Value, error) {
	if v.IsNull() {
		return value.Null(), nil
	}
	switch v.Kind() {
	case value.KindInt64:
		if v.Int64() == minInt64 {
			return value.Value{}, ErrOverflow.New()
		}
		return value.NewInt64(-v.Int64()), nil
	case value.KindFloat64:
		return value.NewFloat64(-v.Float64()), nil
	case value.KindNumeric:
		return value.NewNumeric(v.Decimal().Neg()), nil
	case value.KindBigNumeric:
		return value.NewBigNumeric(v.Decimal().Neg()), nil
	default:
		return value.Value{}, ErrTypeMismatch.New("cannot negate " + v.Kind().String())
	}
}

func (ev Evaluator) evalInList(e expr.Expr, row column.Record) (value.Value, error) {
	v, err := ev.Evaluate(*e.Left(), row)
	if err != nil {
		return value.Value{}, err
	}
	anyNull := v.IsNull()
	matched := false
	for _, item := range e.InList() {
		iv, err := ev.Evaluate(item, row)
		if err != nil {
			return value.Value{}, err
		}
		eq, isNull := value.SQLEqual(v, iv)
		if isNull {
			anyNull = true
			continue
		}
		if eq {
			matched = true
		}
	}
	var result value.Value
	switch {
	case matched:
		result = value.NewBool(true)
	case anyNull:
		result = value.Null()
	default:
		result = value.NewBool(false)
	}
	if e.Negated() {
		if result.IsNull() {
			return result, nil
		}
		return value.NewBool(!result.Bool()), nil
	}
	return result, nil
}

func (ev Evaluator) evalBetween(e expr.Expr, row column.Record) (value.Value, error) {
	v, err := ev.Evaluate(*e.Left(), row)
	if err != nil {
		return value.Value{}, err
	}
	lo, err := ev.Evaluate(*e.Low(), row)
	if err != nil {
		return value.Value{}, err
	}
	hi, err := ev.Evaluate(*e.High(), row)
	if err != nil {
		return value.Value{}, err
	}
	if v.IsNull() || lo.IsNull() || hi.IsNull() {
		return value.Null(), nil
	}
	result := value.Compare(v, lo) >= 0 && value.Compare(v, hi) <= 0
	if e.Negated() {
		result = !result
	}
	return value.NewBool(result), nil
}

func (ev Evaluator) evalLike(e expr.Expr, row column.Record) (value.Value, error) {
	v, err := ev.Evaluate(*e.Left(), row)
	if err != nil {
		return value.Value{}, err
	}
	p, err := ev.Evaluate(*e.Pattern(), row)
	if err != nil {
		return value.Value{}, err
	}
	if v.IsNull() || p.IsNull() {
		return value.Null(), nil
	}
	if v.Kind() != value.KindString || p.Kind() != value.KindString {
		return value.Value{}, ErrTypeMismatch.New("LIKE requires string operands")
	}
	result := likeMatch(v.String(), p.String())
	if e.Negated() {
		result = !result
	}
	return value.NewBool(result), nil
}

// likeMatch implements SQL LIKE: `%` matches any run of characters
// (including none), `_` matches exactly one character.
func likeMatch(s, pattern string) bool {
	return likeMatchRunes([]rune(s), []rune(pattern))
}

func likeMatchRunes(s, p []rune) bool {
	if len(p) == 0 {
		return len(s) == 0
	}
	if p[0] == '%' {
		if likeMatchRunes(s, p[1:]) {
			return true
		}
		for len(s) > 0 {
			s = s[1:]
			if likeMatchRunes(s, p[1:]) {
				return true
			}
		}
		return false
	}
	if len(s) == 0 {
		return false
	}
	if p[0] == '_' || p[0] == s[0] {
		return likeMatchRunes(s[1:], p[1:])
	}
	return false
}

// evalCase implements both CASE forms: a searched
// CASE (no operand) takes the first WHEN whose condition is exactly TRUE
// (not just non-NULL truthy, and not NULL); a simple CASE compares the
// operand to each WHEN value with `=` semantics, so a NULL operand matches
// no arm (not even another NULL arm).
func (ev Evaluator) evalCase(e expr.Expr, row column.Record) (value.Value, error) {
	var operand *value.Value
	if e.Operand() != nil {
		v, err := ev.Evaluate(*e.Operand(), row)
		if err != nil {
			return value.Value{}, err
		}
		operand = &v
	}

	for _, wc := range e.WhenClauses() {
		if operand == nil {
			cond, err := ev.Evaluate(wc.Condition, row)
			if err != nil {
				return value.Value{}, err
			}
			if !cond.IsNull() && cond.Kind() == value.KindBool && cond.Bool() {
				return ev.Evaluate(wc.Result, row)
			}
			continue
		}
		whenVal, err := ev.Evaluate(wc.Condition, row)
		if err != nil {
			return value.Value{}, err
		}
		if operand.IsNull() {
			continue
		}
		eq, isNull := value.SQLEqual(*operand, whenVal)
		if !isNull && eq {
			return ev.Evaluate(wc.Result, row)
		}
	}
	if e.ElseResult() != nil {
		return ev.Evaluate(*e.ElseResult(), row)
	}
	return value.Null(), nil
}

func (ev Evaluator) evalCast(e expr.Expr, row column.Record) (value.Value, error) {
	v, err := ev.Evaluate(*e.Left(), row)
	if err != nil {
		return value.Value{}, err
	}
	if e.Safe() {
		return value.SafeCast(v, e.DataType()), nil
	}
	return value.Cast(v, e.DataType())
}

func (ev Evaluator) evalScalarFunction(e expr.Expr, row column.Record) (value.Value, error) {
	args := make([]value.Value, len(e.Args()))
	for i, a := range e.Args() {
		v, err := ev.Evaluate(a, row)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}
	if ev.funcs == nil {
		return value.Value{}, ErrUnknownFunction.New(e.FuncName())
	}
	return ev.funcs.Call(e.FuncName(), args)
}

// evalArrayAccess implements zero-based OFFSET semantics; ORDINAL (1-based)
// and the SAFE_ variants of both are scalar functions, not this operator,
// since the 0-based array[index] subscript form is the only ambiguity-free
// shape to carry on the Expr node itself.
func (ev Evaluator) evalArrayAccess(e expr.Expr, row column.Record) (value.Value, error) {
	arr, err := ev.Evaluate(*e.Container(), row)
	if err != nil {
		return value.Value{}, err
	}
	idx, err := ev.Evaluate(*e.Index(), row)
	if err != nil {
		return value.Value{}, err
	}
	if arr.IsNull() || idx.IsNull() {
		return value.Null(), nil
	}
	elems := arr.Array()
	i := int(idx.Int64())
	if i < 0 || i >= len(elems) {
		return value.Value{}, ErrOutOfBounds.New(i, len(elems))
	}
	return elems[i], nil
}

func (ev Evaluator) evalArray(e expr.Expr, row column.Record) (value.Value, error) {
	elems := make([]value.Value, len(e.Elements()))
	for i, el := range e.Elements() {
		v, err := ev.Evaluate(el, row)
		if err != nil {
			return value.Value{}, err
		}
		elems[i] = v
	}
	return value.NewArray(elems), nil
}

func (ev Evaluator) evalStruct(e expr.Expr, row column.Record) (value.Value, error) {
	fields := make([]value.StructField, len(e.StructFields()))
	for i, f := range e.StructFields() {
		v, err := ev.Evaluate(f.Value, row)
		if err != nil {
			return value.Value{}, err
		}
		fields[i] = value.StructField{Name: f.Name, Value: v}
	}
	return value.NewStruct(fields), nil
}

func (ev Evaluator) evalStructAccess(e expr.Expr, row column.Record) (value.Value, error) {
	s, err := ev.Evaluate(*e.Container(), row)
	if err != nil {
		return value.Value{}, err
	}
	if s.IsNull() {
		return value.Null(), nil
	}
	for _, f := range s.StructFields() {
		if strings.EqualFold(f.Name, e.FieldName()) {
			return f.Value, nil
		}
	}
	return value.Value{}, ErrTypeMismatch.New("no such struct field " + e.FieldName())
}

// evalIsDistinctFrom implements IS [NOT] DISTINCT FROM: unlike `=`, two
// NULLs are not distinct from each other (mirroring value.GroupingEqual's
// identity, not value.SQLEqual's three-valued one).
func (ev Evaluator) evalIsDistinctFrom(e expr.Expr, row column.Record) (value.Value, error) {
	l, err := ev.Evaluate(*e.Left(), row)
	if err != nil {
		return value.Value{}, err
	}
	r, err := ev.Evaluate(*e.Right(), row)
	if err != nil {
		return value.Value{}, err
	}
	same := value.GroupingEqual(l, r)
	distinct := !same
	if e.Negated() {
		distinct = !distinct
	}
	return value.NewBool(distinct), nil
}
