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

package eval

import (
	"strings"

	"github.com/dollarsql/bqcore/value"
	"github.com/google/uuid"
)

// mapRegistry is the default FuncRegistry: the small set of functions this
// module's own semantics depend on (the SAFE_OFFSET/SAFE_ORDINAL boundary
// behavior, GENERATE_UUID's volatility check in expr.IsVolatile, and
// NULL-coalescing used throughout the rest of this package's tests).
// Catalog-registered user-defined functions are out of scope — individual
// scalar UDF bodies are a caller concern; a caller wraps or replaces this
// registry via Evaluator.WithFuncRegistry.
type mapRegistry map[string]func([]value.Value) (value.Value, error)

func (m mapRegistry) Call(name string, args []value.Value) (value.Value, error) {
	fn, ok := m[strings.ToUpper(name)]
	if !ok {
		return value.Value{}, ErrUnknownFunction.New(name)
	}
	return fn(args)
}

// DefaultFuncRegistry returns the built-in scalar function set.
func DefaultFuncRegistry() FuncRegistry {
	return mapRegistry{
		"OFFSET":      arrayOffset(false),
		"ORDINAL":     arrayOrdinal(false),
		"SAFE_OFFSET": arrayOffset(true),
		"SAFE_ORDINAL": arrayOrdinal(true),
		"COALESCE":    coalesce,
		"IFNULL":      ifNull,
		"GENERATE_UUID": func(args []value.Value) (value.Value, error) {
			return value.NewString(uuid.NewString()), nil
		},
	}
}

func arrayOffset(safe bool) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		return arrayAt(args, 0, safe)
	}
}

func arrayOrdinal(safe bool) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		return arrayAt(args, 1, safe)
	}
}

// arrayAt fetches args[0][args[1]-base], where base is 0 for OFFSET and 1
// for ORDINAL. On out-of-bounds, the SAFE_ variants return NULL instead of
// ErrOutOfBounds.
func arrayAt(args []value.Value, base int, safe bool) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, ErrTypeMismatch.New("OFFSET/ORDINAL take exactly 2 arguments")
	}
	arr, idx := args[0], args[1]
	if arr.IsNull() || idx.IsNull() {
		return value.Null(), nil
	}
	elems := arr.Array()
	i := int(idx.Int64()) - base
	if i < 0 || i >= len(elems) {
		if safe {
			return value.Null(), nil
		}
		return value.Value{}, ErrOutOfBounds.New(i, len(elems))
	}
	return elems[i], nil
}

func coalesce(args []value.Value) (value.Value, error) {
	for _, v := range args {
		if !v.IsNull() {
			return v, nil
		}
	}
	return value.Null(), nil
}

func ifNull(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, ErrTypeMismatch.New("IFNULL takes exactly 2 arguments")
	}
	if !args[0].IsNull() {
		return args[0], nil
	}
	return args[1], nil
}
