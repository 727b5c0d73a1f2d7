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

package optimizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dollarsql/bqcore/optimizer/cost"
	"github.com/dollarsql/bqcore/optimizer/predicate"
)

func TestDefaultMatchesBuiltinHeuristics(t *testing.T) {
	opts := Default()
	require.Equal(t, predicate.DefaultModel(), opts.CostModel.Model)
	require.Equal(t, cost.DefaultTableRowCount, opts.CostModel.DefaultTableRowCount)
	require.NotNil(t, opts.Logger)
}

func TestLoadOverridesOnlyNamedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "optimizer.toml")
	doc := `
[selectivity]
column_equals_literal = 0.01
in_max = 0.75

[cost]
default_table_row_count = 5000

[hints]
parallelism = 4
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	opts, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 0.01, opts.CostModel.ColumnEqualsLiteral)
	require.Equal(t, 0.75, opts.CostModel.InMax)
	require.Equal(t, int64(5000), opts.CostModel.DefaultTableRowCount)
	require.Equal(t, 4, opts.DefaultHints.Parallelism)

	// Untouched fields keep their Default() values.
	require.Equal(t, predicate.DefaultModel().IsNull, opts.CostModel.IsNull)
	require.Equal(t, predicate.DefaultModel().Comparison, opts.CostModel.Comparison)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.Error(t, err)
}

func TestLoadDefaultIfMissingFallsBackOnAbsentFile(t *testing.T) {
	opts, err := LoadDefaultIfMissing(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	require.Equal(t, Default().CostModel, opts.CostModel)
}

func TestLoadDefaultIfMissingAppliesPresentFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "optimizer.toml")
	require.NoError(t, os.WriteFile(path, []byte("[cost]\ndefault_table_row_count = 42\n"), 0o644))

	opts, err := LoadDefaultIfMissing(path)
	require.NoError(t, err)
	require.Equal(t, int64(42), opts.CostModel.DefaultTableRowCount)
}
