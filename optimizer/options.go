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

// Package optimizer assembles the rule-based and cost-aware optimizer
// passes into one configurable pipeline. Options is the single knob a
// deployment turns: the selectivity table the predicate and cost packages
// share, the default table row count used when a scan carries no
// RowCountHint, and the execution hints a physical plan gets when nothing
// more specific applies. Everything here has a built-in default; a TOML
// file only overrides what it names.
package optimizer

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/dollarsql/bqcore/optimizer/cost"
	"github.com/dollarsql/bqcore/plan"
)

// Options bundles the cost model, default execution hints, and logger a
// Pipeline runs with. The zero Options is not valid on its own; callers
// start from Default() or Load and mutate from there.
type Options struct {
	CostModel    cost.CostModel
	DefaultHints plan.ExecutionHints
	Logger       logrus.FieldLogger
}

// Default returns the built-in heuristic configuration: the selectivity
// table from predicate.DefaultModel, cost.DefaultTableRowCount, default
// hints with Parallelism 1, and logrus's standard logger.
func Default() Options {
	return Options{
		CostModel:    cost.DefaultCostModel(),
		DefaultHints: plan.ExecutionHints{Parallelism: 1},
		Logger:       logrus.StandardLogger(),
	}
}

// tomlOptions is the on-disk shape Load decodes. Every field is a pointer
// so an absent TOML key leaves the corresponding Default() value alone
// instead of zeroing it out.
type tomlOptions struct {
	Selectivity *tomlSelectivity `toml:"selectivity"`
	Cost        *tomlCost        `toml:"cost"`
	Hints       *tomlHints       `toml:"hints"`
}

type tomlSelectivity struct {
	ColumnEqualsLiteral *float64 `toml:"column_equals_literal"`
	IsNull              *float64 `toml:"is_null"`
	IsNotNull           *float64 `toml:"is_not_null"`
	Comparison          *float64 `toml:"comparison"`
	Between             *float64 `toml:"between"`
	InPerItem           *float64 `toml:"in_per_item"`
	InMax               *float64 `toml:"in_max"`
	Like                *float64 `toml:"like"`
	LikeLeadingWildcard *float64 `toml:"like_leading_wildcard"`
	Unknown             *float64 `toml:"unknown"`
}

type tomlCost struct {
	DefaultTableRowCount *int64 `toml:"default_table_row_count"`
}

type tomlHints struct {
	Parallelism     *int   `toml:"parallelism"`
	MemoryHintBytes *int64 `toml:"memory_hint_bytes"`
}

// Load reads a TOML config file at path and applies it on top of Default().
// A missing or empty [selectivity]/[cost]/[hints] table leaves those
// defaults untouched field by field. The returned Options always has a
// non-nil Logger.
func Load(path string) (Options, error) {
	opts := Default()
	var doc tomlOptions
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return Options{}, fmt.Errorf("optimizer: decode config %q: %w", path, err)
	}
	applyOverrides(&opts, doc)
	return opts, nil
}

// LoadDefaultIfMissing is Load, except a missing file at path is not an
// error: it returns Default() unchanged, matching how a deployment that
// never drops a config file in place keeps running on the built-in
// heuristics.
func LoadDefaultIfMissing(path string) (Options, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

func applyOverrides(opts *Options, doc tomlOptions) {
	if s := doc.Selectivity; s != nil {
		m := &opts.CostModel.Model
		setFloat(&m.ColumnEqualsLiteral, s.ColumnEqualsLiteral)
		setFloat(&m.IsNull, s.IsNull)
		setFloat(&m.IsNotNull, s.IsNotNull)
		setFloat(&m.Comparison, s.Comparison)
		setFloat(&m.Between, s.Between)
		setFloat(&m.InPerItem, s.InPerItem)
		setFloat(&m.InMax, s.InMax)
		setFloat(&m.Like, s.Like)
		setFloat(&m.LikeLeadingWildcard, s.LikeLeadingWildcard)
		setFloat(&m.Unknown, s.Unknown)
	}
	if c := doc.Cost; c != nil && c.DefaultTableRowCount != nil {
		opts.CostModel.DefaultTableRowCount = *c.DefaultTableRowCount
	}
	if h := doc.Hints; h != nil {
		if h.Parallelism != nil {
			opts.DefaultHints.Parallelism = *h.Parallelism
		}
		if h.MemoryHintBytes != nil {
			opts.DefaultHints.MemoryHintBytes = *h.MemoryHintBytes
		}
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
