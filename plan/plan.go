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

// Package plan implements the logical and physical relational-algebra tree
// ADTs: Scan/Filter/Project/Aggregate/Join at the logical level, and their
// executable counterparts (TableScan, HashJoin, NestedLoopJoin,
// HashAggregate, TopN, …) carrying ExecutionHints at the physical level.
package plan

import (
	"github.com/dollarsql/bqcore/expr"
	"github.com/dollarsql/bqcore/schema"
	"github.com/google/uuid"
)

// JoinType enumerates the join kinds shared by logical Join and the
// physical HashJoin/NestedLoopJoin/CrossJoin nodes.
type JoinType uint8

const (
	JoinInner JoinType = iota
	JoinLeft
	JoinRight
	JoinFull
	JoinLeftSemi
	JoinLeftAnti
	JoinCross
)

// SetOpKind enumerates logical/physical SetOperation variants.
type SetOpKind uint8

const (
	SetUnion SetOpKind = iota
	SetIntersect
	SetExcept
)

// ExecutionHints carries parallelism and memory hints a physical plan node
// passes to the executor; it never changes observable semantics.
type ExecutionHints struct {
	Parallelism    int
	MemoryHintBytes int64
}

// CteEntry is one WITH-clause binding.
type CteEntry struct {
	Name string
	Plan any // *LogicalPlan or *PhysicalPlan depending on the tree it appears in
}

// debugID tags a plan node with a stable id for trace-log correlation; it
// plays no role in plan semantics or equality.
func debugID() uuid.UUID { return uuid.New() }
