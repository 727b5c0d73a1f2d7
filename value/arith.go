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

package value

import "math"

// CheckedAddInt64, CheckedSubInt64, CheckedMulInt64, CheckedDivInt64 and
// CheckedModInt64 are the single implementation of integer arithmetic with
// overflow/division-by-zero detection shared by constant folding and
// runtime expression evaluation — both must agree bit-for-bit, since
// folding a subexpression must never change what evaluating it produces.

func CheckedAddInt64(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

func CheckedSubInt64(a, b int64) (int64, bool) {
	diff := a - b
	if (b < 0 && diff < a) || (b > 0 && diff > a) {
		return 0, false
	}
	return diff, true
}

func CheckedMulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a == -1 && b == math.MinInt64 {
		return 0, false
	}
	if b == -1 && a == math.MinInt64 {
		return 0, false
	}
	result := a * b
	if result/b != a {
		return 0, false
	}
	return result, true
}

// CheckedDivInt64 reports false on division by zero and on the single
// overflowing case MinInt64 / -1.
func CheckedDivInt64(a, b int64) (int64, bool) {
	if b == 0 {
		return 0, false
	}
	if a == math.MinInt64 && b == -1 {
		return 0, false
	}
	return a / b, true
}

// CheckedModInt64 reports false on division by zero and on the single
// overflowing case MinInt64 % -1, matching CheckedDivInt64.
func CheckedModInt64(a, b int64) (int64, bool) {
	if b == 0 {
		return 0, false
	}
	if a == math.MinInt64 && b == -1 {
		return 0, false
	}
	return a % b, true
}
