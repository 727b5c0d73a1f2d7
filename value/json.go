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

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// JSON holds a parsed JSON document: nil, bool, float64, string, []JSON, or
// map[string]JSON. It is a distinct sub-type from Value so that a JSON
// document's internal structure never needs a Kind tag of its own.
type JSON struct {
	v any
}

func JSONNull() JSON                  { return JSON{v: nil} }
func JSONBool(b bool) JSON            { return JSON{v: b} }
func JSONNumber(f float64) JSON       { return JSON{v: f} }
func JSONString(s string) JSON        { return JSON{v: s} }
func JSONArray(elems []JSON) JSON     { return JSON{v: elems} }
func JSONObject(m map[string]JSON) JSON { return JSON{v: m} }

func (j JSON) Raw() any { return j.v }

// Canonical renders j as a JSON string with object keys sorted
// lexicographically, per the representation contract: two JSON documents
// that differ only in object key order must canonicalize identically.
func (j JSON) Canonical() string {
	var sb strings.Builder
	writeCanonicalJSON(&sb, j.v)
	return sb.String()
}

func writeCanonicalJSON(sb *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		if t {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case float64:
		sb.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	case string:
		sb.WriteString(strconv.Quote(t))
	case []JSON:
		sb.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeCanonicalJSON(sb, e.v)
		}
		sb.WriteByte(']')
	case map[string]JSON:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			writeCanonicalJSON(sb, t[k].v)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString(fmt.Sprintf("%v", t))
	}
}

// Equal compares two JSON documents structurally via their canonical form.
func (j JSON) Equal(other JSON) bool {
	return j.Canonical() == other.Canonical()
}
