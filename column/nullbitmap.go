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

// Package column implements the columnar storage primitives that sit below
// bqcore's expression and plan layers: a packed null bitmap and the typed
// column/record/table shapes built on top of it and the value package.
package column

import "github.com/vmihailenco/msgpack/v5"

// NullBitmap is a packed, one-bit-per-row null indicator. Bit 1 means the
// row at that index is NULL. Word count is always ceil(len/64); the word
// layout and every mutating operation below mirror the reference bitmap
// algorithm bit-for-bit, including the sub-word shifting in Extend.
type NullBitmap struct {
	words []uint64
	len   int
}

// NewNullBitmap returns an empty bitmap.
func NewNullBitmap() NullBitmap {
	return NullBitmap{}
}

func numWords(length int) int {
	return (length + 63) / 64
}

// NewValidBitmap returns a bitmap of the given length with every row valid.
func NewValidBitmap(length int) NullBitmap {
	return NullBitmap{words: make([]uint64, numWords(length)), len: length}
}

// NewNullBitmapAll returns a bitmap of the given length with every row null.
func NewNullBitmapAll(length int) NullBitmap {
	words := make([]uint64, numWords(length))
	for i := range words {
		words[i] = ^uint64(0)
	}
	return NullBitmap{words: words, len: length}
}

// FromWords reconstructs a bitmap from its raw word slice and length,
// trusting the caller that words has at least ceil(len/64) entries.
func FromWords(words []uint64, length int) NullBitmap {
	return NullBitmap{words: words, len: length}
}

func (b NullBitmap) Len() int      { return b.len }
func (b NullBitmap) IsEmpty() bool { return b.len == 0 }
func (b NullBitmap) Words() []uint64 { return b.words }

// IsNull reports whether row index is null. An out-of-range index is
// treated as null, matching the reference implementation.
func (b NullBitmap) IsNull(index int) bool {
	if index >= b.len {
		return true
	}
	word, bit := index/64, uint(index%64)
	return (b.words[word]>>bit)&1 == 1
}

func (b NullBitmap) IsValid(index int) bool { return !b.IsNull(index) }

// Set marks row index null or valid. Out-of-range indices are ignored.
func (b *NullBitmap) Set(index int, isNull bool) {
	if index >= b.len {
		return
	}
	word, bit := index/64, uint(index%64)
	if isNull {
		b.words[word] |= 1 << bit
	} else {
		b.words[word] &^= 1 << bit
	}
}

func (b *NullBitmap) SetValid(index int) { b.Set(index, false) }
func (b *NullBitmap) SetNull(index int)  { b.Set(index, true) }

// Push appends one row to the end of the bitmap.
func (b *NullBitmap) Push(isNull bool) {
	word, bit := b.len/64, uint(b.len%64)
	if word >= len(b.words) {
		b.words = append(b.words, 0)
	}
	if isNull {
		b.words[word] |= 1 << bit
	}
	b.len++
}

// Remove deletes row index, shifting every later row down by one.
func (b *NullBitmap) Remove(index int) {
	if index >= b.len {
		return
	}
	for i := index; i < b.len-1; i++ {
		b.Set(i, b.IsNull(i+1))
	}
	b.len--
	nw := numWords(b.len)
	if nw < 1 {
		nw = 1
	}
	if nw < len(b.words) {
		b.words = b.words[:nw]
	}
}

// Clear resets the bitmap to empty.
func (b *NullBitmap) Clear() {
	b.words = nil
	b.len = 0
}

// CountNull returns the number of null rows.
func (b NullBitmap) CountNull() int {
	if b.len == 0 {
		return 0
	}
	fullWords := b.len / 64
	remaining := b.len % 64
	count := 0
	for _, w := range b.words[:fullWords] {
		count += popcount(w)
	}
	if remaining > 0 && fullWords < len(b.words) {
		mask := (uint64(1) << uint(remaining)) - 1
		count += popcount(b.words[fullWords] & mask)
	}
	return count
}

func (b NullBitmap) CountValid() int { return b.len - b.CountNull() }

func (b NullBitmap) IsAllNull() bool { return b.len > 0 && b.CountNull() == b.len }

func popcount(w uint64) int {
	count := 0
	for w != 0 {
		w &= w - 1
		count++
	}
	return count
}

// Union returns the bitwise OR of b and other, treating a missing word on
// either side as all-valid (0). The result's length is the larger of the
// two inputs.
func (b NullBitmap) Union(other NullBitmap) NullBitmap {
	length := b.len
	if other.len > length {
		length = other.len
	}
	if length == 0 {
		return NullBitmap{}
	}
	words := make([]uint64, numWords(length))
	for i := range words {
		var lw, rw uint64
		if i < len(b.words) {
			lw = b.words[i]
		}
		if i < len(other.words) {
			rw = other.words[i]
		}
		words[i] = lw | rw
	}
	return NullBitmap{words: words, len: length}
}

// Gather builds a new bitmap by reading b.IsNull(indices[i]) into output
// position i, the row-selection primitive used by project/filter/sort
// execution.
func (b NullBitmap) Gather(indices []int) NullBitmap {
	length := len(indices)
	if length == 0 {
		return NullBitmap{}
	}
	words := make([]uint64, numWords(length))
	for outIdx, srcIdx := range indices {
		if b.IsNull(srcIdx) {
			word, bit := outIdx/64, uint(outIdx%64)
			words[word] |= 1 << bit
		}
	}
	return NullBitmap{words: words, len: length}
}

// Extend appends other's rows after b's rows in place, handling the
// sub-word bit shift when b's current length isn't a multiple of 64.
func (b *NullBitmap) Extend(other NullBitmap) {
	if other.len == 0 {
		return
	}

	startBit := b.len % 64

	if startBit == 0 {
		b.words = append(b.words, other.words...)
	} else {
		shift := uint(startBit)
		invShift := uint(64 - startBit)
		otherFullWords := other.len / 64
		otherRemaining := other.len % 64

		for i, word := range other.words {
			lowBits := word << shift
			highBits := word >> invShift

			if len(b.words) > 0 {
				b.words[len(b.words)-1] |= lowBits
			} else {
				b.words = append(b.words, lowBits)
			}

			isLastWord := i == len(other.words)-1
			if !isLastWord || otherRemaining > int(invShift) || i < otherFullWords {
				b.words = append(b.words, highBits)
			}
		}
	}

	b.len += other.len

	nw := numWords(b.len)
	if nw < len(b.words) {
		b.words = b.words[:nw]
	}
}

// bitmapWire is the msgpack wire shape for NullBitmap, keeping the private
// fields out of the exported type while giving round-trip serialization a
// stable encoding.
type bitmapWire struct {
	Words []uint64
	Len   int
}

// MarshalBinary implements encoding.BinaryMarshaler via msgpack, satisfying
// the "serialize, then deserialize, returns an equal bitmap" property.
func (b NullBitmap) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal(bitmapWire{Words: b.words, Len: b.len})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (b *NullBitmap) UnmarshalBinary(data []byte) error {
	var wire bitmapWire
	if err := msgpack.Unmarshal(data, &wire); err != nil {
		return err
	}
	b.words = wire.Words
	b.len = wire.Len
	return nil
}

// Equal reports whether b and other have the same length and the same null
// pattern at every row.
func (b NullBitmap) Equal(other NullBitmap) bool {
	if b.len != other.len {
		return false
	}
	for i := 0; i < b.len; i++ {
		if b.IsNull(i) != other.IsNull(i) {
			return false
		}
	}
	return true
}
