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

package column

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewValidBitmap(t *testing.T) {
	b := NewValidBitmap(100)
	require.Equal(t, 100, b.Len())
	for i := 0; i < 100; i++ {
		require.True(t, b.IsValid(i))
	}
}

func TestNewNullBitmapAll(t *testing.T) {
	b := NewNullBitmapAll(100)
	require.Equal(t, 100, b.Len())
	for i := 0; i < 100; i++ {
		require.True(t, b.IsNull(i))
	}
}

func TestPushAndCheck(t *testing.T) {
	b := NewNullBitmap()
	b.Push(false)
	b.Push(true)
	b.Push(false)
	require.Equal(t, 3, b.Len())
	require.True(t, b.IsValid(0))
	require.True(t, b.IsNull(1))
	require.True(t, b.IsValid(2))
}

func TestPushAcrossWordBoundary(t *testing.T) {
	b := NewNullBitmap()
	for i := 0; i < 65; i++ {
		b.Push(i == 63 || i == 64)
	}
	require.Equal(t, 65, b.Len())
	require.True(t, b.IsNull(63))
	require.True(t, b.IsNull(64))
	require.True(t, b.IsValid(62))
	require.Len(t, b.Words(), 2)
}

func TestSetOutOfRangeIgnored(t *testing.T) {
	b := NewValidBitmap(3)
	b.Set(10, true)
	require.Equal(t, 3, b.Len())
}

func TestIsNullOutOfRangeIsTrue(t *testing.T) {
	b := NewValidBitmap(3)
	require.True(t, b.IsNull(5))
}

func TestRemoveShiftsLaterRows(t *testing.T) {
	b := NewNullBitmap()
	for _, n := range []bool{false, true, false, true} {
		b.Push(n)
	}
	b.Remove(0)
	require.Equal(t, 3, b.Len())
	require.True(t, b.IsNull(0))
	require.False(t, b.IsNull(1))
	require.True(t, b.IsNull(2))
}

func TestRemoveAtWordBoundary(t *testing.T) {
	b := NewNullBitmap()
	for i := 0; i < 70; i++ {
		b.Push(i%2 == 0)
	}
	b.Remove(63)
	require.Equal(t, 69, b.Len())
}

func TestCountNull(t *testing.T) {
	b := NewNullBitmap()
	for i := 0; i < 130; i++ {
		b.Push(i%3 == 0)
	}
	expected := 0
	for i := 0; i < 130; i++ {
		if i%3 == 0 {
			expected++
		}
	}
	require.Equal(t, expected, b.CountNull())
	require.Equal(t, 130-expected, b.CountValid())
}

func TestIsAllNull(t *testing.T) {
	require.False(t, NewNullBitmap().IsAllNull())
	require.True(t, NewNullBitmapAll(10).IsAllNull())
	require.False(t, NewValidBitmap(10).IsAllNull())
}

func TestUnionTakesMaxLength(t *testing.T) {
	a := NewValidBitmap(3)
	a.SetNull(0)
	b := NewValidBitmap(5)
	b.SetNull(4)

	u := a.Union(b)
	require.Equal(t, 5, u.Len())
	require.True(t, u.IsNull(0))
	require.True(t, u.IsNull(4))
	require.True(t, u.IsValid(1))
}

func TestGatherSelectsByIndex(t *testing.T) {
	b := NewValidBitmap(4)
	b.SetNull(1)
	b.SetNull(3)

	g := b.Gather([]int{3, 1, 0})
	require.Equal(t, 3, g.Len())
	require.True(t, g.IsNull(0))
	require.True(t, g.IsNull(1))
	require.False(t, g.IsNull(2))
}

func TestExtendAlignedWordBoundary(t *testing.T) {
	a := NewValidBitmap(64)
	b := NewValidBitmap(2)
	b.SetNull(1)

	a.Extend(b)
	require.Equal(t, 66, a.Len())
	require.True(t, a.IsValid(64))
	require.True(t, a.IsNull(65))
}

func TestExtendUnalignedWordBoundary(t *testing.T) {
	a := NewValidBitmap(10)
	b := NewValidBitmap(3)
	b.SetNull(0)
	b.SetNull(2)

	a.Extend(b)
	require.Equal(t, 13, a.Len())
	require.True(t, a.IsNull(10))
	require.False(t, a.IsNull(11))
	require.True(t, a.IsNull(12))
}

func TestExtendSpansMultipleWords(t *testing.T) {
	a := NewValidBitmap(60)
	b := NewNullBitmapAll(70)

	a.Extend(b)
	require.Equal(t, 130, a.Len())
	for i := 0; i < 60; i++ {
		require.True(t, a.IsValid(i))
	}
	for i := 60; i < 130; i++ {
		require.True(t, a.IsNull(i))
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	b := NewValidBitmap(130)
	b.SetNull(0)
	b.SetNull(64)
	b.SetNull(129)

	data, err := b.MarshalBinary()
	require.NoError(t, err)

	var out NullBitmap
	require.NoError(t, out.UnmarshalBinary(data))
	require.True(t, b.Equal(out))
}

func TestEmptyBitmapRoundTrip(t *testing.T) {
	b := NewNullBitmap()
	data, err := b.MarshalBinary()
	require.NoError(t, err)

	var out NullBitmap
	require.NoError(t, out.UnmarshalBinary(data))
	require.True(t, b.Equal(out))
}
