package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 0x7f, 0x80, 0x3fff, 0x4000, 1<<21 - 1, 1 << 21,
		1<<28 - 1, 1 << 28, 1<<35 - 1, 1<<42 - 1, 1<<49 - 1, 1<<56 - 1,
		1 << 56, math.MaxUint64,
	}
	for _, v := range values {
		enc := AppendUvarint(nil, v)
		require.LessOrEqual(t, len(enc), MaxVarintLen)
		assert.Equal(t, len(enc), UvarintLen(v), "value %#x", v)
		got, n, err := Uvarint(enc, 0)
		require.NoError(t, err, "value %#x", v)
		assert.Equal(t, len(enc), n)
		assert.Equal(t, v, got, "value %#x", v)
	}
}

func TestVarintNegative(t *testing.T) {
	for _, v := range []int64{-1, -127, math.MinInt64, math.MaxInt64} {
		enc := AppendVarint(nil, v)
		got, n, err := Varint(enc, 0)
		require.NoError(t, err)
		assert.Equal(t, len(enc), n)
		assert.Equal(t, v, got)
	}
	// Negative values carry the full two's-complement bit pattern.
	assert.Len(t, AppendVarint(nil, -1), MaxVarintLen)
}

func TestUvarintTruncated(t *testing.T) {
	_, _, err := Uvarint(nil, 0)
	assert.ErrorIs(t, err, ErrTruncated)

	enc := AppendUvarint(nil, 1<<40)
	_, _, err = Uvarint(enc[:2], 0)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestUvarintOffset(t *testing.T) {
	b := append([]byte{0xde, 0xad}, AppendUvarint(nil, 300)...)
	got, n, err := Uvarint(b, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), got)
	assert.Equal(t, 2, n)
}
