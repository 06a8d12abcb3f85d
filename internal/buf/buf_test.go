package buf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceBounds(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	got, ok := Slice(b, 1, 2)
	assert.True(t, ok)
	assert.Equal(t, []byte{2, 3}, got)

	_, ok = Slice(b, 3, 2)
	assert.False(t, ok)
	_, ok = Slice(b, -1, 1)
	assert.False(t, ok)
	_, ok = Slice(b, 1, math.MaxInt)
	assert.False(t, ok)
	assert.False(t, Has(b, 0, 5))
	assert.True(t, Has(b, 0, 4))
}

func TestAddOverflowSafe(t *testing.T) {
	_, ok := AddOverflowSafe(math.MaxInt, 1)
	assert.False(t, ok)
	sum, ok := AddOverflowSafe(2, 3)
	assert.True(t, ok)
	assert.Equal(t, 5, sum)
}

func TestBigEndianReads(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	assert.Equal(t, uint16(0x0102), U16BE(b))
	assert.Equal(t, uint32(0x01020304), U32BE(b))
	assert.Equal(t, uint64(0x0102030405060708), U64BE(b))
	assert.Equal(t, uint16(0), U16BE(b[:1]), "short buffers read as zero")
}

func TestBigEndianWrites(t *testing.T) {
	b := make([]byte, 8)
	PutU32BE(b, 2, 0xdeadbeef)
	assert.Equal(t, uint32(0xdeadbeef), U32BE(b[2:]))

	// Out-of-bounds writes are no-ops.
	before := append([]byte(nil), b...)
	PutU64BE(b, 4, 1)
	assert.Equal(t, before, b)
}
