// Package buf contains bounds-checked helpers for endian-safe decoding.
// JFR chunk headers and fixed-width header fields are big-endian on disk.
package buf

import "encoding/binary"

// U16BE reads a big-endian uint16 from b. Returns 0 when b is too short.
func U16BE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// U32BE reads a big-endian uint32 from b. Returns 0 when b is too short.
func U32BE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// U64BE reads a big-endian uint64 from b. Returns 0 when b is too short.
func U64BE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// I64BE reads a big-endian int64 from b. Returns 0 when b is too short.
func I64BE(b []byte) int64 {
	if len(b) < 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

// PutU16BE writes a big-endian uint16 at b[off:]. No-op when out of bounds.
func PutU16BE(b []byte, off int, v uint16) {
	if !Has(b, off, 2) {
		return
	}
	binary.BigEndian.PutUint16(b[off:], v)
}

// PutU32BE writes a big-endian uint32 at b[off:]. No-op when out of bounds.
func PutU32BE(b []byte, off int, v uint32) {
	if !Has(b, off, 4) {
		return
	}
	binary.BigEndian.PutUint32(b[off:], v)
}

// PutU64BE writes a big-endian uint64 at b[off:]. No-op when out of bounds.
func PutU64BE(b []byte, off int, v uint64) {
	if !Has(b, off, 8) {
		return
	}
	binary.BigEndian.PutUint64(b[off:], v)
}
