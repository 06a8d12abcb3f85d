package format

import "errors"

var (
	// ErrBadMagic indicates a chunk had an unexpected signature.
	ErrBadMagic = errors.New("format: bad chunk magic")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrVarintOverflow indicates a compressed integer ran past its 9-byte limit.
	ErrVarintOverflow = errors.New("format: varint exceeds 9 bytes")
	// ErrBadStringTag indicates a string value carried an unknown encoding tag.
	ErrBadStringTag = errors.New("format: unknown string encoding tag")
	// ErrSanityLimit indicates a parsed count exceeded sanity limits.
	// This prevents excessive allocations from malformed recordings.
	ErrSanityLimit = errors.New("format: value exceeds sanity limit")
)
