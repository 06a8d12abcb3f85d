// Package format houses low-level decoders for the JFR (Java Flight
// Recorder) chunk format. The goal is to keep the parsing focused,
// allocation-free where possible, and independent from the public API so
// higher-level packages can orchestrate the data in a more ergonomic form.
package format

var (
	// Magic is the four-byte signature at the start of every chunk.
	// Layout:
	//   0x00  'F' 'L' 'R' '\0'
	Magic = []byte{'F', 'L', 'R', 0}
)

const (
	// ChunkHeaderSize is the size of the chunk header in bytes.
	//
	// Layout (big-endian):
	//   0x00  4  magic "FLR\0"
	//   0x04  2  major version
	//   0x06  2  minor version
	//   0x08  8  chunk size (including header)
	//   0x10  8  constant-pool offset (relative to chunk start)
	//   0x18  8  metadata offset (relative to chunk start)
	//   0x20  8  start time, nanoseconds since epoch
	//   0x28  8  duration, nanoseconds
	//   0x30  8  start ticks
	//   0x38  8  ticks per second
	//   0x40  4  feature flags
	ChunkHeaderSize = 0x44

	// Offsets of the chunk header fields.
	MagicOffset          = 0x00
	MajorOffset          = 0x04
	MinorOffset          = 0x06
	ChunkSizeOffset      = 0x08
	ConstantPoolOffset   = 0x10
	MetadataOffset       = 0x18
	StartNanosOffset     = 0x20
	DurationNanosOffset  = 0x28
	StartTicksOffset     = 0x30
	TicksPerSecondOffset = 0x38
	FeaturesOffset       = 0x40

	// MetadataTypeID is the reserved event type id of the metadata event
	// carrying the chunk's type dictionary.
	MetadataTypeID = 0

	// CheckpointTypeID is the reserved event type id of checkpoint events
	// carrying constant-pool segments.
	CheckpointTypeID = 1

	// FirstUserTypeID is the lowest type id available for real types.
	FirstUserTypeID = 16
)

// String field encodings. Every string value starts with one of these tags.
const (
	StringNull         = 0 // no bytes follow
	StringEmpty        = 1 // no bytes follow
	StringConstantPool = 2 // varint constant-pool id follows
	StringUTF8         = 3 // varint byte count + UTF-8 bytes
	StringCharArray    = 4 // varint char count + varint UTF-16 code units
	StringLatin1       = 5 // varint byte count + Latin-1 bytes
)

// MaxVarintLen is the maximum encoded size of a compressed integer.
// The first eight bytes contribute seven bits each; a ninth byte, when
// present, contributes a full eight bits for a total of 64.
const MaxVarintLen = 9
