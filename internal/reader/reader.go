package reader

import (
	"bytes"
	"fmt"

	"github.com/parttimenerd/jfr-redact-sub000/internal/buf"
	"github.com/parttimenerd/jfr-redact-sub000/internal/format"
	"github.com/parttimenerd/jfr-redact-sub000/internal/mmfile"
	"github.com/parttimenerd/jfr-redact-sub000/jfr"
	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
)

// Header is a parsed chunk header.
type Header struct {
	Major          uint16
	Minor          uint16
	Size           int64
	ConstantPool   int64 // offset relative to chunk start, 0 = none
	Metadata       int64 // offset relative to chunk start
	StartNanos     int64
	DurationNanos  int64
	StartTicks     int64
	TicksPerSecond int64
	Features       uint32
}

// Chunk is one self-contained segment of a recording: header, type
// dictionary, constant pools and the event byte range.
type Chunk struct {
	Header Header
	Types  map[jfr.TypeID]*jfr.Type

	data  []byte // the chunk's bytes, header included
	pools *poolSet
}

// TypeByName returns the chunk's type with the given name.
func (c *Chunk) TypeByName(name string) (*jfr.Type, bool) {
	for _, t := range c.Types {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Recording is an opened recording file.
type Recording struct {
	Path   string
	Chunks []*Chunk

	data  []byte
	close func() error
}

// Open maps the recording at path and parses every chunk's header, metadata
// and constant-pool index. Event payloads are decoded on demand by cursors.
func Open(path string) (*Recording, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("reader: open %s: %w", path, err)
	}
	r, err := OpenBytes(data)
	if err != nil {
		_ = cleanup()
		return nil, fmt.Errorf("reader: %s: %w", path, err)
	}
	r.Path = path
	r.close = cleanup
	return r, nil
}

// OpenBytes parses a recording held in memory.
func OpenBytes(data []byte) (*Recording, error) {
	r := &Recording{data: data}
	off := 0
	for off < len(data) {
		c, err := parseChunk(data[off:])
		if err != nil {
			return nil, err
		}
		r.Chunks = append(r.Chunks, c)
		off += int(c.Header.Size)
	}
	if len(r.Chunks) == 0 {
		return nil, types.ErrNotRecording
	}
	return r, nil
}

// Close releases the mapping. The recording must not be used afterwards.
func (r *Recording) Close() error {
	if r.close == nil {
		return nil
	}
	err := r.close()
	r.close = nil
	return err
}

func parseChunk(data []byte) (*Chunk, error) {
	if len(data) < format.ChunkHeaderSize {
		return nil, types.ErrNotRecording
	}
	if !bytes.Equal(data[:4], format.Magic) {
		return nil, types.ErrNotRecording
	}
	h := Header{
		Major:          buf.U16BE(data[format.MajorOffset:]),
		Minor:          buf.U16BE(data[format.MinorOffset:]),
		Size:           buf.I64BE(data[format.ChunkSizeOffset:]),
		ConstantPool:   buf.I64BE(data[format.ConstantPoolOffset:]),
		Metadata:       buf.I64BE(data[format.MetadataOffset:]),
		StartNanos:     buf.I64BE(data[format.StartNanosOffset:]),
		DurationNanos:  buf.I64BE(data[format.DurationNanosOffset:]),
		StartTicks:     buf.I64BE(data[format.StartTicksOffset:]),
		TicksPerSecond: buf.I64BE(data[format.TicksPerSecondOffset:]),
		Features:       buf.U32BE(data[format.FeaturesOffset:]),
	}
	if h.Size < format.ChunkHeaderSize || h.Size > int64(len(data)) {
		return nil, &types.Error{Kind: types.ErrKindCorrupt, Msg: fmt.Sprintf("reader: chunk size %d out of range", h.Size)}
	}
	c := &Chunk{
		Header: h,
		data:   data[:h.Size],
	}
	if h.Metadata <= 0 || h.Metadata >= h.Size {
		return nil, &types.Error{Kind: types.ErrKindCorrupt, Msg: "reader: missing metadata event"}
	}
	if err := c.parseMetadata(int(h.Metadata)); err != nil {
		return nil, err
	}
	c.pools = newPoolSet(c)
	if h.ConstantPool > 0 && h.ConstantPool < h.Size {
		if err := c.pools.index(int(h.ConstantPool)); err != nil {
			return nil, err
		}
	}
	return c, nil
}
