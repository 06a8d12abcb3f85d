package reader

import (
	"fmt"

	"github.com/parttimenerd/jfr-redact-sub000/internal/format"
	"github.com/parttimenerd/jfr-redact-sub000/jfr"
	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
)

// Cursor iterates the event stream of a recording in file order across all
// chunks. Metadata and checkpoint events are skipped transparently, as are
// events whose type id is absent from the dictionary.
//
// A cursor is single-use; obtain a fresh one per traversal.
type Cursor struct {
	chunks   []*Chunk
	chunkIdx int
	off      int
}

// Events returns a new cursor positioned before the first event.
func (r *Recording) Events() *Cursor {
	return &Cursor{chunks: r.Chunks, off: format.ChunkHeaderSize}
}

// Events returns a cursor over this chunk only.
func (c *Chunk) Events() *Cursor {
	return &Cursor{chunks: []*Chunk{c}, off: format.ChunkHeaderSize}
}

// Next decodes and returns the next event. The second result is false when
// the stream is exhausted. Decoding errors are fatal for the recording.
func (c *Cursor) Next() (*jfr.Event, bool, error) {
	for {
		if c.chunkIdx >= len(c.chunks) {
			return nil, false, nil
		}
		ch := c.chunks[c.chunkIdx]
		if c.off >= len(ch.data) {
			c.chunkIdx++
			c.off = format.ChunkHeaderSize
			continue
		}
		size, n, err := format.Uvarint(ch.data, c.off)
		if err != nil {
			return nil, false, fmt.Errorf("reader: event size at %d: %w", c.off, err)
		}
		if size == 0 || c.off+int(size) > len(ch.data) {
			return nil, false, &types.Error{Kind: types.ErrKindCorrupt, Msg: fmt.Sprintf("reader: event at %d overruns chunk", c.off)}
		}
		end := c.off + int(size)
		typeID, m, err := format.Uvarint(ch.data, c.off+n)
		if err != nil {
			return nil, false, err
		}
		if typeID == format.MetadataTypeID || typeID == format.CheckpointTypeID {
			c.off = end
			continue
		}
		t, ok := ch.Types[jfr.TypeID(typeID)]
		if !ok {
			c.off = end
			continue
		}
		obj := &jfr.Object{Type: t, Values: make([]jfr.Value, len(t.Fields))}
		pos := c.off + n + m
		for i := range t.Fields {
			v, next, err := ch.decodeFieldValue(&t.Fields[i], pos)
			if err != nil {
				return nil, false, fmt.Errorf("reader: event %s at %d: %w", t.Name, c.off, err)
			}
			obj.Values[i] = v
			pos = next
		}
		ev := &jfr.Event{Type: t, Payload: obj}
		if v, ok := obj.Value("startTime"); ok && v.IsIntegral() {
			ev.StartTicks = v.I
			h := ch.Header
			ev.StartNanos = format.TicksToNanos(h.StartNanos, h.StartTicks, h.TicksPerSecond, v.I)
		}
		c.off = end
		return ev, true, nil
	}
}

// Chunk returns the chunk owning the most recently returned event.
func (c *Cursor) Chunk() *Chunk {
	if c.chunkIdx < len(c.chunks) {
		return c.chunks[c.chunkIdx]
	}
	return nil
}
