package writer

import (
	"fmt"

	"github.com/parttimenerd/jfr-redact-sub000/internal/format"
	"github.com/parttimenerd/jfr-redact-sub000/jfr"
	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
)

// ChunkMeta carries the header fields copied from the source chunk.
type ChunkMeta struct {
	Major          uint16
	Minor          uint16
	StartNanos     int64
	DurationNanos  int64
	StartTicks     int64
	TicksPerSecond int64
	Features       uint32
}

// Writer assembles a recording chunk by chunk and hands the result to a Sink.
type Writer struct {
	sink   Sink
	buf    []byte
	closed bool
}

// New returns a writer feeding the given sink.
func New(sink Sink) *Writer {
	return &Writer{sink: sink}
}

// Bytes exposes the assembled recording so far.
func (w *Writer) Bytes() []byte { return w.buf }

// Close flushes the assembled recording to the sink.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.sink.WriteRecording(w.buf)
}

// BeginChunk starts a new chunk. The previous chunk must be finished.
func (w *Writer) BeginChunk(meta ChunkMeta) *ChunkWriter {
	return &ChunkWriter{
		w:      w,
		meta:   meta,
		types:  make(map[string]*Type),
		nextID: format.FirstUserTypeID,
		pools:  make(map[*Type]*pool),
	}
}

// ChunkWriter owns one output chunk: its type dictionary, constant pools and
// event stream.
type ChunkWriter struct {
	w        *Writer
	meta     ChunkMeta
	types    map[string]*Type
	typeList []*Type
	nextID   int64

	events    []byte
	pools     map[*Type]*pool
	poolOrder []*Type
	finished  bool
}

type pool struct {
	byKey   map[string]uint64
	entries []poolItem
}

type poolItem struct {
	id   uint64
	data []byte
}

// Lookup returns the registered type with the given name.
func (c *ChunkWriter) Lookup(name string) (*Type, bool) {
	t, ok := c.types[name]
	return t, ok
}

// Builtin returns the primitive target type for name, registering it on
// first use. It returns false for non-primitive names.
func (c *ChunkWriter) Builtin(name string) (*Type, bool) {
	if _, ok := jfr.PrimitiveKind(name); !ok {
		return nil, false
	}
	if t, ok := c.types[name]; ok {
		return t, true
	}
	t := &Type{ID: c.nextID, Name: name, SimpleType: true, sealed: true}
	c.nextID++
	c.types[name] = t
	c.typeList = append(c.typeList, t)
	return t, true
}

// NewType registers a fresh complex type. Registering an existing name is an
// error; callers reuse via Lookup after checking layout compatibility.
func (c *ChunkWriter) NewType(name, super string, pooled bool) (*Type, error) {
	if _, ok := c.types[name]; ok {
		return nil, &types.Error{Kind: types.ErrKindCollision, Msg: fmt.Sprintf("writer: type %q already registered", name)}
	}
	t := &Type{ID: c.nextID, Name: name, Super: super, Pooled: pooled}
	c.nextID++
	c.types[name] = t
	c.typeList = append(c.typeList, t)
	return t, nil
}

// WriteEvent serializes one event of type t against t's declared fields,
// reading field values from src by name and substituting each field type's
// null value where src lacks the field.
func (c *ChunkWriter) WriteEvent(t *Type, src *jfr.Object) error {
	if c.finished {
		return &types.Error{Kind: types.ErrKindState, Msg: "writer: chunk already finished"}
	}
	t.Seal()
	payload := format.AppendUvarint(nil, uint64(t.ID))
	payload, err := c.appendFields(payload, t, src)
	if err != nil {
		return err
	}
	c.events = appendSized(c.events, payload)
	return nil
}

// appendSized prefixes payload with its total varint size (the size field
// includes itself) and appends both to dst.
func appendSized(dst, payload []byte) []byte {
	total := len(payload) + 1
	for format.UvarintLen(uint64(total)) != total-len(payload) {
		total = len(payload) + format.UvarintLen(uint64(total))
	}
	dst = format.AppendUvarint(dst, uint64(total))
	return append(dst, payload...)
}
