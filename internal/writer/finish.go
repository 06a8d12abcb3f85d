package writer

import (
	"sort"
	"strconv"

	"github.com/parttimenerd/jfr-redact-sub000/internal/buf"
	"github.com/parttimenerd/jfr-redact-sub000/internal/format"
	"github.com/parttimenerd/jfr-redact-sub000/jfr"
	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
)

// Finish assembles the chunk (header, events, checkpoint, metadata), patches
// the header offsets and appends the bytes to the owning writer.
func (c *ChunkWriter) Finish() error {
	if c.finished {
		return &types.Error{Kind: types.ErrKindState, Msg: "writer: chunk already finished"}
	}
	c.finished = true

	chunk := make([]byte, format.ChunkHeaderSize, format.ChunkHeaderSize+len(c.events)+1024)
	chunk = append(chunk, c.events...)

	cpOffset := int64(0)
	if len(c.poolOrder) > 0 {
		cpOffset = int64(len(chunk))
		chunk = appendSized(chunk, c.checkpointPayload())
	}
	metaOffset := int64(len(chunk))
	chunk = appendSized(chunk, c.metadataPayload())

	copy(chunk[format.MagicOffset:], format.Magic)
	buf.PutU16BE(chunk, format.MajorOffset, c.meta.Major)
	buf.PutU16BE(chunk, format.MinorOffset, c.meta.Minor)
	buf.PutU64BE(chunk, format.ChunkSizeOffset, uint64(len(chunk)))
	buf.PutU64BE(chunk, format.ConstantPoolOffset, uint64(cpOffset))
	buf.PutU64BE(chunk, format.MetadataOffset, uint64(metaOffset))
	buf.PutU64BE(chunk, format.StartNanosOffset, uint64(c.meta.StartNanos))
	buf.PutU64BE(chunk, format.DurationNanosOffset, uint64(c.meta.DurationNanos))
	buf.PutU64BE(chunk, format.StartTicksOffset, uint64(c.meta.StartTicks))
	buf.PutU64BE(chunk, format.TicksPerSecondOffset, uint64(c.meta.TicksPerSecond))
	buf.PutU32BE(chunk, format.FeaturesOffset, c.meta.Features)

	c.w.buf = append(c.w.buf, chunk...)
	return nil
}

func (c *ChunkWriter) checkpointPayload() []byte {
	p := format.AppendUvarint(nil, format.CheckpointTypeID)
	p = format.AppendVarint(p, c.meta.StartTicks)
	p = format.AppendVarint(p, 0) // duration
	p = format.AppendVarint(p, 0) // delta to previous checkpoint
	p = append(p, 1)              // flush
	p = format.AppendUvarint(p, uint64(len(c.poolOrder)))
	for _, t := range c.poolOrder {
		pl := c.pools[t]
		p = format.AppendUvarint(p, uint64(t.ID))
		p = format.AppendUvarint(p, uint64(len(pl.entries)))
		for _, e := range pl.entries {
			p = format.AppendUvarint(p, e.id)
			p = append(p, e.data...)
		}
	}
	return p
}

// stringTable interns metadata strings.
type stringTable struct {
	byValue map[string]uint64
	values  []string
}

func (st *stringTable) idx(s string) uint64 {
	if i, ok := st.byValue[s]; ok {
		return i
	}
	i := uint64(len(st.values))
	st.byValue[s] = i
	st.values = append(st.values, s)
	return i
}

type metaElement struct {
	name     uint64
	attrs    [][2]uint64
	children []*metaElement
}

func (e *metaElement) attr(st *stringTable, k, v string) {
	e.attrs = append(e.attrs, [2]uint64{st.idx(k), st.idx(v)})
}

func (c *ChunkWriter) metadataPayload() []byte {
	st := &stringTable{byValue: make(map[string]uint64)}
	root := &metaElement{name: st.idx("root")}
	meta := &metaElement{name: st.idx("metadata")}
	region := &metaElement{name: st.idx("region")}
	root.children = append(root.children, meta, region)

	for _, t := range c.typeList {
		cl := &metaElement{name: st.idx("class")}
		cl.attr(st, "id", strconv.FormatInt(t.ID, 10))
		cl.attr(st, "name", t.Name)
		if t.Super != "" {
			cl.attr(st, "superType", t.Super)
		}
		if t.SimpleType {
			cl.attr(st, "simpleType", "true")
		}
		if t.Pooled {
			cl.attr(st, "constantPool", "true")
		}
		for i := range t.Fields {
			f := &t.Fields[i]
			fe := &metaElement{name: st.idx("field")}
			fe.attr(st, "name", f.Name)
			fe.attr(st, "class", strconv.FormatInt(f.Type.ID, 10))
			if f.Pooled {
				fe.attr(st, "constantPool", "true")
			}
			if f.Array {
				fe.attr(st, "dimension", "1")
			}
			for _, a := range f.Annotations {
				fe.children = append(fe.children, annotationElement(st, a))
			}
			cl.children = append(cl.children, fe)
		}
		for _, a := range t.Annotations {
			cl.children = append(cl.children, annotationElement(st, a))
		}
		meta.children = append(meta.children, cl)
	}

	p := format.AppendUvarint(nil, format.MetadataTypeID)
	p = format.AppendVarint(p, c.meta.StartTicks)
	p = format.AppendVarint(p, 0) // duration
	p = format.AppendVarint(p, 1) // metadata id
	// The element tree is built before the string table is emitted, so the
	// table already contains every referenced index.
	body := appendElement(nil, root)
	p = format.AppendUvarint(p, uint64(len(st.values)))
	for _, s := range st.values {
		p = format.AppendUTF8String(p, s, false)
	}
	return append(p, body...)
}

// annotationElement flattens an annotation instance: scalar values become
// plain attributes, array values become "name-0", "name-1", ... attributes.
func annotationElement(st *stringTable, a Annotation) *metaElement {
	el := &metaElement{name: st.idx("annotation")}
	el.attr(st, "class", strconv.FormatInt(a.Type.ID, 10))
	keys := make([]string, 0, len(a.Values))
	for k := range a.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := a.Values[k]
		if v.IsNull() {
			continue
		}
		if v.Kind == jfr.KindArray {
			for i, e := range v.Elems {
				el.attr(st, k+"-"+strconv.Itoa(i), e.Display())
			}
			continue
		}
		el.attr(st, k, v.Display())
	}
	return el
}

func appendElement(dst []byte, e *metaElement) []byte {
	dst = format.AppendUvarint(dst, e.name)
	dst = format.AppendUvarint(dst, uint64(len(e.attrs)))
	for _, kv := range e.attrs {
		dst = format.AppendUvarint(dst, kv[0])
		dst = format.AppendUvarint(dst, kv[1])
	}
	dst = format.AppendUvarint(dst, uint64(len(e.children)))
	for _, ch := range e.children {
		dst = appendElement(dst, ch)
	}
	return dst
}
