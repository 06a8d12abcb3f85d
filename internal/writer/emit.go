package writer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/parttimenerd/jfr-redact-sub000/internal/format"
	"github.com/parttimenerd/jfr-redact-sub000/jfr"
	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
)

// appendFields serializes src against t's declared field list. Every
// declared field is always written; fields missing from src carry the
// field type's null value.
func (c *ChunkWriter) appendFields(dst []byte, t *Type, src *jfr.Object) ([]byte, error) {
	t.Seal()
	var err error
	for i := range t.Fields {
		f := &t.Fields[i]
		v := fieldValue(src, f)
		dst, err = c.appendFieldValue(dst, f, v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name, f.Name, err)
		}
	}
	return dst, nil
}

// fieldValue pulls the named field out of the source object, falling back to
// the declared type's null value.
func fieldValue(src *jfr.Object, f *Field) jfr.Value {
	if src == nil {
		return jfr.Zero(nil, f.Array)
	}
	v, ok := src.Value(f.Name)
	if !ok {
		return zeroFor(f)
	}
	return v
}

func zeroFor(f *Field) jfr.Value {
	if f.Array {
		return jfr.ArrayOf(nil)
	}
	switch f.Type.Name {
	case "boolean":
		return jfr.Bool(false)
	case "byte":
		return jfr.Integral(jfr.KindByte, 0)
	case "short":
		return jfr.Integral(jfr.KindShort, 0)
	case "char":
		return jfr.Integral(jfr.KindChar, 0)
	case "int":
		return jfr.Integral(jfr.KindInt, 0)
	case "long":
		return jfr.Integral(jfr.KindLong, 0)
	case "float":
		return jfr.Floating(jfr.KindFloat, 0)
	case "double":
		return jfr.Floating(jfr.KindDouble, 0)
	default:
		return jfr.Null
	}
}

func (c *ChunkWriter) appendFieldValue(dst []byte, f *Field, v jfr.Value) ([]byte, error) {
	if f.Array {
		elems := v.Elems
		if v.Kind != jfr.KindArray {
			elems = nil
		}
		dst = format.AppendUvarint(dst, uint64(len(elems)))
		var err error
		for _, e := range elems {
			dst, err = c.appendSingle(dst, f.Type, f.Pooled, e)
			if err != nil {
				return nil, err
			}
		}
		return dst, nil
	}
	return c.appendSingle(dst, f.Type, f.Pooled, v)
}

func (c *ChunkWriter) appendSingle(dst []byte, t *Type, pooled bool, v jfr.Value) ([]byte, error) {
	if pooled && !t.IsPrimitive() {
		id, err := c.intern(t, v)
		if err != nil {
			return nil, err
		}
		return format.AppendUvarint(dst, id), nil
	}
	if t.IsPrimitive() {
		return c.appendPrimitive(dst, t, v)
	}
	// Inline structured value.
	var obj *jfr.Object
	if v.Kind == jfr.KindObject {
		obj = v.Obj
	}
	return c.appendFields(dst, t, obj)
}

func (c *ChunkWriter) appendPrimitive(dst []byte, t *Type, v jfr.Value) ([]byte, error) {
	switch t.Name {
	case "boolean":
		if v.AsBool() {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil
	case "byte":
		return append(dst, byte(v.I)), nil
	case "short", "int", "long":
		return format.AppendVarint(dst, v.I), nil
	case "char":
		return format.AppendUvarint(dst, uint64(uint16(v.I))), nil
	case "float":
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], math.Float32bits(float32(v.F)))
		return append(dst, b[:]...), nil
	case "double":
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(v.F))
		return append(dst, b[:]...), nil
	case jfr.TypeString:
		if v.IsNull() {
			return format.AppendUTF8String(dst, "", true), nil
		}
		return format.AppendUTF8String(dst, v.S, false), nil
	default:
		return nil, &types.Error{Kind: types.ErrKindUnsupported, Msg: fmt.Sprintf("writer: unknown primitive %q", t.Name)}
	}
}

// intern serializes v inline and deduplicates it in t's constant pool,
// returning the pool id. Null values map to id 0.
func (c *ChunkWriter) intern(t *Type, v jfr.Value) (uint64, error) {
	if v.IsNull() {
		return 0, nil
	}
	var obj *jfr.Object
	if v.Kind == jfr.KindObject {
		obj = v.Obj
	}
	data, err := c.appendFields(nil, t, obj)
	if err != nil {
		return 0, err
	}
	p := c.pools[t]
	if p == nil {
		p = &pool{byKey: make(map[string]uint64)}
		c.pools[t] = p
		c.poolOrder = append(c.poolOrder, t)
	}
	key := string(data)
	if id, ok := p.byKey[key]; ok {
		return id, nil
	}
	id := uint64(len(p.entries) + 1)
	p.byKey[key] = id
	p.entries = append(p.entries, poolItem{id: id, data: data})
	return id, nil
}
