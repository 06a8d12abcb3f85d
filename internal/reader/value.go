package reader

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/parttimenerd/jfr-redact-sub000/internal/format"
	"github.com/parttimenerd/jfr-redact-sub000/jfr"
	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
)

const maxArrayLen = 1 << 24

// decodeInline decodes a value of type t stored inline at off.
func (c *Chunk) decodeInline(t *jfr.Type, off int) (jfr.Value, int, error) {
	if t.IsPrimitive() {
		return c.decodePrimitive(t, off)
	}
	obj := &jfr.Object{Type: t, Values: make([]jfr.Value, len(t.Fields))}
	pos := off
	for i := range t.Fields {
		v, next, err := c.decodeFieldValue(&t.Fields[i], pos)
		if err != nil {
			return jfr.Null, 0, fmt.Errorf("%s.%s: %w", t.Name, t.Fields[i].Name, err)
		}
		obj.Values[i] = v
		pos = next
	}
	return jfr.ObjectOf(obj), pos, nil
}

// decodeFieldValue decodes one declared field: an array of elements or a
// single value, pooled or inline.
func (c *Chunk) decodeFieldValue(f *jfr.Field, off int) (jfr.Value, int, error) {
	if f.Array {
		cnt, n, err := format.Uvarint(c.data, off)
		if err != nil {
			return jfr.Null, 0, err
		}
		if cnt > maxArrayLen {
			return jfr.Null, 0, format.ErrSanityLimit
		}
		pos := off + n
		elems := make([]jfr.Value, 0, cnt)
		for i := uint64(0); i < cnt; i++ {
			v, next, err := c.decodeSingle(f.Type, f.Pooled, pos)
			if err != nil {
				return jfr.Null, 0, err
			}
			elems = append(elems, v)
			pos = next
		}
		return jfr.ArrayOf(elems), pos, nil
	}
	return c.decodeSingle(f.Type, f.Pooled, off)
}

func (c *Chunk) decodeSingle(t *jfr.Type, pooled bool, off int) (jfr.Value, int, error) {
	if pooled && !t.IsPrimitive() {
		id, n, err := format.Uvarint(c.data, off)
		if err != nil {
			return jfr.Null, 0, err
		}
		v, err := c.pools.resolve(t, id)
		if err != nil {
			return jfr.Null, 0, err
		}
		return v, off + n, nil
	}
	return c.decodeInline(t, off)
}

func (c *Chunk) decodePrimitive(t *jfr.Type, off int) (jfr.Value, int, error) {
	b := c.data
	switch t.Name {
	case "boolean":
		if off >= len(b) {
			return jfr.Null, 0, format.ErrTruncated
		}
		return jfr.Bool(b[off] != 0), off + 1, nil
	case "byte":
		if off >= len(b) {
			return jfr.Null, 0, format.ErrTruncated
		}
		return jfr.Integral(jfr.KindByte, int64(int8(b[off]))), off + 1, nil
	case "short":
		v, n, err := format.Varint(b, off)
		if err != nil {
			return jfr.Null, 0, err
		}
		return jfr.Integral(jfr.KindShort, v), off + n, nil
	case "char":
		v, n, err := format.Uvarint(b, off)
		if err != nil {
			return jfr.Null, 0, err
		}
		return jfr.Integral(jfr.KindChar, int64(v)), off + n, nil
	case "int":
		v, n, err := format.Varint(b, off)
		if err != nil {
			return jfr.Null, 0, err
		}
		return jfr.Integral(jfr.KindInt, v), off + n, nil
	case "long":
		v, n, err := format.Varint(b, off)
		if err != nil {
			return jfr.Null, 0, err
		}
		return jfr.Integral(jfr.KindLong, v), off + n, nil
	case "float":
		if off+4 > len(b) {
			return jfr.Null, 0, format.ErrTruncated
		}
		bits := binary.BigEndian.Uint32(b[off:])
		return jfr.Floating(jfr.KindFloat, float64(math.Float32frombits(bits))), off + 4, nil
	case "double":
		if off+8 > len(b) {
			return jfr.Null, 0, format.ErrTruncated
		}
		bits := binary.BigEndian.Uint64(b[off:])
		return jfr.Floating(jfr.KindDouble, math.Float64frombits(bits)), off + 8, nil
	case jfr.TypeString:
		sv, n, err := format.ReadString(b, off)
		if err != nil {
			return jfr.Null, 0, err
		}
		switch sv.Tag {
		case format.StringNull:
			return jfr.Null, off + n, nil
		case format.StringConstantPool:
			v, err := c.pools.resolve(t, sv.PoolID)
			if err != nil {
				return jfr.Null, 0, err
			}
			return v, off + n, nil
		default:
			return jfr.String(sv.S), off + n, nil
		}
	default:
		return jfr.Null, 0, &types.Error{Kind: types.ErrKindUnsupported, Msg: fmt.Sprintf("reader: unknown primitive %q", t.Name)}
	}
}

// skipValue advances past an inline value of type t without materializing
// it. Used while indexing pools, where referenced entries may not have been
// seen yet.
func (c *Chunk) skipValue(t *jfr.Type, off int) (int, error) {
	if t.IsPrimitive() {
		return c.skipPrimitive(t, off)
	}
	pos := off
	for i := range t.Fields {
		f := &t.Fields[i]
		n := 1
		if f.Array {
			cnt, m, err := format.Uvarint(c.data, pos)
			if err != nil {
				return 0, err
			}
			if cnt > maxArrayLen {
				return 0, format.ErrSanityLimit
			}
			pos += m
			n = int(cnt)
		}
		for j := 0; j < n; j++ {
			var err error
			if f.Pooled && !f.Type.IsPrimitive() {
				_, m, err := format.Uvarint(c.data, pos)
				if err != nil {
					return 0, err
				}
				pos += m
				continue
			}
			pos, err = c.skipValue(f.Type, pos)
			if err != nil {
				return 0, err
			}
		}
	}
	return pos, nil
}

func (c *Chunk) skipPrimitive(t *jfr.Type, off int) (int, error) {
	b := c.data
	switch t.Name {
	case "boolean", "byte":
		if off >= len(b) {
			return 0, format.ErrTruncated
		}
		return off + 1, nil
	case "short", "char", "int", "long":
		_, n, err := format.Uvarint(b, off)
		if err != nil {
			return 0, err
		}
		return off + n, nil
	case "float":
		if off+4 > len(b) {
			return 0, format.ErrTruncated
		}
		return off + 4, nil
	case "double":
		if off+8 > len(b) {
			return 0, format.ErrTruncated
		}
		return off + 8, nil
	case jfr.TypeString:
		_, n, err := format.ReadString(b, off)
		if err != nil {
			return 0, err
		}
		return off + n, nil
	default:
		return 0, &types.Error{Kind: types.ErrKindUnsupported, Msg: fmt.Sprintf("reader: unknown primitive %q", t.Name)}
	}
}
