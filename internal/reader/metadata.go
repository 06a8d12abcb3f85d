package reader

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/parttimenerd/jfr-redact-sub000/internal/format"
	"github.com/parttimenerd/jfr-redact-sub000/jfr"
	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
)

// The metadata event carries a string table followed by an element tree:
//
//	root
//	  metadata
//	    class*        (id, name, superType, simpleType)
//	      field*      (name, class, constantPool, dimension)
//	      annotation* (class, value attributes)
//	  region
//
// Attribute keys and values both index the string table. Annotation array
// values are flattened into "name-0", "name-1", ... attributes.

type element struct {
	name     string
	attrs    map[string]string
	children []element
}

func (e *element) childrenNamed(name string) []element {
	var out []element
	for _, c := range e.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

const maxMetadataElements = 1 << 22

func (c *Chunk) parseMetadata(off int) error {
	b := c.data
	size, n, err := format.Uvarint(b, off)
	if err != nil {
		return fmt.Errorf("reader: metadata size: %w", err)
	}
	end := off + int(size)
	if end > len(b) {
		return &types.Error{Kind: types.ErrKindCorrupt, Msg: "reader: metadata event overruns chunk"}
	}
	pos := off + n
	typeID, n, err := format.Uvarint(b, pos)
	if err != nil {
		return err
	}
	if typeID != format.MetadataTypeID {
		return &types.Error{Kind: types.ErrKindCorrupt, Msg: fmt.Sprintf("reader: expected metadata event, got type %d", typeID)}
	}
	pos += n
	// startTicks, duration, metadataID
	for i := 0; i < 3; i++ {
		_, n, err = format.Uvarint(b, pos)
		if err != nil {
			return err
		}
		pos += n
	}
	// String table.
	cnt, n, err := format.Uvarint(b, pos)
	if err != nil {
		return err
	}
	pos += n
	if cnt > maxMetadataElements {
		return format.ErrSanityLimit
	}
	table := make([]string, cnt)
	for i := range table {
		sv, m, err := format.ReadString(b, pos)
		if err != nil {
			return fmt.Errorf("reader: metadata string table: %w", err)
		}
		if sv.Tag == format.StringConstantPool {
			return &types.Error{Kind: types.ErrKindCorrupt, Msg: "reader: pool reference inside metadata string table"}
		}
		table[i] = sv.S
		pos += m
	}
	root, pos, err := parseElement(b, pos, table, 0)
	if err != nil {
		return err
	}
	if pos > end {
		return &types.Error{Kind: types.ErrKindCorrupt, Msg: "reader: metadata tree overruns event"}
	}
	return c.buildTypes(root)
}

func parseElement(b []byte, pos int, table []string, depth int) (element, int, error) {
	if depth > 64 {
		return element{}, 0, &types.Error{Kind: types.ErrKindCorrupt, Msg: "reader: metadata tree too deep"}
	}
	nameIdx, n, err := format.Uvarint(b, pos)
	if err != nil {
		return element{}, 0, err
	}
	pos += n
	if nameIdx >= uint64(len(table)) {
		return element{}, 0, &types.Error{Kind: types.ErrKindCorrupt, Msg: "reader: metadata string index out of range"}
	}
	el := element{name: table[nameIdx]}
	attrCnt, n, err := format.Uvarint(b, pos)
	if err != nil {
		return element{}, 0, err
	}
	pos += n
	if attrCnt > maxMetadataElements {
		return element{}, 0, format.ErrSanityLimit
	}
	if attrCnt > 0 {
		el.attrs = make(map[string]string, attrCnt)
	}
	for i := uint64(0); i < attrCnt; i++ {
		k, n, err := format.Uvarint(b, pos)
		if err != nil {
			return element{}, 0, err
		}
		pos += n
		v, m, err := format.Uvarint(b, pos)
		if err != nil {
			return element{}, 0, err
		}
		pos += m
		if k >= uint64(len(table)) || v >= uint64(len(table)) {
			return element{}, 0, &types.Error{Kind: types.ErrKindCorrupt, Msg: "reader: metadata string index out of range"}
		}
		el.attrs[table[k]] = table[v]
	}
	childCnt, n, err := format.Uvarint(b, pos)
	if err != nil {
		return element{}, 0, err
	}
	pos += n
	if childCnt > maxMetadataElements {
		return element{}, 0, format.ErrSanityLimit
	}
	for i := uint64(0); i < childCnt; i++ {
		child, next, err := parseElement(b, pos, table, depth+1)
		if err != nil {
			return element{}, 0, err
		}
		el.children = append(el.children, child)
		pos = next
	}
	return el, pos, nil
}

// buildTypes materializes the class elements into linked jfr.Type values.
// Linking is two-phase so fields can reference classes declared later and
// type graphs may contain cycles (Thread -> Thread).
func (c *Chunk) buildTypes(root element) error {
	meta := root.childrenNamed("metadata")
	if len(meta) == 0 {
		return &types.Error{Kind: types.ErrKindCorrupt, Msg: "reader: metadata element missing"}
	}
	classes := meta[0].childrenNamed("class")
	c.Types = make(map[jfr.TypeID]*jfr.Type, len(classes))
	for _, cl := range classes {
		id, err := strconv.ParseInt(cl.attrs["id"], 10, 64)
		if err != nil {
			return &types.Error{Kind: types.ErrKindCorrupt, Msg: "reader: class without numeric id", Err: err}
		}
		t := &jfr.Type{
			ID:         jfr.TypeID(id),
			Name:       cl.attrs["name"],
			Super:      cl.attrs["superType"],
			SimpleType: cl.attrs["simpleType"] == "true",
			Pooled:     cl.attrs["constantPool"] == "true",
		}
		c.Types[t.ID] = t
	}
	for _, cl := range classes {
		id, _ := strconv.ParseInt(cl.attrs["id"], 10, 64)
		t := c.Types[jfr.TypeID(id)]
		for _, f := range cl.childrenNamed("field") {
			ftID, err := strconv.ParseInt(f.attrs["class"], 10, 64)
			if err != nil {
				return &types.Error{Kind: types.ErrKindCorrupt, Msg: "reader: field without class id", Err: err}
			}
			ft, ok := c.Types[jfr.TypeID(ftID)]
			if !ok {
				return &types.Error{Kind: types.ErrKindCorrupt, Msg: fmt.Sprintf("reader: field %s.%s references unknown class %d", t.Name, f.attrs["name"], ftID)}
			}
			field := jfr.Field{
				Name:   f.attrs["name"],
				Type:   ft,
				Array:  f.attrs["dimension"] == "1",
				Pooled: f.attrs["constantPool"] == "true",
			}
			for _, a := range f.childrenNamed("annotation") {
				if ann, ok := c.buildAnnotation(a); ok {
					field.Annotations = append(field.Annotations, ann)
				}
			}
			t.Fields = append(t.Fields, field)
		}
		for _, a := range cl.childrenNamed("annotation") {
			if ann, ok := c.buildAnnotation(a); ok {
				t.Annotations = append(t.Annotations, ann)
			}
		}
	}
	return nil
}

func (c *Chunk) buildAnnotation(el element) (jfr.Annotation, bool) {
	id, err := strconv.ParseInt(el.attrs["class"], 10, 64)
	if err != nil {
		return jfr.Annotation{}, false
	}
	at, ok := c.Types[jfr.TypeID(id)]
	if !ok {
		return jfr.Annotation{}, false
	}
	ann := jfr.Annotation{Type: at, Values: map[string]jfr.Value{}}
	// Collect flattened array members ("value-0", "value-1") back into arrays.
	arrays := map[string][]string{}
	var arrayKeys []string
	for k, v := range el.attrs {
		if k == "class" {
			continue
		}
		if base, idx, ok := splitArrayAttr(k); ok {
			for len(arrays[base]) <= idx {
				arrays[base] = append(arrays[base], "")
			}
			arrays[base][idx] = v
			continue
		}
		ann.Values[k] = annotationValue(at, k, v)
	}
	for base := range arrays {
		arrayKeys = append(arrayKeys, base)
	}
	sort.Strings(arrayKeys)
	for _, base := range arrayKeys {
		elems := arrays[base]
		vals := make([]jfr.Value, len(elems))
		for i, s := range elems {
			vals[i] = jfr.String(s)
		}
		ann.Values[base] = jfr.ArrayOf(vals)
	}
	return ann, true
}

// annotationValue re-types a metadata attribute string according to the
// annotation type's descriptor, defaulting to string.
func annotationValue(at *jfr.Type, name, raw string) jfr.Value {
	i := at.FieldIndex(name)
	if i < 0 {
		return jfr.String(raw)
	}
	switch at.Fields[i].Type.Name {
	case "boolean":
		return jfr.Bool(raw == "true")
	case "byte", "short", "int", "long":
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			k, _ := jfr.PrimitiveKind(at.Fields[i].Type.Name)
			return jfr.Integral(k, n)
		}
	case "float", "double":
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			k, _ := jfr.PrimitiveKind(at.Fields[i].Type.Name)
			return jfr.Floating(k, f)
		}
	}
	return jfr.String(raw)
}

func splitArrayAttr(k string) (base string, idx int, ok bool) {
	dash := strings.LastIndexByte(k, '-')
	if dash <= 0 || dash == len(k)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(k[dash+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return k[:dash], n, true
}
