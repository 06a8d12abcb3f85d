package transcode

import "github.com/parttimenerd/jfr-redact-sub000/jfr"

// Transformation is copy-based: pooled objects are shared between events,
// and rewriting them in place would feed already-redacted text back through
// the engine on the next event. The cache keeps one transformed copy per
// source object, which also preserves sharing so the writer's constant-pool
// interning sees identical entries.

func (t *Transcoder) resetTransformCache() {
	t.transformed = make(map[*jfr.Object]*jfr.Object)
}

// transformObject applies the redaction engine to every scalar reachable
// from obj and returns the rewritten copy.
func (t *Transcoder) transformObject(obj *jfr.Object) *jfr.Object {
	if obj == nil {
		return nil
	}
	if t.engine.IsNone() {
		return obj
	}
	if out, ok := t.transformed[obj]; ok {
		return out
	}
	out := &jfr.Object{Type: obj.Type, Values: make([]jfr.Value, len(obj.Values))}
	// Publish before descending in case a cyclic object graph sneaks in.
	t.transformed[obj] = out
	for i := range obj.Values {
		name := ""
		if i < len(obj.Type.Fields) {
			name = obj.Type.Fields[i].Name
		}
		out.Values[i] = t.transformValue(name, obj.Values[i])
	}
	return out
}

func (t *Transcoder) transformValue(field string, v jfr.Value) jfr.Value {
	switch v.Kind {
	case jfr.KindObject:
		return jfr.ObjectOf(t.transformObject(v.Obj))
	case jfr.KindArray:
		elems := make([]jfr.Value, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = t.transformValue(field, e)
		}
		return jfr.ArrayOf(elems)
	default:
		return t.engine.RedactValue(field, v)
	}
}
