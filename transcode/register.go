package transcode

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/parttimenerd/jfr-redact-sub000/internal/writer"
	"github.com/parttimenerd/jfr-redact-sub000/jfr"
	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
)

// registrar copies types from a source chunk's dictionary into the output
// dictionary, once each.
type registrar struct {
	cw     *writer.ChunkWriter
	lookup func(name string) (*jfr.Type, bool) // source dictionary by name
	log    *zap.Logger

	adding map[string]bool // names currently being registered (cycle stack)
}

func newRegistrar(cw *writer.ChunkWriter, lookup func(string) (*jfr.Type, bool), log *zap.Logger) *registrar {
	if log == nil {
		log = zap.NewNop()
	}
	return &registrar{cw: cw, lookup: lookup, log: log, adding: map[string]bool{}}
}

// registerEvent registers an event type, adding the implicit fields JFR
// consumers expect: startTime always, eventThread when the source
// dictionary defines java.lang.Thread, stackTrace when the type carries a
// stack-trace annotation set to true and the source defines
// jdk.types.StackTrace.
func (r *registrar) registerEvent(src *jfr.Type) (*writer.Type, error) {
	out, reused, err := r.register(src)
	if err != nil || reused {
		return out, err
	}
	if !out.HasField("startTime") {
		lng, _ := r.cw.Builtin("long")
		if err := out.AddField(writer.Field{Name: "startTime", Type: lng}); err != nil {
			return nil, err
		}
	}
	if !out.HasField("eventThread") {
		if threadSrc, ok := r.lookup(jfr.TypeThread); ok {
			tt, _, err := r.register(threadSrc)
			if err != nil {
				return nil, err
			}
			if err := out.AddField(writer.Field{Name: "eventThread", Type: tt, Pooled: heuristicPooled(jfr.TypeThread)}); err != nil {
				return nil, err
			}
		}
	}
	if src.HasStackTrace() && !out.HasField("stackTrace") {
		if stSrc, ok := r.lookup(jfr.TypeStackTrace); ok {
			st, _, err := r.register(stSrc)
			if err != nil {
				return nil, err
			}
			if err := out.AddField(writer.Field{Name: "stackTrace", Type: st, Pooled: heuristicPooled(jfr.TypeStackTrace)}); err != nil {
				return nil, err
			}
		}
	}
	out.Seal()
	return out, nil
}

// register copies one type. The second result reports reuse of an already
// registered name, which is legal only when every field the new descriptor
// declares is present in the registered layout.
func (r *registrar) register(src *jfr.Type) (*writer.Type, bool, error) {
	if src.IsPrimitive() {
		t, _ := r.cw.Builtin(src.Name)
		return t, true, nil
	}
	if existing, ok := r.cw.Lookup(src.Name); ok {
		for i := range src.Fields {
			if !existing.HasField(src.Fields[i].Name) {
				return nil, false, &types.Error{
					Kind: types.ErrKindCollision,
					Msg:  fmt.Sprintf("transcode: type %q re-registered with field %q missing from existing layout", src.Name, src.Fields[i].Name),
				}
			}
		}
		return existing, true, nil
	}
	out, err := r.cw.NewType(src.Name, src.Super, src.Pooled)
	if err != nil {
		return nil, false, err
	}
	out.SimpleType = src.SimpleType
	// Publish before recursing so cyclic field types resolve to this handle.
	r.adding[src.Name] = true
	defer delete(r.adding, src.Name)

	for i := range src.Fields {
		f := &src.Fields[i]
		var ft *writer.Type
		if r.adding[f.Type.Name] {
			handle, ok := r.cw.Lookup(f.Type.Name)
			if !ok {
				return nil, false, &types.Error{Kind: types.ErrKindState, Msg: fmt.Sprintf("transcode: in-progress type %q not published", f.Type.Name)}
			}
			ft = handle
		} else {
			ft, _, err = r.register(f.Type)
			if err != nil {
				return nil, false, err
			}
		}
		field := writer.Field{
			Name:        f.Name,
			Type:        ft,
			Array:       f.Array,
			Pooled:      f.Pooled,
			Annotations: r.cloneAnnotations(f.Annotations, src.Name+"."+f.Name),
		}
		if err := out.AddField(field); err != nil {
			return nil, false, err
		}
	}
	for _, ann := range r.cloneAnnotations(src.Annotations, src.Name) {
		out.AddAnnotation(ann)
	}
	return out, false, nil
}

// heuristicPooled decides pool placement for implicit fields whose source
// descriptor carries no explicit flag: stack frames stay inline, everything
// else pools.
func heuristicPooled(name string) bool {
	return name != jfr.TypeStackFrame
}

// cloneAnnotations copies annotation instances generically. Each
// annotation's type is registered recursively (meta-annotations included via
// normal registration of the annotation type), null values are dropped, and
// an annotation whose values cannot be represented is logged and skipped
// rather than failing the owning type.
func (r *registrar) cloneAnnotations(anns []jfr.Annotation, owner string) []writer.Annotation {
	out := make([]writer.Annotation, 0, len(anns))
	for _, a := range anns {
		if a.Type == nil {
			continue
		}
		var at *writer.Type
		if r.adding[a.Type.Name] {
			handle, ok := r.cw.Lookup(a.Type.Name)
			if !ok {
				continue
			}
			at = handle
		} else {
			t, _, err := r.register(a.Type)
			if err != nil {
				r.log.Debug("skipping annotation",
					zap.String("annotation", a.Type.Name),
					zap.String("owner", owner),
					zap.Error(err))
				continue
			}
			at = t
		}
		clone := writer.Annotation{Type: at, Values: map[string]jfr.Value{}}
		supported := true
		for name, v := range a.Values {
			if v.IsNull() {
				continue
			}
			switch v.Kind {
			case jfr.KindObject:
				// Structured annotation values are not representable in the
				// metadata attribute form.
				supported = false
			case jfr.KindArray, jfr.KindString, jfr.KindBool,
				jfr.KindByte, jfr.KindShort, jfr.KindInt, jfr.KindLong,
				jfr.KindChar, jfr.KindFloat, jfr.KindDouble:
				clone.Values[name] = v
			}
			if !supported {
				break
			}
		}
		if !supported {
			r.log.Debug("skipping annotation with unsupported value",
				zap.String("annotation", a.Type.Name),
				zap.String("owner", owner))
			continue
		}
		out = append(out, clone)
	}
	return out
}
