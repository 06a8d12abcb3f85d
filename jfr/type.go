package jfr

// TypeID identifies a type within one chunk's dictionary.
type TypeID int64

// Well-known annotation and type names used for event semantics.
const (
	AnnotationCategory   = "jdk.jfr.Category"
	AnnotationLabel      = "jdk.jfr.Label"
	AnnotationStackTrace = "jdk.jfr.StackTrace"

	TypeString     = "java.lang.String"
	TypeThread     = "java.lang.Thread"
	TypeStackTrace = "jdk.types.StackTrace"
	TypeStackFrame = "jdk.types.StackFrame"
)

// primitiveNames is the closed set of JFR primitive type names. Everything
// else is a complex (structured) type.
var primitiveNames = map[string]Kind{
	"boolean":        KindBool,
	"byte":           KindByte,
	"short":          KindShort,
	"char":           KindChar,
	"int":            KindInt,
	"long":           KindLong,
	"float":          KindFloat,
	"double":         KindDouble,
	"java.lang.String": KindString,
}

// PrimitiveKind maps a primitive type name to its value kind.
func PrimitiveKind(name string) (Kind, bool) {
	k, ok := primitiveNames[name]
	return k, ok
}

// Type describes one entry of a chunk's self-describing dictionary: an event
// type, a structured value type, an annotation type or a primitive.
type Type struct {
	ID          TypeID
	Name        string
	Super       string
	SimpleType  bool
	Pooled      bool // values of this type are deduplicated via the constant pool
	Fields      []Field
	Annotations []Annotation
}

// Field is one declared field of a Type.
type Field struct {
	Name        string
	Type        *Type
	Array       bool // dimension == 1
	Pooled      bool // value is stored as a constant-pool reference
	Annotations []Annotation
}

// Annotation is an annotation instance attached to a type or field. Its
// type's fields act as the value descriptors; Values is keyed by descriptor
// name and omits null entries.
type Annotation struct {
	Type   *Type
	Values map[string]Value
}

// IsPrimitive reports whether t is one of the built-in scalar types.
func (t *Type) IsPrimitive() bool {
	_, ok := primitiveNames[t.Name]
	return ok
}

// IsEvent reports whether t describes an event (by supertype).
func (t *Type) IsEvent() bool {
	return t.Super == "jdk.jfr.Event" || t.Super == "java.lang.Event" || t.Super == "jdk.Event"
}

// FieldIndex returns the position of the named field, or -1.
func (t *Type) FieldIndex(name string) int {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

// HasField reports whether the named field is declared.
func (t *Type) HasField(name string) bool { return t.FieldIndex(name) >= 0 }

// Annotation returns the first annotation of the given type name.
func (t *Type) Annotation(name string) (*Annotation, bool) {
	for i := range t.Annotations {
		if t.Annotations[i].Type != nil && t.Annotations[i].Type.Name == name {
			return &t.Annotations[i], true
		}
	}
	return nil, false
}

// Categories returns the event categories from the jdk.jfr.Category
// annotation, outermost first. Empty when unannotated.
func (t *Type) Categories() []string {
	ann, ok := t.Annotation(AnnotationCategory)
	if !ok {
		return nil
	}
	v, ok := ann.Values["value"]
	if !ok {
		return nil
	}
	switch v.Kind {
	case KindString:
		return []string{v.S}
	case KindArray:
		out := make([]string, 0, len(v.Elems))
		for _, e := range v.Elems {
			if e.Kind == KindString {
				out = append(out, e.S)
			}
		}
		return out
	}
	return nil
}

// Label returns the human-readable label annotation, falling back to Name.
func (t *Type) Label() string {
	if ann, ok := t.Annotation(AnnotationLabel); ok {
		if v, ok := ann.Values["value"]; ok && v.Kind == KindString {
			return v.S
		}
	}
	return t.Name
}

// HasStackTrace reports whether the type carries a stack-trace annotation
// set to true.
func (t *Type) HasStackTrace() bool {
	ann, ok := t.Annotation(AnnotationStackTrace)
	if !ok {
		return false
	}
	v, ok := ann.Values["value"]
	if !ok {
		// Marker form counts as enabled.
		return true
	}
	return v.AsBool()
}
