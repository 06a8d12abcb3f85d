package writer

import (
	"fmt"

	"github.com/parttimenerd/jfr-redact-sub000/jfr"
	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
)

// Type is an entry of the output dictionary. Its field layout is mutable
// until sealed; sealing happens automatically when the first value of the
// type is serialized.
type Type struct {
	ID          int64
	Name        string
	Super       string
	SimpleType  bool
	Pooled      bool
	Fields      []Field
	Annotations []Annotation

	sealed bool
}

// Field is one declared field of an output type.
type Field struct {
	Name        string
	Type        *Type
	Array       bool
	Pooled      bool
	Annotations []Annotation
}

// Annotation is an annotation instance to be emitted with a type or field.
// Values are keyed by the descriptor name; null values must be omitted.
type Annotation struct {
	Type   *Type
	Values map[string]jfr.Value
}

// IsPrimitive reports whether the type is one of the built-in scalars.
func (t *Type) IsPrimitive() bool {
	_, ok := jfr.PrimitiveKind(t.Name)
	return ok
}

// HasField reports whether the named field is declared.
func (t *Type) HasField(name string) bool { return t.FieldIndex(name) >= 0 }

// FieldIndex returns the position of the named field, or -1.
func (t *Type) FieldIndex(name string) int {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

// AddField appends a field. Adding to a sealed type is an error.
func (t *Type) AddField(f Field) error {
	if t.sealed {
		return types.ErrSealed
	}
	if f.Type == nil {
		return &types.Error{Kind: types.ErrKindState, Msg: fmt.Sprintf("writer: field %s.%s has no type", t.Name, f.Name)}
	}
	t.Fields = append(t.Fields, f)
	return nil
}

// AddAnnotation appends an annotation instance to the type.
func (t *Type) AddAnnotation(a Annotation) {
	t.Annotations = append(t.Annotations, a)
}

// Seal freezes the field layout.
func (t *Type) Seal() { t.sealed = true }

// Sealed reports whether the layout is frozen.
func (t *Type) Sealed() bool { return t.sealed }
