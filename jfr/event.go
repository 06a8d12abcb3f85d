package jfr

// Object is a structured value: a type plus one value per declared field,
// parallel to Type.Fields.
type Object struct {
	Type   *Type
	Values []Value
}

// Value returns the named field's value.
func (o *Object) Value(name string) (Value, bool) {
	if o == nil || o.Type == nil {
		return Null, false
	}
	i := o.Type.FieldIndex(name)
	if i < 0 || i >= len(o.Values) {
		return Null, false
	}
	return o.Values[i], true
}

// SetValue overwrites the named field's value. It reports whether the field
// exists.
func (o *Object) SetValue(name string, v Value) bool {
	if o == nil || o.Type == nil {
		return false
	}
	i := o.Type.FieldIndex(name)
	if i < 0 || i >= len(o.Values) {
		return false
	}
	o.Values[i] = v
	return true
}

// String returns the named field as a string, empty when absent or non-string.
func (o *Object) String(name string) string {
	v, ok := o.Value(name)
	if !ok || v.Kind != KindString {
		return ""
	}
	return v.S
}

// Event is one recorded event: its type descriptor and payload.
type Event struct {
	Type       *Type
	Payload    *Object
	StartTicks int64
	StartNanos int64 // resolved against the owning chunk header
}

// Value returns the named payload field.
func (e *Event) Value(name string) (Value, bool) {
	if e == nil {
		return Null, false
	}
	return e.Payload.Value(name)
}

// Thread returns the eventThread object, nil when absent.
func (e *Event) Thread() *Object {
	v, ok := e.Value("eventThread")
	if !ok || v.Kind != KindObject {
		return nil
	}
	return v.Obj
}

// SampledThread returns the sampledThread object, nil when absent.
func (e *Event) SampledThread() *Object {
	v, ok := e.Value("sampledThread")
	if !ok || v.Kind != KindObject {
		return nil
	}
	return v.Obj
}

// ThreadName resolves a thread object's display name: the Java name when
// present, otherwise the OS name.
func ThreadName(thread *Object) string {
	if thread == nil {
		return ""
	}
	if n := thread.String("javaName"); n != "" {
		return n
	}
	return thread.String("osName")
}

// Categories returns the event type's categories.
func (e *Event) Categories() []string {
	if e == nil || e.Type == nil {
		return nil
	}
	return e.Type.Categories()
}
