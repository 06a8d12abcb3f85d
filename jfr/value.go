package jfr

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the variants of Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindChar
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindByte:
		return "byte"
	case KindShort:
		return "short"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a tagged variant covering every scalar and composite a recorded
// field can hold. Exactly one payload field is meaningful per Kind:
// I for the integral kinds (and char and boolean), F for float/double,
// S for strings, Obj for structured values, Elems for arrays.
type Value struct {
	Kind  Kind
	I     int64
	F     float64
	S     string
	Obj   *Object
	Elems []Value
}

// Null is the absent value.
var Null = Value{Kind: KindNull}

// Bool wraps a boolean.
func Bool(b bool) Value {
	if b {
		return Value{Kind: KindBool, I: 1}
	}
	return Value{Kind: KindBool}
}

// Integral wraps an integer under the given integral kind.
func Integral(k Kind, v int64) Value { return Value{Kind: k, I: v} }

// Long wraps an int64.
func Long(v int64) Value { return Value{Kind: KindLong, I: v} }

// Int wraps an int32-ranged value.
func Int(v int64) Value { return Value{Kind: KindInt, I: v} }

// Floating wraps a float under the given floating kind.
func Floating(k Kind, v float64) Value { return Value{Kind: k, F: v} }

// String wraps a string.
func String(s string) Value { return Value{Kind: KindString, S: s} }

// ObjectOf wraps a structured value.
func ObjectOf(o *Object) Value {
	if o == nil {
		return Null
	}
	return Value{Kind: KindObject, Obj: o}
}

// ArrayOf wraps an element slice.
func ArrayOf(elems []Value) Value { return Value{Kind: KindArray, Elems: elems} }

// IsNull reports whether the value is absent. A nil object behind KindObject
// counts as null.
func (v Value) IsNull() bool {
	return v.Kind == KindNull || (v.Kind == KindObject && v.Obj == nil)
}

// AsBool interprets the value as a boolean.
func (v Value) AsBool() bool { return v.Kind == KindBool && v.I != 0 }

// IsIntegral reports whether the value carries an integer payload.
func (v Value) IsIntegral() bool {
	switch v.Kind {
	case KindByte, KindShort, KindInt, KindLong, KindChar:
		return true
	}
	return false
}

// Display renders the value for diagnostics and metadata attributes.
func (v Value) Display() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindBool:
		if v.I != 0 {
			return "true"
		}
		return "false"
	case KindByte, KindShort, KindInt, KindLong:
		return strconv.FormatInt(v.I, 10)
	case KindChar:
		return string(rune(v.I))
	case KindFloat, KindDouble:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case KindString:
		return v.S
	case KindObject:
		if v.Obj == nil {
			return ""
		}
		return fmt.Sprintf("<%s>", v.Obj.Type.Name)
	case KindArray:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(e.Display())
		}
		sb.WriteByte(']')
		return sb.String()
	default:
		return ""
	}
}

// Zero returns the null value for a field of type t: the identity element
// substituted when a source object lacks a declared field.
func Zero(t *Type, array bool) Value {
	if array {
		return ArrayOf(nil)
	}
	if t == nil {
		return Null
	}
	switch t.Name {
	case "boolean":
		return Bool(false)
	case "byte":
		return Integral(KindByte, 0)
	case "short":
		return Integral(KindShort, 0)
	case "char":
		return Integral(KindChar, 0)
	case "int":
		return Integral(KindInt, 0)
	case "long":
		return Integral(KindLong, 0)
	case "float":
		return Floating(KindFloat, 0)
	case "double":
		return Floating(KindDouble, 0)
	case "java.lang.String":
		return Null
	default:
		return Null
	}
}
