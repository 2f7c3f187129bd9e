package pdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"slices"
	"strings"

	errorsmod "cosmossdk.io/errors"
)

// Kind enumerates the variants of Value
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = map[Kind]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a JSON value held in a record's content tree. The set of
// implementations is closed: Null, Bool, Number, String, Array, and *Object.
type Value interface {
	Kind() Kind
	json.Marshaler
	isValue()
}

type (
	// Null is the JSON null
	Null struct{}
	// Bool is a JSON boolean
	Bool bool
	// Number is a JSON number with double precision
	Number float64
	// String is a JSON string
	String string
	// Array is an ordered JSON array
	Array []Value
)

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (Array) Kind() Kind  { return KindArray }

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Number) isValue()  {}
func (String) isValue()  {}
func (Array) isValue()   {}
func (*Object) isValue() {}

func (v Null) MarshalJSON() ([]byte, error)   { return appendValue(nil, v, false), nil }
func (v Bool) MarshalJSON() ([]byte, error)   { return appendValue(nil, v, false), nil }
func (v Number) MarshalJSON() ([]byte, error) { return appendValue(nil, v, false), nil }
func (v String) MarshalJSON() ([]byte, error) { return appendValue(nil, v, false), nil }
func (v Array) MarshalJSON() ([]byte, error)  { return appendValue(nil, v, false), nil }

// Object is a JSON object that remembers key insertion order. Setting an
// existing key keeps its position. The zero value is an empty object.
type Object struct {
	keys   []string
	fields map[string]Value
}

// Field is a key/value pair used to build objects in order
type Field struct {
	Key   string
	Value Value
}

// F is shorthand for a Field
func F(key string, v Value) Field {
	return Field{Key: key, Value: v}
}

// NewObject builds an object from fields in the given order
func NewObject(fields ...Field) *Object {
	o := &Object{}
	for _, f := range fields {
		o.Set(f.Key, f.Value)
	}
	return o
}

// Kind implements Value
func (o *Object) Kind() Kind { return KindObject }

// Len returns the number of keys
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return slices.Clone(o.keys)
}

// Get returns the value stored at key
func (o *Object) Get(key string) (Value, bool) {
	if o == nil || o.fields == nil {
		return nil, false
	}
	v, ok := o.fields[key]
	return v, ok
}

// Has reports whether key is present
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores v at key. A nil v is stored as Null.
func (o *Object) Set(key string, v Value) {
	if v == nil {
		v = Null{}
	}
	if o.fields == nil {
		o.fields = make(map[string]Value)
	}
	if _, exists := o.fields[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
}

// Delete removes key
func (o *Object) Delete(key string) {
	if o == nil || o.fields == nil {
		return
	}
	if _, exists := o.fields[key]; !exists {
		return
	}
	delete(o.fields, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
}

// Clear removes every key
func (o *Object) Clear() {
	o.keys = nil
	o.fields = nil
}

// Range calls fn for each key in insertion order until fn returns false
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.fields[k]) {
			return
		}
	}
}

// Clone returns a deep copy
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	out := &Object{}
	o.Range(func(k string, v Value) bool {
		out.Set(k, Clone(v))
		return true
	})
	return out
}

// MarshalJSON writes the object in insertion order
func (o *Object) MarshalJSON() ([]byte, error) {
	return appendValue(nil, o, false), nil
}

// UnmarshalJSON parses a JSON object preserving key order
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := ParseJSON(data)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return errorsmod.Wrapf(ErrInvalidValue, "expected object, got %s", v.Kind())
	}
	*o = *obj
	return nil
}

// Clone returns a deep copy of v
func Clone(v Value) Value {
	switch t := v.(type) {
	case nil:
		return Null{}
	case Array:
		out := make(Array, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	case *Object:
		if t == nil {
			return Null{}
		}
		return t.Clone()
	default:
		return v
	}
}

// Equal reports whether a and b are deep-equal, ignoring object key order
func Equal(a, b Value) bool {
	return bytes.Equal(CanonicalJSON(a), CanonicalJSON(b))
}

// ParseJSON decodes a JSON document into a Value, preserving object key order.
// Duplicate keys keep their first position and their last value.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, errorsmod.Wrap(ErrInvalidValue, "unexpected data after JSON value")
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, errorsmod.Wrap(ErrInvalidValue, err.Error())
	}

	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, errorsmod.Wrapf(ErrInvalidValue, "number %s out of range", t.String())
		}
		return Number(f), nil
	case json.Delim:
		switch t {
		case '{':
			obj := &Object{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, errorsmod.Wrap(ErrInvalidValue, err.Error())
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, errorsmod.Wrap(ErrInvalidValue, "object key is not a string")
				}
				v, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, errorsmod.Wrap(ErrInvalidValue, err.Error())
			}
			return obj, nil
		case '[':
			arr := Array{}
			for dec.More() {
				v, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, errorsmod.Wrap(ErrInvalidValue, err.Error())
			}
			return arr, nil
		}
	}

	return nil, errorsmod.Wrapf(ErrInvalidValue, "unexpected token %v", tok)
}

// ValueOf converts plain Go data (as produced by encoding/json into any) into
// a Value. Map keys are inserted in sorted order.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return Clone(t), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, errorsmod.Wrapf(ErrInvalidValue, "number %s out of range", t.String())
		}
		return Number(f), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(t), nil
	case int:
		return Number(t), nil
	case int64:
		return Number(t), nil
	case int32:
		return Number(t), nil
	case uint:
		return Number(t), nil
	case uint64:
		return Number(t), nil
	case uint32:
		return Number(t), nil
	case []string:
		arr := make(Array, len(t))
		for i, s := range t {
			arr[i] = String(s)
		}
		return arr, nil
	case []any:
		arr := make(Array, len(t))
		for i, e := range t {
			v, err := ValueOf(e)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareUTF16)
		obj := &Object{}
		for _, k := range keys {
			v, err := ValueOf(t[k])
			if err != nil {
				return nil, err
			}
			obj.Set(k, v)
		}
		return obj, nil
	case map[string]string:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareUTF16)
		obj := &Object{}
		for _, k := range keys {
			obj.Set(k, String(t[k]))
		}
		return obj, nil
	}

	return nil, errorsmod.Wrapf(ErrInvalidValue, "unsupported Go type %s", reflect.TypeOf(x))
}

// IsNull reports whether v is absent or Null
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	if o, ok := v.(*Object); ok {
		return o == nil
	}
	return v.Kind() == KindNull
}

// AsString returns the string held by v
func AsString(v Value) (string, bool) {
	s, ok := v.(String)
	return string(s), ok
}

// isFinite reports whether a number can be written as a JSON number
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func describe(v Value) string {
	if v == nil {
		return "<nil>"
	}
	var sb strings.Builder
	sb.Write(appendValue(nil, v, false))
	return sb.String()
}
