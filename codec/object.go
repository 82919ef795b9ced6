// Package codec implements the self-describing tagged object format consumed
// and produced by generated bindings. A composite value is an ordered map of
// named entries; a member of a tagged family carries a reserved ".tag" entry,
// conventionally first, holding the discriminant string.
package codec

import (
	"encoding/base64"
	"time"
)

// TagField is the reserved entry holding a tagged value's discriminant.
const TagField = ".tag"

// TimeFormat is the wire representation of timestamps.
const TimeFormat = time.RFC3339

// Object is an ordered map of named entries. Entry values are strings, bools,
// numbers, nested *Object values, []any lists or nil.
type Object struct {
	keys   []string
	values map[string]any
}

func NewObject() *Object {
	return &Object{
		values: make(map[string]any),
	}
}

// Keys returns the entry names in insertion order.
func (o *Object) Keys() []string {
	return o.keys
}

func (o *Object) Len() int {
	return len(o.keys)
}

// Has reports whether the named entry is present.
func (o *Object) Has(name string) bool {
	_, ok := o.values[name]
	return ok
}

func (o *Object) set(name string, v any) {
	if _, ok := o.values[name]; !ok {
		o.keys = append(o.keys, name)
	}
	o.values[name] = v
}

func (o *Object) get(name string) (any, error) {
	v, ok := o.values[name]
	if !ok {
		return nil, missingField(name)
	}

	return v, nil
}

func (o *Object) SetString(name string, v string)   { o.set(name, v) }
func (o *Object) SetBool(name string, v bool)       { o.set(name, v) }
func (o *Object) SetInt32(name string, v int32)     { o.set(name, v) }
func (o *Object) SetUInt32(name string, v uint32)   { o.set(name, v) }
func (o *Object) SetInt64(name string, v int64)     { o.set(name, v) }
func (o *Object) SetUInt64(name string, v uint64)   { o.set(name, v) }
func (o *Object) SetFloat32(name string, v float32) { o.set(name, v) }
func (o *Object) SetFloat64(name string, v float64) { o.set(name, v) }

// SetTime stores a timestamp as its wire string form.
func (o *Object) SetTime(name string, v time.Time) {
	o.set(name, v.UTC().Format(TimeFormat))
}

// SetBytes stores a binary value as a base64 string.
func (o *Object) SetBytes(name string, v []byte) {
	o.set(name, base64.StdEncoding.EncodeToString(v))
}

func (o *Object) SetObject(name string, v *Object) {
	o.set(name, v)
}

func (o *Object) SetObjectList(name string, v []*Object) {
	list := make([]any, 0, len(v))
	for _, obj := range v {
		list = append(list, obj)
	}
	o.set(name, list)
}

// SetList stores a list of scalar values.
func SetList[T any](o *Object, name string, vals []T) {
	list := make([]any, 0, len(vals))
	for _, v := range vals {
		list = append(list, normalize(v))
	}
	o.set(name, list)
}

func normalize(v any) any {
	switch v := v.(type) {
	case time.Time:
		return v.UTC().Format(TimeFormat)
	case []byte:
		return base64.StdEncoding.EncodeToString(v)
	}

	return v
}

// Tag returns the reserved discriminant entry.
func (o *Object) Tag() (string, error) {
	return o.String(TagField)
}

func (o *Object) String(name string) (string, error) {
	v, err := o.get(name)
	if err != nil {
		return "", err
	}

	return AsString(v)
}

func (o *Object) Bool(name string) (bool, error) {
	v, err := o.get(name)
	if err != nil {
		return false, err
	}

	return AsBool(v)
}

func (o *Object) Int32(name string) (int32, error) {
	v, err := o.get(name)
	if err != nil {
		return 0, err
	}

	return AsInt32(v)
}

func (o *Object) UInt32(name string) (uint32, error) {
	v, err := o.get(name)
	if err != nil {
		return 0, err
	}

	return AsUInt32(v)
}

func (o *Object) Int64(name string) (int64, error) {
	v, err := o.get(name)
	if err != nil {
		return 0, err
	}

	return AsInt64(v)
}

func (o *Object) UInt64(name string) (uint64, error) {
	v, err := o.get(name)
	if err != nil {
		return 0, err
	}

	return AsUInt64(v)
}

func (o *Object) Float32(name string) (float32, error) {
	v, err := o.get(name)
	if err != nil {
		return 0, err
	}

	return AsFloat32(v)
}

func (o *Object) Float64(name string) (float64, error) {
	v, err := o.get(name)
	if err != nil {
		return 0, err
	}

	return AsFloat64(v)
}

func (o *Object) Time(name string) (time.Time, error) {
	v, err := o.get(name)
	if err != nil {
		return time.Time{}, err
	}

	return AsTime(v)
}

func (o *Object) Bytes(name string) ([]byte, error) {
	v, err := o.get(name)
	if err != nil {
		return nil, err
	}

	return AsBytes(v)
}

func (o *Object) Object(name string) (*Object, error) {
	v, err := o.get(name)
	if err != nil {
		return nil, err
	}

	return AsObject(v)
}

func (o *Object) ObjectList(name string) ([]*Object, error) {
	return ListOf(o, name, AsObject)
}

// ListOf reads a list entry, converting each element with conv.
func ListOf[T any](o *Object, name string, conv func(any) (T, error)) ([]T, error) {
	v, err := o.get(name)
	if err != nil {
		return nil, err
	}

	list, ok := v.([]any)
	if !ok {
		return nil, InvalidState("field %q is not a list", name)
	}

	out := make([]T, 0, len(list))
	for i, el := range list {
		c, err := conv(el)
		if err != nil {
			return nil, InvalidState("element %d of field %q: %v", i, name, err)
		}
		out = append(out, c)
	}

	return out, nil
}
