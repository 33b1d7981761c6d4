package schema

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// Optional holds a value that is either present or absent.
// The zero Optional is absent. An absent Optional is distinct from a present
// zero value: Some("") is present.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the value is present.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// OrElse returns the value if present, otherwise def.
func (o Optional[T]) OrElse(def T) T {
	if o.set {
		return o.value
	}
	return def
}

// IsZero reports whether the value is absent. encoding/json uses it for
// omitzero.
func (o Optional[T]) IsZero() bool {
	return !o.set
}

// MarshalJSON encodes the value, or null when absent. A present nil map or
// slice encodes as {} or [] so that it stays present after decoding.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(fillEmpty(reflect.ValueOf(&o.value).Elem()).Interface())
}

// UnmarshalJSON decodes a present value; null decodes to absent.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

func (o Optional[T]) elemType() reflect.Type {
	return reflect.TypeFor[T]()
}

// optional is implemented by every Optional instantiation.
type optional interface {
	elemType() reflect.Type
}

var optionalIface = reflect.TypeFor[optional]()
