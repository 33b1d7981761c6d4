package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Decode decodes a JSON document into a T.
//
// Every field that is not an Optional is required: a missing key, a null
// value or a value of the wrong shape yields a *StructuralMismatch and the
// zero T. Unknown keys are ignored.
func Decode[T any](data []byte) (T, error) {
	var zero T

	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return zero, &StructuralMismatch{Reason: "document is not well-formed JSON"}
	}
	if err := checkShape(data, reflect.TypeFor[T](), ""); err != nil {
		return zero, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, fromDecodeError(err)
	}
	return v, nil
}

// DecodeReader reads r to the end and decodes it with Decode.
func DecodeReader[T any](r io.Reader) (T, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("read document: %w", err)
	}
	return Decode[T](data)
}

// Encode encodes v as compact JSON. Absent optionals are omitted, nil maps
// and slices are written as {} and [], and map keys are sorted, so equal
// values encode to identical bytes that Decode accepts.
func Encode(v any) ([]byte, error) {
	return json.Marshal(withEmptyCollections(v))
}

// EncodeIndent is like Encode but indents nested values.
func EncodeIndent(v any, indent string) ([]byte, error) {
	return json.MarshalIndent(withEmptyCollections(v), "", indent)
}

func withEmptyCollections(v any) any {
	return fillEmpty(reflect.ValueOf(&v).Elem()).Interface()
}

// fillEmpty returns a copy of v in which every nil map or slice reachable
// through exported fields, elements and pointers is replaced by an empty one.
// Byte slices are left alone. Optional values are copied as they are; their
// MarshalJSON does the same.
func fillEmpty(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Map:
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), fillEmpty(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			out.Index(i).Set(fillEmpty(v.Index(i)))
		}
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := range v.NumField() {
			if v.Type().Field(i).IsExported() {
				out.Field(i).Set(fillEmpty(v.Field(i)))
			}
		}
		return out
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		p := reflect.New(v.Type().Elem())
		p.Elem().Set(fillEmpty(v.Elem()))
		return p
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		return fillEmpty(v.Elem())
	}
	return v
}

// checkShape walks raw alongside t and reports the first value that is
// missing, null or of the wrong kind.
func checkShape(raw []byte, t reflect.Type, path string) error {
	if t.Implements(optionalIface) {
		if isNull(raw) {
			return nil
		}
		elem := reflect.Zero(t).Interface().(optional).elemType()
		return checkShape(raw, elem, path)
	}

	if isNull(raw) {
		return mismatch(path, "expected %s, got null", describe(t))
	}

	switch t.Kind() {
	case reflect.Struct:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return mismatch(path, "expected object, got %s", jsonKind(raw))
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name, ok := jsonName(f)
			if !ok {
				continue
			}
			v, present := obj[name]
			if !present {
				if f.Type.Implements(optionalIface) {
					continue
				}
				return mismatch(pointer(path, name), "required field %q is missing", name)
			}
			if err := checkShape(v, f.Type, pointer(path, name)); err != nil {
				return err
			}
		}

	case reflect.Map:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return mismatch(path, "expected object, got %s", jsonKind(raw))
		}
		for _, k := range slices.Sorted(maps.Keys(obj)) {
			if err := checkShape(obj[k], t.Elem(), pointer(path, k)); err != nil {
				return err
			}
		}

	case reflect.Slice:
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return mismatch(path, "expected array, got %s", jsonKind(raw))
		}
		for i, v := range arr {
			if err := checkShape(v, t.Elem(), pointer(path, strconv.Itoa(i))); err != nil {
				return err
			}
		}

	case reflect.String:
		if jsonKind(raw) != "string" {
			return mismatch(path, "expected string, got %s", jsonKind(raw))
		}

	case reflect.Bool:
		if jsonKind(raw) != "boolean" {
			return mismatch(path, "expected boolean, got %s", jsonKind(raw))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(string(raw), 10, 64)
		if err != nil {
			return mismatch(path, "expected unsigned integer, got %s", literal(raw))
		}
		if reflect.New(t).Elem().OverflowUint(u) {
			return mismatch(path, "value %d overflows %s", u, t.Kind())
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return mismatch(path, "expected integer, got %s", literal(raw))
		}
		if reflect.New(t).Elem().OverflowInt(n) {
			return mismatch(path, "value %d overflows %s", n, t.Kind())
		}

	case reflect.Float32, reflect.Float64:
		if jsonKind(raw) != "number" {
			return mismatch(path, "expected number, got %s", jsonKind(raw))
		}
	}
	return nil
}

// fromDecodeError converts an encoding/json error into a StructuralMismatch.
func fromDecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		path := ""
		if typeErr.Field != "" {
			path = "/" + strings.ReplaceAll(typeErr.Field, ".", "/")
		}
		return &StructuralMismatch{
			Path:   path,
			Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			Err:    err,
		}
	}
	return &StructuralMismatch{Reason: err.Error(), Err: err}
}

func jsonName(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, true
}

// pointer appends an escaped RFC 6901 reference token to path.
func pointer(path, token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	token = strings.ReplaceAll(token, "/", "~1")
	return path + "/" + token
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func jsonKind(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "nothing"
	}
	switch raw[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	}
	return "number"
}

func literal(raw []byte) string {
	if k := jsonKind(raw); k != "number" {
		return k
	}
	return string(bytes.TrimSpace(raw))
}

func describe(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	}
	return "number"
}
