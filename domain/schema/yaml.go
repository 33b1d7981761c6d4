package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeYAML decodes a YAML document with the same rules as Decode. Keys
// and shapes are the JSON ones; unquoted numeric mapping keys are accepted
// and read as strings.
func DecodeYAML[T any](data []byte) (T, error) {
	var zero T

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return zero, &StructuralMismatch{Reason: "document is not well-formed YAML", Err: err}
	}

	bridged, err := json.Marshal(normalizeYAML(doc))
	if err != nil {
		return zero, &StructuralMismatch{Reason: err.Error(), Err: err}
	}
	return Decode[T](bridged)
}

// EncodeYAML encodes v as YAML using the JSON field names.
func EncodeYAML(v any) ([]byte, error) {
	data, err := Encode(v)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeYAML(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = normalizeYAML(e)
		}
		return m
	case []any:
		for i := range t {
			t[i] = normalizeYAML(t[i])
		}
		return t
	}
	return v
}
