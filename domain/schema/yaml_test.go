package schema_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/bodygraph/gatesdb/domain/schema"
)

func TestDecodeYAML(t *testing.T) {
	doc := `
name: Self-Expression
description: The role of the self
lines:
  1: Empathy
  "2": Mastery
crosses:
  - right_angle_cross_of_the_sphinx
across: 7
subCircuit: logic
`
	gate, err := schema.DecodeYAML[schema.Gate]([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeYAML error: %v", err)
	}
	if gate.Lines["1"] != "Empathy" || gate.Lines["2"] != "Mastery" {
		t.Errorf("Lines = %v", gate.Lines)
	}
	if v, _ := gate.Across.Get(); v != 7 {
		t.Errorf("Across = %d, want 7", v)
	}
	if v, _ := gate.SubCircuit.Get(); v != "logic" {
		t.Errorf("SubCircuit = %q, want logic", v)
	}
	if gate.Center.IsSet() {
		t.Error("Center is set, want absent")
	}
}

func TestDecodeYAML_MissingField(t *testing.T) {
	_, err := schema.DecodeYAML[schema.Center]([]byte("name: Root\nnormal: n\n"))
	if !errors.Is(err, schema.ErrStructuralMismatch) {
		t.Fatalf("error = %v, want ErrStructuralMismatch", err)
	}
}

func TestDecodeYAML_Malformed(t *testing.T) {
	_, err := schema.DecodeYAML[schema.Center]([]byte("name: [unclosed\n"))
	if !errors.Is(err, schema.ErrStructuralMismatch) {
		t.Fatalf("error = %v, want ErrStructuralMismatch", err)
	}
}

func TestEncodeYAML_RoundTrip(t *testing.T) {
	db := fullDatabase()

	data, err := schema.EncodeYAML(db)
	if err != nil {
		t.Fatalf("EncodeYAML error: %v", err)
	}
	if !strings.Contains(string(data), "subCircuit: logic") {
		t.Errorf("YAML missing subCircuit key:\n%s", data)
	}
	if strings.Contains(string(data), "fear: null") {
		t.Errorf("YAML contains absent optional:\n%s", data)
	}

	got, err := schema.DecodeYAML[schema.GatesDatabase](data)
	if err != nil {
		t.Fatalf("DecodeYAML error: %v", err)
	}
	if !reflect.DeepEqual(got, db) {
		t.Errorf("YAML round trip mismatch\ngot:  %#v\nwant: %#v", got, db)
	}
}
