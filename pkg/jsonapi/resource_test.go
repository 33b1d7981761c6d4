package jsonapi

import "testing"

func TestResourceBuilder(t *testing.T) {
	r := NewResource("gates", "1").
		Attr("name", "Self-Expression").
		Attrs(map[string]any{"id": "ignored", "type": "ignored", "center": "g"}).
		Meta("locale", "ru").
		Link("/v1/ru/gates/1").
		Build()

	if r.Type != "gates" || r.ID != "1" {
		t.Errorf("Resource = %s/%s, want gates/1", r.Type, r.ID)
	}
	if r.Attributes["name"] != "Self-Expression" {
		t.Errorf("name = %v", r.Attributes["name"])
	}
	if r.Attributes["center"] != "g" {
		t.Errorf("center = %v", r.Attributes["center"])
	}
	if _, ok := r.Attributes["id"]; ok {
		t.Error("Attrs copied reserved key id")
	}
	if r.Meta["locale"] != "ru" {
		t.Errorf("Meta[locale] = %v", r.Meta["locale"])
	}
	if r.Links == nil || r.Links.Self != "/v1/ru/gates/1" {
		t.Errorf("Links = %+v", r.Links)
	}
}

func TestAttributesOf(t *testing.T) {
	type center struct {
		Name      string `json:"name"`
		Distorted string `json:"distorted,omitempty"`
	}

	attrs, err := AttributesOf(center{Name: "Root"})
	if err != nil {
		t.Fatalf("AttributesOf error: %v", err)
	}
	if attrs["name"] != "Root" {
		t.Errorf("name = %v, want Root", attrs["name"])
	}
	if _, ok := attrs["distorted"]; ok {
		t.Error("omitted field present")
	}

	if _, err := AttributesOf([]string{"a"}); err == nil {
		t.Error("AttributesOf(slice) succeeded, want error")
	}
}
