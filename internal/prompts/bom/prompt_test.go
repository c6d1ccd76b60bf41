package bom

import (
	"errors"
	"strings"
	"testing"

	"github.com/devanand13/bomx/internal/bomschema"
)

func TestBuildUserPrompt(t *testing.T) {
	d, err := bomschema.Get("engineering")
	if err != nil {
		t.Fatal(err)
	}

	doc := "--- Page 1 ---\nITEM QTY PART\n1 4 RES-0603"
	prompt, err := BuildUserPrompt(doc, d, 0)
	if err != nil {
		t.Fatalf("BuildUserPrompt failed: %v", err)
	}

	for _, want := range []string{
		"Extract ALL BOM (Bill of Materials) line items",
		"CRITICAL INSTRUCTIONS:",
		"Extract EVERY line item",
		"use null",
		`"bom_type": "engineering"`,
		"reference_designator",
		"Reference designator (REF column, e.g., 'C1, C2', 'U1')",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if !strings.HasSuffix(prompt, doc) {
		t.Error("document text should be the last element of the prompt")
	}
}

func TestBuildUserPromptDeterministic(t *testing.T) {
	d, err := bomschema.Get("simple")
	if err != nil {
		t.Fatal(err)
	}
	a, err := BuildUserPrompt("same text", d, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := BuildUserPrompt("same text", d, 0)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("identical inputs must produce byte-identical prompts")
	}
}

func TestBuildUserPromptTooLarge(t *testing.T) {
	d, err := bomschema.Get("simple")
	if err != nil {
		t.Fatal(err)
	}

	huge := strings.Repeat("x", 5000)
	_, err = BuildUserPrompt(huge, d, 4000)
	if !errors.Is(err, ErrDocumentTooLarge) {
		t.Fatalf("expected ErrDocumentTooLarge, got %v", err)
	}
}

func TestResponseSchema(t *testing.T) {
	d, err := bomschema.Get("simple")
	if err != nil {
		t.Fatal(err)
	}

	wrapper := ResponseSchema(d)
	if wrapper["type"] != "json_schema" {
		t.Fatalf("expected type json_schema, got %v", wrapper["type"])
	}

	inner, ok := wrapper["json_schema"].(map[string]any)
	if !ok {
		t.Fatal("json_schema wrapper missing")
	}
	if inner["name"] != "bom_extraction" {
		t.Errorf("expected name bom_extraction, got %v", inner["name"])
	}
	if inner["strict"] != true {
		t.Error("schema should be strict")
	}

	schema := inner["schema"].(map[string]any)
	props := schema["properties"].(map[string]any)
	for _, key := range []string{"document_title", "bom_type", "total_items", "items"} {
		if _, ok := props[key]; !ok {
			t.Errorf("top-level property %q missing", key)
		}
	}

	items := props["items"].(map[string]any)["items"].(map[string]any)
	itemProps := items["properties"].(map[string]any)
	for _, f := range d.Fields {
		if _, ok := itemProps[f.Name]; !ok {
			t.Errorf("item property %q missing", f.Name)
		}
	}
	if items["additionalProperties"] != false {
		t.Error("item objects should forbid additional properties")
	}
	if len(items["required"].([]string)) != len(d.Fields) {
		t.Error("every item field should be required (nullable, not omittable)")
	}
}
