// Package bom builds the instruction payload for BOM extraction.
package bom

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/devanand13/bomx/internal/bomschema"
)

// ErrDocumentTooLarge is returned when the document text would exceed the
// model's input budget. The text is never truncated or summarized.
var ErrDocumentTooLarge = errors.New("document text exceeds model input budget")

// SystemPrompt establishes the extraction persona. Kept short on purpose:
// the rules live in the user prompt next to the schema they govern.
const SystemPrompt = "You are a precise BOM data extraction expert. Extract data exactly as it appears."

// DefaultMaxDocumentChars bounds the user prompt size. Roughly 100k tokens
// at 4 chars/token, leaving headroom below common 128k context windows.
const DefaultMaxDocumentChars = 400_000

// BuildUserPrompt composes the deterministic extraction instruction: the
// field legend, the fixed rules, the output-shape contract, and the full
// document text last. maxChars <= 0 applies DefaultMaxDocumentChars.
func BuildUserPrompt(documentText string, d *bomschema.Descriptor, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = DefaultMaxDocumentChars
	}

	legend := make(map[string]string, len(d.Fields))
	for _, f := range d.Fields {
		legend[f.Name] = f.Description
	}
	legendJSON, err := json.MarshalIndent(legend, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render field legend: %w", err)
	}

	var b strings.Builder
	b.WriteString("Extract ALL BOM (Bill of Materials) line items from this document.\n\n")
	b.WriteString("Document contains a BOM table with these expected fields:\n")
	b.Write(legendJSON)
	b.WriteString("\n\nCRITICAL INSTRUCTIONS:\n")
	b.WriteString("1. Extract EVERY line item - do not skip any rows\n")
	b.WriteString("2. Preserve exact values from the document\n")
	b.WriteString("3. If a field is empty or not present, use null\n")
	b.WriteString("4. Return ONLY valid JSON with no markdown formatting\n")
	b.WriteString("5. For engineering BOMs: Pay attention to substitution codes and reference designators\n")
	b.WriteString("6. For cost BOMs: Ensure calculations match (quantity × unit_price = total)\n")
	b.WriteString("\nReturn format:\n")
	fmt.Fprintf(&b, `{
  "document_title": "extracted title if present",
  "bom_type": "%s",
  "total_items": <count>,
  "items": [
    {"field1": "value1", "field2": "value2", ...},
    ...
  ]
}
`, d.Kind)
	b.WriteString("\nDocument text:\n")

	if b.Len()+len(documentText) > maxChars {
		return "", fmt.Errorf("%w: %d chars, limit %d", ErrDocumentTooLarge, len(documentText), maxChars)
	}
	b.WriteString(documentText)

	return b.String(), nil
}
