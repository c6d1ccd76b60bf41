package bom

import "github.com/devanand13/bomx/internal/bomschema"

// ResponseSchema builds the json_schema response format for a BOM kind.
// Used both as the backend's structured-output constraint and for local
// validation of the reply. Item fields are nullable strings: values must be
// preserved verbatim, and absent cells come back as explicit nulls.
func ResponseSchema(d *bomschema.Descriptor) map[string]any {
	itemProps := make(map[string]any, len(d.Fields))
	required := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		itemProps[f.Name] = map[string]any{
			"type":        []string{"string", "null"},
			"description": f.Description,
		}
		required = append(required, f.Name)
	}

	return map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   "bom_extraction",
			"strict": true,
			"schema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"document_title": map[string]any{
						"type":        []string{"string", "null"},
						"description": "Document title if present",
					},
					"bom_type": map[string]any{
						"type":        "string",
						"description": "The requested BOM kind, echoed back",
					},
					"total_items": map[string]any{
						"type":        "integer",
						"description": "Number of extracted line items",
					},
					"items": map[string]any{
						"type":        "array",
						"description": "All BOM line items in document order",
						"items": map[string]any{
							"type":                 "object",
							"properties":           itemProps,
							"required":             required,
							"additionalProperties": false,
						},
					},
				},
				"required":             []string{"bom_type", "total_items", "items"},
				"additionalProperties": false,
			},
		},
	}
}
