// Package output serializes extraction results to CSV, JSON, and XLSX and
// renders a console summary. Column order always follows the schema's
// field order; normalization guarantees every item carries every field.
package output

import (
	"fmt"
	"strconv"

	"github.com/devanand13/bomx/internal/bomschema"
	"github.com/devanand13/bomx/internal/extract"
)

// cell renders a single item value. Explicit nulls become empty cells.
func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// columns resolves the column set for a result: the schema's ordered field
// names (the union of fields across items, since items are uniform).
func columns(res *extract.Result, d *bomschema.Descriptor) []string {
	return d.FieldNames()
}
