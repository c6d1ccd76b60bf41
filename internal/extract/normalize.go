package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/devanand13/bomx/internal/bomschema"
)

// ErrMissingItemsField is returned when the reply has no items sequence.
// An empty result is indistinguishable from a parsing failure, so the
// absence of the key is never coerced into an empty success.
var ErrMissingItemsField = errors.New("reply missing items field")

// Item is one BOM row: schema field name to value. Fields absent from the
// source document hold an explicit nil, never a missing key.
type Item map[string]any

// Result is the validated extraction output.
type Result struct {
	DocumentTitle *string `json:"document_title"`
	BOMType       string  `json:"bom_type"`
	TotalItems    int     `json:"total_items"`
	Items         []Item  `json:"items"`

	// Warnings records non-fatal conditions (kind mismatch, count
	// mismatch, dropped keys). Not part of the serialized result.
	Warnings []string `json:"-"`
}

// NormalizeOptions tune the strictness of normalization.
type NormalizeOptions struct {
	// CheckArithmetic verifies quantity × unit_price = total per item when
	// the schema carries cost fields. Failures are warnings, never fatal.
	CheckArithmetic bool
}

// Normalize turns a decoded reply into a Result, enforcing the invariants
// the backend only promises best-effort: every item carries every schema
// field (explicit null when absent), total_items equals len(items), and a
// bom_type that disagrees with the requested kind is a recorded warning.
// Either the whole reply normalizes or an error is returned; no partial
// item sequence escapes.
func Normalize(raw json.RawMessage, d *bomschema.Descriptor, opts NormalizeOptions) (*Result, error) {
	var reply map[string]any
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("reply is not a JSON object: %w", err)
	}

	rawItems, ok := reply["items"]
	if !ok || rawItems == nil {
		return nil, fmt.Errorf("%w: bom_type %q", ErrMissingItemsField, d.Kind)
	}
	seq, ok := rawItems.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: items is not a sequence", ErrMissingItemsField)
	}

	res := &Result{
		BOMType: d.Kind,
		Items:   make([]Item, 0, len(seq)),
	}

	if title, ok := reply["document_title"]; ok && title != nil {
		switch t := title.(type) {
		case string:
			res.DocumentTitle = &t
		default:
			s := fmt.Sprintf("%v", t)
			res.DocumentTitle = &s
			res.Warnings = append(res.Warnings, fmt.Sprintf("document_title was not a string (%T)", t))
		}
	}

	if kind, ok := reply["bom_type"].(string); ok {
		res.BOMType = kind
	}
	if res.BOMType != d.Kind {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("bom_type mismatch: requested %q, reply reports %q", d.Kind, res.BOMType))
	}

	fields := d.FieldNames()
	for i, el := range seq {
		obj, ok := el.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is not an object", ErrMissingItemsField, i)
		}

		item := make(Item, len(fields))
		for _, name := range fields {
			if v, ok := obj[name]; ok {
				item[name] = v
			} else {
				item[name] = nil
			}
		}

		// Surface unexpected keys instead of dropping them silently.
		var extra []string
		for k := range obj {
			if !d.HasField(k) {
				extra = append(extra, k)
			}
		}
		if len(extra) > 0 {
			sort.Strings(extra)
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("item %d: dropped unexpected keys: %s", i, strings.Join(extra, ", ")))
		}

		res.Items = append(res.Items, item)
	}

	// The reported count is informational only; the sequence length wins.
	res.TotalItems = len(res.Items)
	if reported, ok := asInt(reply["total_items"]); ok && reported != res.TotalItems {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("total_items mismatch: reply claimed %d, found %d", reported, res.TotalItems))
	}

	if opts.CheckArithmetic && d.HasCostFields() {
		res.Warnings = append(res.Warnings, checkArithmetic(res.Items)...)
	}

	return res, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(n, "$"))
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// checkArithmetic cross-checks quantity × unit_price against total for
// items where all three values parse as numbers.
func checkArithmetic(items []Item) []string {
	var warnings []string
	for i, item := range items {
		qty, okQ := asFloat(item["quantity"])
		unit, okU := asFloat(item["unit_price"])
		total, okT := asFloat(item["total"])
		if !okQ || !okU || !okT {
			continue
		}
		if math.Abs(qty*unit-total) > 0.01 {
			warnings = append(warnings,
				fmt.Sprintf("item %d: quantity × unit_price = %.2f, total reads %.2f", i, qty*unit, total))
		}
	}
	return warnings
}
