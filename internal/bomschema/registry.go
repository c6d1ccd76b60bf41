// Package bomschema defines the BOM field schemas that drive extraction.
package bomschema

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownKind is returned when a BOM kind has not been registered.
var ErrUnknownKind = errors.New("unknown BOM kind")

// Field is a single column of a BOM schema. The description is shown to the
// model verbatim, so it should read like a column legend.
type Field struct {
	Name        string
	Description string
}

// Descriptor describes one BOM kind: an ordered field set.
// Descriptors are immutable once registered; callers get defensive copies.
type Descriptor struct {
	Kind   string
	Fields []Field
}

// FieldNames returns field names in declaration order.
func (d *Descriptor) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// HasField reports whether the descriptor declares the named field.
func (d *Descriptor) HasField(name string) bool {
	for _, f := range d.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// HasCostFields reports whether the descriptor carries the quantity,
// unit_price and total columns needed for arithmetic cross-checks.
func (d *Descriptor) HasCostFields() bool {
	return d.HasField("quantity") && d.HasField("unit_price") && d.HasField("total")
}

func (d *Descriptor) clone() *Descriptor {
	fields := make([]Field, len(d.Fields))
	copy(fields, d.Fields)
	return &Descriptor{Kind: d.Kind, Fields: fields}
}

var (
	mu       sync.RWMutex
	registry = map[string]*Descriptor{}
)

func init() {
	// The two kinds that ship by default. Field order matches the column
	// order of the documents these were tuned on.
	mustRegister(Descriptor{
		Kind: "engineering",
		Fields: []Field{
			{Name: "item_number", Description: "Line item number (e.g., '1', '2')"},
			{Name: "quantity", Description: "Quantity needed"},
			{Name: "substitution_code", Description: "Substitution code (S column, e.g., 6, 10)"},
			{Name: "manufacturer", Description: "Manufacturer name"},
			{Name: "part_number", Description: "Manufacturer part number"},
			{Name: "description", Description: "Component description"},
			{Name: "reference_designator", Description: "Reference designator (REF column, e.g., 'C1, C2', 'U1')"},
			{Name: "package", Description: "Package type if specified (e.g., '0603', 'SOIC8')"},
		},
	})
	mustRegister(Descriptor{
		Kind: "simple",
		Fields: []Field{
			{Name: "category", Description: "Category (e.g., STRUCTURE, ELECTRONICS, OTHER)"},
			{Name: "where", Description: "Source/location"},
			{Name: "item", Description: "Item description"},
			{Name: "quantity", Description: "Quantity"},
			{Name: "unit_price", Description: "Unit price"},
			{Name: "total", Description: "Total cost"},
		},
	})
}

// Register adds a new BOM kind. Registering an empty kind, an empty field
// set, or a kind that already exists is an error.
func Register(d Descriptor) error {
	if d.Kind == "" {
		return fmt.Errorf("descriptor kind is required")
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("descriptor %q has no fields", d.Kind)
	}
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[d.Kind]; exists {
		return fmt.Errorf("descriptor %q already registered", d.Kind)
	}
	registry[d.Kind] = d.clone()
	return nil
}

func mustRegister(d Descriptor) {
	if err := Register(d); err != nil {
		panic(err)
	}
}

// Get returns the descriptor for a BOM kind.
func Get(kind string) (*Descriptor, error) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return d.clone(), nil
}

// Kinds returns all registered kind names, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
