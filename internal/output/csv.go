package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/devanand13/bomx/internal/bomschema"
	"github.com/devanand13/bomx/internal/extract"
)

// WriteCSV writes one row per item with a header row in schema field order.
func WriteCSV(res *extract.Result, d *bomschema.Descriptor, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	cols := columns(res, d)
	if err := w.Write(cols); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, len(cols))
	for _, item := range res.Items {
		for i, col := range cols {
			row[i] = cell(item[col])
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return f.Close()
}
