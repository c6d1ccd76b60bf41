package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/devanand13/bomx/internal/extract"
)

// WriteJSON writes the full result (title, type, count, items) indented.
func WriteJSON(res *extract.Result, path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
