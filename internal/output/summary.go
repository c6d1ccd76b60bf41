package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/devanand13/bomx/internal/bomschema"
	"github.com/devanand13/bomx/internal/extract"
)

// summaryRows caps how many items the console preview shows.
const summaryRows = 10

// Summary renders a console report: document metadata, warnings, and the
// first rows of the extracted table.
func Summary(w io.Writer, res *extract.Result, d *bomschema.Descriptor) {
	title := "Unknown"
	if res.DocumentTitle != nil && *res.DocumentTitle != "" {
		title = *res.DocumentTitle
	}

	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Document:    %s\n", title)
	fmt.Fprintf(w, "BOM Type:    %s\n", res.BOMType)
	fmt.Fprintf(w, "Total Items: %d\n", res.TotalItems)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintln(w)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	cols := columns(res, d)
	fmt.Fprintln(tw, strings.Join(cols, "\t"))

	shown := res.Items
	if len(shown) > summaryRows {
		shown = shown[:summaryRows]
	}
	row := make([]string, len(cols))
	for _, item := range shown {
		for i, col := range cols {
			row[i] = cell(item[col])
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()

	if len(res.Items) > summaryRows {
		fmt.Fprintf(w, "... (%d total items)\n", len(res.Items))
	}
}
