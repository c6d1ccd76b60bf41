package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devanand13/bomx/internal/bomschema"
)

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "List registered BOM schemas and their fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, kind := range bomschema.Kinds() {
			d, err := bomschema.Get(kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t(%d fields)\n", kind, len(d.Fields))
			for _, f := range d.Fields {
				fmt.Fprintf(tw, "  %s\t%s\n", f.Name, f.Description)
			}
			fmt.Fprintln(tw, strings.Repeat("-", 8))
		}
		return tw.Flush()
	},
}
