package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/devanand13/bomx/internal/batch"
)

var (
	flagWorkers int
	flagRetries uint
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir-or-files...>",
	Short: "Extract BOM data from many PDFs concurrently",
	Long: `Processes every PDF argument (directories are scanned non-recursively)
with a bounded worker pool. A failed document is logged and skipped; the
rest of the batch continues. Transient backend failures are retried with
exponential backoff when --retries is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := collectPDFs(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no PDF files found in %s", strings.Join(args, ", "))
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		workers := flagWorkers
		if workers <= 0 {
			workers = a.cm.Get().Defaults.MaxWorkers
		}

		runner := &batch.Runner{
			Workers:    workers,
			Retries:    flagRetries,
			RetryDelay: 2 * time.Second,
			Process:    a.processFile,
			Logger:     a.logger,
		}

		start := time.Now()
		results := runner.Run(cmd.Context(), paths)
		failed := batch.Failed(results)

		fmt.Printf("\nProcessed %d documents in %s: %d succeeded, %d failed\n",
			len(results), time.Since(start).Round(time.Millisecond), len(results)-failed, failed)
		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&flagWorkers, "workers", 0, "concurrent workers (default from config)")
	batchCmd.Flags().UintVar(&flagRetries, "retries", 0, "retries per document for transient backend failures")
}

// collectPDFs expands directory arguments into their PDF entries. Files are
// taken as-is; anything else is rejected.
func collectPDFs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}
