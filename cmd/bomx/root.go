package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/devanand13/bomx/version"
)

var (
	cfgFile  string
	logLevel string

	flagProvider string
	flagModel    string
	flagBOMType  string
	flagOutDir   string
)

var rootCmd = &cobra.Command{
	Use:   "bomx",
	Short: "Extract structured Bill-of-Materials data from PDFs with an LLM",
	Long: `bomx renders the text layer of PDF documents and delegates
interpretation to an LLM under a fixed extraction schema, producing
validated line items as CSV, JSON, and XLSX.

Two BOM schemas ship by default:
  - engineering: part numbers, reference designators, packages
  - simple: cost-oriented rows with quantity, unit price, and total`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.bomx/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn, error",
	)
	rootCmd.PersistentFlags().StringVar(
		&flagProvider, "provider", "", "LLM provider name (default from config)",
	)
	rootCmd.PersistentFlags().StringVar(
		&flagModel, "model", "", "model identifier (default from config)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagBOMType, "type", "t", "", "BOM kind (default from config)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagOutDir, "out", "o", "", "output directory (default: alongside input)",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogging(logLevel)
	}

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(schemasCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
