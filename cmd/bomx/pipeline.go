package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/devanand13/bomx/internal/bomschema"
	"github.com/devanand13/bomx/internal/config"
	"github.com/devanand13/bomx/internal/extract"
	"github.com/devanand13/bomx/internal/output"
	"github.com/devanand13/bomx/internal/providers"
)

// app wires configuration, the provider registry, and the extraction
// pipeline for one command invocation. The pipeline fields are guarded by
// mu: watch mode rebuilds them from the config hot-reload goroutine while
// the event loop is processing documents.
type app struct {
	cm     *config.Manager
	logger *slog.Logger

	mu        sync.RWMutex
	registry  *providers.Registry
	extractor *extract.Extractor
	provider  string
	bomType   string
	desc      *bomschema.Descriptor
}

// newApp loads config and builds the pipeline. Credential problems surface
// here, before any document is touched.
func newApp() (*app, error) {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &app{cm: cm, logger: slog.Default()}
	if err := a.configure(cm.Get()); err != nil {
		return nil, err
	}
	return a, nil
}

// configure resolves flags against cfg and rebuilds the provider registry
// and extractor. Called at startup and again on every config hot reload, so
// provider, credential, and extraction changes take effect without a
// restart. Flags still win over config.
func (a *app) configure(cfg *config.Config) error {
	provider := flagProvider
	if provider == "" {
		provider = cfg.Defaults.Provider
	}
	bomType := flagBOMType
	if bomType == "" {
		bomType = cfg.Defaults.BOMType
	}
	desc, err := bomschema.Get(bomType)
	if err != nil {
		return err
	}

	registry, err := providers.BuildRegistry(cfg.ToProviderRegistryConfig(), a.logger)
	if err != nil {
		return err
	}
	client, err := registry.Get(provider)
	if err != nil {
		return err
	}

	model := flagModel
	if model == "" {
		model = cfg.Providers[provider].Model
	}

	extractor := extract.New(client, registry.Limiter(provider), nil, extract.Options{
		Model:            model,
		MaxDocumentChars: cfg.Extraction.MaxDocumentChars,
		CheckArithmetic:  cfg.Extraction.CheckArithmetic,
		Timeout:          time.Duration(cfg.Providers[provider].TimeoutSeconds) * time.Second,
	}, a.logger)

	a.mu.Lock()
	a.registry = registry
	a.extractor = extractor
	a.provider = provider
	a.bomType = bomType
	a.desc = desc
	a.mu.Unlock()
	return nil
}

// pipeline returns the current extractor and schema under the read lock.
func (a *app) pipeline() (*extract.Extractor, *bomschema.Descriptor, string) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.extractor, a.desc, a.bomType
}

// processFile extracts one PDF and writes every configured output format.
// Output settings are read from the manager per call so reloads apply.
func (a *app) processFile(ctx context.Context, path string) error {
	extractor, desc, bomType := a.pipeline()
	res, err := extractor.ExtractFile(ctx, path, bomType)
	if err != nil {
		return err
	}

	cfg := a.cm.Get()
	outDir := flagOutDir
	if outDir == "" {
		outDir = cfg.Output.Dir
	}
	if outDir == "" {
		outDir = filepath.Dir(path)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "_bom"
	for _, format := range cfg.Output.Formats {
		target := filepath.Join(outDir, base+"."+format)
		switch format {
		case "csv":
			err = output.WriteCSV(res, desc, target)
		case "json":
			err = output.WriteJSON(res, target)
		case "xlsx":
			err = output.WriteXLSX(res, desc, target)
		default:
			a.logger.Warn("unknown output format, skipping", "format", format)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		a.logger.Info("wrote output", "path", target, "items", res.TotalItems)
	}

	output.Summary(os.Stdout, res, desc)
	return nil
}
