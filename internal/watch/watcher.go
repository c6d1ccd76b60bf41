// Package watch feeds newly arriving PDFs from an inbox directory into the
// extraction pipeline.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the write bursts that accompany file copies.
const DefaultDebounce = 2 * time.Second

// Handler processes one discovered PDF.
type Handler func(ctx context.Context, path string)

// Watcher watches a single directory (non-recursive) for PDFs.
type Watcher struct {
	dir      string
	debounce time.Duration
	handler  Handler
	logger   *slog.Logger
}

// New creates a watcher. debounce <= 0 applies DefaultDebounce.
func New(dir string, debounce time.Duration, handler Handler, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{dir: dir, debounce: debounce, handler: handler, logger: logger}
}

// Run blocks until the context is cancelled, invoking the handler for each
// PDF that settles in the watched directory. A file is considered settled
// once no new events arrive for the debounce window.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching for PDFs", "dir", w.dir)

	pending := make(map[string]*time.Timer)
	settled := make(chan string)

	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case path := <-settled:
			delete(pending, path)
			w.logger.Info("document arrived", "path", path)
			w.handler(ctx, path)

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".pdf") {
				continue
			}
			path := ev.Name
			if timer, ok := pending[path]; ok {
				timer.Reset(w.debounce)
				continue
			}
			pending[path] = time.AfterFunc(w.debounce, func() {
				select {
				case settled <- path:
				case <-ctx.Done():
				}
			})

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}
