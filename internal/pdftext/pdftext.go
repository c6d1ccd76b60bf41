// Package pdftext renders the text layer of a PDF into a single blob with
// page boundaries marked. Scanned (image-only) PDFs are rejected; OCR is
// out of scope.
package pdftext

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrUnreadableDocument is returned when the path does not exist or the
// file cannot be parsed as a PDF with a usable text layer.
var ErrUnreadableDocument = errors.New("unreadable document")

// Document is the extracted text of one PDF.
type Document struct {
	Path  string
	Pages int
	Text  string // Page-marked text blob
}

// Provider extracts document text from PDF files.
type Provider struct {
	logger *slog.Logger
}

// NewProvider creates a text provider.
func NewProvider(logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{logger: logger}
}

// Extract reads the text layer of the PDF at path. Each page is preceded by
// a "--- Page N ---" marker so downstream prompts can refer to page
// locality.
func (p *Provider) Extract(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableDocument, path, err)
	}

	pageCount, err := pageCount(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableDocument, path, err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableDocument, path, err)
	}
	defer f.Close()

	var b strings.Builder
	fonts := make(map[string]*pdf.Font)
	nonEmpty := 0

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := page.Font(name)
				fonts[name] = &font
			}
		}

		text, err := page.GetPlainText(fonts)
		if err != nil {
			p.logger.Warn("failed to read page text", "path", path, "page", i, "error", err)
			continue
		}

		fmt.Fprintf(&b, "\n--- Page %d ---\n", i)
		b.WriteString(text)
		if strings.TrimSpace(text) != "" {
			nonEmpty++
		}
	}

	if nonEmpty == 0 {
		return nil, fmt.Errorf("%w: %s: no text layer (scanned PDF?)", ErrUnreadableDocument, path)
	}

	p.logger.Debug("extracted document text",
		"path", path,
		"pages", pageCount,
		"chars", b.Len(),
	)

	return &Document{Path: path, Pages: pageCount, Text: b.String()}, nil
}

// pageCount validates the file parses as a PDF before the text pass.
func pageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return count, nil
}
