// Package extract runs the schema-guided BOM extraction pipeline: document
// text in, validated Result out. One linear pass per document, no retries,
// no shared mutable state.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/devanand13/bomx/internal/bomschema"
	"github.com/devanand13/bomx/internal/pdftext"
	"github.com/devanand13/bomx/internal/prompts/bom"
	"github.com/devanand13/bomx/internal/providers"
)

// ErrInvalidReplyShape is returned when the backend reply cannot be decoded
// as structured data or fails structural validation. The backend guarantees
// syntax at best, never schema conformance, so this is checked explicitly.
var ErrInvalidReplyShape = errors.New("invalid reply shape")

// Options configure an Extractor.
type Options struct {
	Model            string        // Model identifier passed to the backend
	MaxDocumentChars int           // 0 applies the prompt builder default
	CheckArithmetic  bool          // Optional quantity×unit_price=total check
	Timeout          time.Duration // Per-call budget around the backend call
}

// Extractor drives the pipeline against one LLM client. Safe for
// concurrent use across documents.
type Extractor struct {
	client  providers.LLMClient
	limiter *providers.RateLimiter
	text    *pdftext.Provider
	opts    Options
	logger  *slog.Logger
}

// New creates an Extractor. limiter may be nil.
func New(client providers.LLMClient, limiter *providers.RateLimiter, text *pdftext.Provider, opts Options, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if text == nil {
		text = pdftext.NewProvider(logger)
	}
	return &Extractor{
		client:  client,
		limiter: limiter,
		text:    text,
		opts:    opts,
		logger:  logger,
	}
}

// ExtractFile runs the full pipeline for one PDF.
func (e *Extractor) ExtractFile(ctx context.Context, path, kind string) (*Result, error) {
	// Resolve the schema first: an unknown kind must fail before any
	// document or network work.
	if _, err := bomschema.Get(kind); err != nil {
		return nil, err
	}

	doc, err := e.text.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", path, err)
	}

	res, err := e.ExtractText(ctx, doc.Text, kind)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", path, err)
	}
	return res, nil
}

// ExtractText runs the pipeline on already-extracted document text.
func (e *Extractor) ExtractText(ctx context.Context, documentText, kind string) (*Result, error) {
	desc, err := bomschema.Get(kind)
	if err != nil {
		return nil, err
	}

	userPrompt, err := bom.BuildUserPrompt(documentText, desc, e.opts.MaxDocumentChars)
	if err != nil {
		return nil, err
	}

	schemaWrapper, err := json.Marshal(bom.ResponseSchema(desc)["json_schema"])
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response schema: %w", err)
	}

	requestID := uuid.New().String()
	req := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: bom.SystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Model:       e.opts.Model,
		Temperature: 0,
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: schemaWrapper,
		},
		RequestID: requestID,
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if e.opts.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	e.logger.Info("extraction request",
		"req_id", requestID,
		"bom_type", kind,
		"provider", e.client.Name(),
		"model", e.opts.Model,
		"text_chars", len(documentText),
	)

	reply, err := e.client.Chat(callCtx, req)
	if err != nil {
		// A blown per-call budget is a backend failure; caller
		// cancellation passes through untouched.
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: timed out after %s", providers.ErrBackendUnavailable, e.opts.Timeout)
		}
		return nil, fmt.Errorf("bom_type %s: %w", kind, err)
	}

	parsed, err := providers.ParseStructuredJSON(reply.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReplyShape, err)
	}

	res, err := e.validateAndNormalize(parsed, desc)
	if err != nil {
		return nil, err
	}

	e.logger.Info("extraction complete",
		"req_id", requestID,
		"bom_type", kind,
		"items", res.TotalItems,
		"warnings", len(res.Warnings),
		"prompt_tokens", reply.PromptTokens,
		"completion_tokens", reply.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	for _, w := range res.Warnings {
		e.logger.Warn("extraction warning", "req_id", requestID, "warning", w)
	}

	return res, nil
}

// validateAndNormalize checks the items key before anything else so its
// absence is reported as ErrMissingItemsField rather than a generic
// shape failure.
func (e *Extractor) validateAndNormalize(parsed json.RawMessage, desc *bomschema.Descriptor) (*Result, error) {
	var probe map[string]any
	if err := json.Unmarshal(parsed, &probe); err != nil {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrInvalidReplyShape)
	}
	if v, ok := probe["items"]; !ok || v == nil {
		return nil, fmt.Errorf("%w: bom_type %q", ErrMissingItemsField, desc.Kind)
	}

	// Lenient structural validation: only what normalization cannot
	// repair. Missing item fields are filled with nulls later, so they
	// are not an error here.
	if err := providers.ValidateStructuredJSON(lenientReplySchema, parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReplyShape, err)
	}

	return Normalize(parsed, desc, NormalizeOptions{CheckArithmetic: e.opts.CheckArithmetic})
}

// lenientReplySchema checks the reply skeleton: items must be a sequence
// of objects. Field completeness is normalization's job.
var lenientReplySchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"items": {
			"type": "array",
			"items": {"type": "object"}
		}
	},
	"required": ["items"]
}`)
