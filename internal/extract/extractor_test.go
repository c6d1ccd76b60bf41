package extract

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/devanand13/bomx/internal/bomschema"
	"github.com/devanand13/bomx/internal/prompts/bom"
	"github.com/devanand13/bomx/internal/providers"
)

const engineeringReply = `{
	"document_title": "Controller Board Rev C",
	"bom_type": "engineering",
	"total_items": 2,
	"items": [
		{
			"item_number": "1", "quantity": "10", "substitution_code": null,
			"manufacturer": "Yageo", "part_number": "RC0603FR-0710KL",
			"description": "10k resistor", "reference_designator": "R1-R10",
			"package": "0603"
		},
		{
			"item_number": "2", "quantity": "1", "substitution_code": "6",
			"manufacturer": null, "part_number": "SN74LVC1G08",
			"description": "AND gate", "reference_designator": "U1",
			"package": null
		}
	]
}`

func newTestExtractor(client providers.LLMClient, opts Options) *Extractor {
	return New(client, nil, nil, opts, nil)
}

func TestExtractText(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = engineeringReply
	e := newTestExtractor(mock, Options{Model: "gpt-4o-mini"})

	res, err := e.ExtractText(context.Background(), "ITEM QTY PART ...", "engineering")
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}

	if res.TotalItems != 2 || len(res.Items) != 2 {
		t.Fatalf("expected 2 items, got total=%d len=%d", res.TotalItems, len(res.Items))
	}
	if res.BOMType != "engineering" {
		t.Errorf("unexpected bom_type %q", res.BOMType)
	}
	if res.Items[0]["substitution_code"] != nil {
		t.Errorf("null field should survive as nil, got %v", res.Items[0]["substitution_code"])
	}
	if res.Items[1]["reference_designator"] != "U1" {
		t.Errorf("field value lost: %v", res.Items[1]["reference_designator"])
	}
	if len(res.Warnings) != 0 {
		t.Errorf("clean reply should produce no warnings: %v", res.Warnings)
	}
}

func TestExtractTextRequestShape(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = `{"bom_type":"simple","total_items":0,"items":[]}`
	e := newTestExtractor(mock, Options{Model: "test-model"})

	if _, err := e.ExtractText(context.Background(), "doc text", "simple"); err != nil {
		t.Fatal(err)
	}

	req := mock.LastRequest.Load()
	if req == nil {
		t.Fatal("no request recorded")
	}
	if req.Temperature != 0 {
		t.Errorf("extraction must run at temperature 0, got %v", req.Temperature)
	}
	if req.Model != "test-model" {
		t.Errorf("unexpected model %q", req.Model)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
		t.Fatalf("expected system+user messages, got %+v", req.Messages)
	}
	if req.Messages[0].Content != bom.SystemPrompt {
		t.Errorf("unexpected system prompt %q", req.Messages[0].Content)
	}
	if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
		t.Fatalf("expected json_schema response format, got %+v", req.ResponseFormat)
	}

	var wrapper struct {
		Name   string `json:"name"`
		Strict bool   `json:"strict"`
	}
	if err := json.Unmarshal(req.ResponseFormat.JSONSchema, &wrapper); err != nil {
		t.Fatalf("response format schema not decodable: %v", err)
	}
	if wrapper.Name != "bom_extraction" || !wrapper.Strict {
		t.Errorf("unexpected schema wrapper %+v", wrapper)
	}
}

func TestExtractTextUnknownKindFailsBeforeRequest(t *testing.T) {
	mock := providers.NewMockClient()
	e := newTestExtractor(mock, Options{})

	_, err := e.ExtractText(context.Background(), "text", "mechanical")
	if !errors.Is(err, bomschema.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if mock.Requests() != 0 {
		t.Errorf("unknown kind must fail before any backend call, saw %d", mock.Requests())
	}
}

func TestExtractTextDocumentTooLarge(t *testing.T) {
	mock := providers.NewMockClient()
	e := newTestExtractor(mock, Options{MaxDocumentChars: 100})

	_, err := e.ExtractText(context.Background(), string(make([]byte, 200)), "simple")
	if !errors.Is(err, bom.ErrDocumentTooLarge) {
		t.Fatalf("expected ErrDocumentTooLarge, got %v", err)
	}
	if mock.Requests() != 0 {
		t.Errorf("oversized document must fail before any backend call, saw %d", mock.Requests())
	}
}

func TestExtractTextReplyErrors(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr error
	}{
		{
			name:    "not json",
			reply:   "I could not find a BOM in this document.",
			wantErr: ErrInvalidReplyShape,
		},
		{
			name:    "missing items",
			reply:   `{"bom_type":"simple","total_items":0}`,
			wantErr: ErrMissingItemsField,
		},
		{
			name:    "items not a sequence",
			reply:   `{"bom_type":"simple","items":{"0":{}}}`,
			wantErr: ErrInvalidReplyShape,
		},
		{
			name:    "items of scalars",
			reply:   `{"bom_type":"simple","items":["a","b"]}`,
			wantErr: ErrInvalidReplyShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := providers.NewMockClient()
			mock.ResponseText = tt.reply
			e := newTestExtractor(mock, Options{})

			_, err := e.ExtractText(context.Background(), "text", "simple")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExtractTextKindMismatchIsWarning(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = `{"bom_type":"simple","total_items":0,"items":[]}`
	e := newTestExtractor(mock, Options{})

	res, err := e.ExtractText(context.Background(), "text", "engineering")
	if err != nil {
		t.Fatalf("kind mismatch must not be fatal: %v", err)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a mismatch warning")
	}
}

func TestExtractTextBackendFailure(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ShouldFail = true
	e := newTestExtractor(mock, Options{})

	_, err := e.ExtractText(context.Background(), "text", "simple")
	if !errors.Is(err, providers.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestExtractTextTimeout(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Latency = 200 * time.Millisecond
	e := newTestExtractor(mock, Options{Timeout: 20 * time.Millisecond})

	_, err := e.ExtractText(context.Background(), "text", "simple")
	if !errors.Is(err, providers.ErrBackendUnavailable) {
		t.Fatalf("internal timeout should map to ErrBackendUnavailable, got %v", err)
	}
}

func TestExtractTextCallerCancellation(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Latency = 200 * time.Millisecond
	e := newTestExtractor(mock, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := e.ExtractText(ctx, "text", "simple")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, providers.ErrBackendUnavailable) {
		t.Error("caller cancellation must not be reported as backend failure")
	}
}

func TestExtractFileMissingDocument(t *testing.T) {
	e := newTestExtractor(providers.NewMockClient(), Options{})
	if _, err := e.ExtractFile(context.Background(), "does-not-exist.pdf", "simple"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExtractFileUnknownKindBeforeIO(t *testing.T) {
	mock := providers.NewMockClient()
	e := newTestExtractor(mock, Options{})

	_, err := e.ExtractFile(context.Background(), "does-not-exist.pdf", "mechanical")
	if !errors.Is(err, bomschema.ErrUnknownKind) {
		t.Fatalf("schema resolution must precede document I/O, got %v", err)
	}
}
