// Package providers holds the LLM backend clients used for extraction.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrBackendUnavailable marks transport, auth, and rate-limit failures from
// an LLM backend. The clients never retry on their own; callers decide.
var ErrBackendUnavailable = errors.New("llm backend unavailable")

// ErrMissingCredential is returned when an enabled provider resolves to an
// empty API key. Detected when the registry is built, before any document
// is processed.
var ErrMissingCredential = errors.New("missing API credential")

// LLMClient is the interface the extraction pipeline depends on.
type LLMClient interface {
	// Chat sends a chat completion request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the client identifier (e.g., "openai").
	Name() string
}

// Message is one turn of the exchange.
type Message struct {
	Role    string `json:"role"` // "system" or "user"
	Content string `json:"content"`
}

// ResponseFormat requests structured output from the backend.
type ResponseFormat struct {
	Type       string          `json:"type"` // "json_schema" or "json_object"
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// ChatRequest is a request to an LLM backend.
type ChatRequest struct {
	Messages []Message `json:"messages"`

	// Model selection (client default if empty).
	Model string `json:"model,omitempty"`

	// Decoding bias. Extraction always runs at 0 for reproducibility.
	Temperature float64 `json:"temperature"`

	// Structured output constraint.
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// Request tracking.
	RequestID string `json:"-"`
}

// ChatResult is the reply from an LLM backend.
type ChatResult struct {
	Content string `json:"content"`

	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	ExecutionTime time.Duration `json:"execution_time"`

	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`
	RequestID string `json:"request_id"`
}
