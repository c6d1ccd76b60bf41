package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestRequest() *ChatRequest {
	return &ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "system prompt"},
			{Role: "user", Content: "user prompt"},
		},
		Model:       "openai/gpt-4o-mini",
		Temperature: 0,
	}
}

func TestOpenRouterChat(t *testing.T) {
	var gotBody openRouterRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model": "openai/gpt-4o-mini",
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"items":[]}`}},
			},
			"usage": map[string]any{
				"prompt_tokens":     100,
				"completion_tokens": 20,
				"total_tokens":      120,
			},
		})
	}))
	defer server.Close()

	client := NewOpenRouterClient(OpenRouterConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	res, err := client.Chat(context.Background(), newTestRequest())
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if res.Content != `{"items":[]}` {
		t.Errorf("unexpected content %q", res.Content)
	}
	if res.TotalTokens != 120 {
		t.Errorf("expected 120 total tokens, got %d", res.TotalTokens)
	}
	if res.Provider != OpenRouterName {
		t.Errorf("unexpected provider %q", res.Provider)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" {
		t.Errorf("request messages not forwarded: %+v", gotBody.Messages)
	}
	if gotBody.Temperature != 0 {
		t.Errorf("temperature should be 0, got %v", gotBody.Temperature)
	}
}

func TestOpenRouterChatErrors(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream overloaded", http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL})
		_, err := client.Chat(context.Background(), newTestRequest())
		if !errors.Is(err, ErrBackendUnavailable) {
			t.Fatalf("expected ErrBackendUnavailable, got %v", err)
		}
	})

	t.Run("api error payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": 429, "message": "rate limited"},
			})
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL})
		_, err := client.Chat(context.Background(), newTestRequest())
		if !errors.Is(err, ErrBackendUnavailable) {
			t.Fatalf("expected ErrBackendUnavailable, got %v", err)
		}
	})

	t.Run("malformed response body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>bad gateway</html>"))
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL})
		_, err := client.Chat(context.Background(), newTestRequest())
		if !errors.Is(err, ErrBackendUnavailable) {
			t.Fatalf("expected ErrBackendUnavailable, got %v", err)
		}
	})

	t.Run("no choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL})
		_, err := client.Chat(context.Background(), newTestRequest())
		if !errors.Is(err, ErrBackendUnavailable) {
			t.Fatalf("expected ErrBackendUnavailable, got %v", err)
		}
	})

	t.Run("caller cancellation passes through", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(time.Second)
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL})
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
		_, err := client.Chat(ctx, newTestRequest())
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if errors.Is(err, ErrBackendUnavailable) {
			t.Error("caller cancellation must not be reported as backend failure")
		}
	})
}

func TestOpenRouterResponseFormatForwarded(t *testing.T) {
	var raw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "{}"}},
			},
		})
	}))
	defer server.Close()

	client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL})
	req := newTestRequest()
	req.ResponseFormat = &ResponseFormat{
		Type:       "json_schema",
		JSONSchema: json.RawMessage(`{"name":"bom_extraction","strict":true,"schema":{"type":"object"}}`),
	}
	if _, err := client.Chat(context.Background(), req); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	rf, ok := raw["response_format"]
	if !ok {
		t.Fatal("response_format not forwarded")
	}
	var rfObj struct {
		Type       string          `json:"type"`
		JSONSchema json.RawMessage `json:"json_schema"`
	}
	if err := json.Unmarshal(rf, &rfObj); err != nil {
		t.Fatalf("response_format not an object: %v", err)
	}
	if rfObj.Type != "json_schema" {
		t.Errorf("expected type json_schema, got %q", rfObj.Type)
	}
	if len(rfObj.JSONSchema) == 0 {
		t.Error("json_schema payload missing")
	}
}
