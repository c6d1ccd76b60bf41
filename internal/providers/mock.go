package providers

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailErr      error // Error returned when ShouldFail (defaults to ErrBackendUnavailable)
	FailFirst    int   // Fail the first N requests, then succeed
	ResponseText string

	// State
	requestCount atomic.Int64

	// LastRequest records the most recent request for assertions.
	LastRequest atomic.Pointer[ChatRequest]
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ResponseText: `{"document_title":null,"bom_type":"simple","total_items":0,"items":[]}`,
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Requests returns the number of Chat calls observed.
func (c *MockClient) Requests() int {
	return int(c.requestCount.Load())
}

// Chat returns the configured response.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)
	c.LastRequest.Store(req)

	if c.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.Latency):
		}
	}

	if c.ShouldFail || int(count) <= c.FailFirst {
		err := c.FailErr
		if err == nil {
			err = fmt.Errorf("%w: mock client configured to fail", ErrBackendUnavailable)
		}
		return nil, err
	}

	return &ChatResult{
		Content:       c.ResponseText,
		ExecutionTime: time.Since(start),
		Provider:      MockClientName,
		ModelUsed:     req.Model,
		RequestID:     fmt.Sprintf("mock-%d", count),
	}, nil
}
