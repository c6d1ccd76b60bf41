package providers

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// LLMProviderConfig configures a single backend. API keys arrive already
// resolved (no ${ENV_VAR} placeholders).
type LLMProviderConfig struct {
	Type      string  // "openai", "openrouter", "mock"
	Model     string  // Default model
	APIKey    string  // Resolved API key
	BaseURL   string  // Optional override
	RateLimit float64 // Requests per second
	Timeout   time.Duration
	Enabled   bool
}

// RegistryConfig holds all backend configurations keyed by name.
type RegistryConfig struct {
	LLMProviders map[string]LLMProviderConfig
}

// Registry holds LLM clients and their rate limiters, thread-safe.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]LLMClient
	limiters map[string]*RateLimiter
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		clients:  make(map[string]LLMClient),
		limiters: make(map[string]*RateLimiter),
		logger:   logger,
	}
}

// BuildRegistry instantiates clients from config. Credentials are checked
// here, before any document is processed: an enabled provider with an empty
// key fails with ErrMissingCredential.
func BuildRegistry(cfg RegistryConfig, logger *slog.Logger) (*Registry, error) {
	r := NewRegistry(logger)

	for name, pc := range cfg.LLMProviders {
		if !pc.Enabled {
			continue
		}

		switch pc.Type {
		case "openai":
			if pc.APIKey == "" {
				return nil, fmt.Errorf("%w: provider %q", ErrMissingCredential, name)
			}
			r.Register(name, NewOpenAIClient(OpenAIConfig{
				APIKey:       pc.APIKey,
				DefaultModel: pc.Model,
				Timeout:      pc.Timeout,
				BaseURL:      pc.BaseURL,
			}), NewRateLimiter(pc.RateLimit))
		case "openrouter":
			if pc.APIKey == "" {
				return nil, fmt.Errorf("%w: provider %q", ErrMissingCredential, name)
			}
			r.Register(name, NewOpenRouterClient(OpenRouterConfig{
				APIKey:       pc.APIKey,
				BaseURL:      pc.BaseURL,
				DefaultModel: pc.Model,
				Timeout:      pc.Timeout,
			}), NewRateLimiter(pc.RateLimit))
		case "mock":
			r.Register(name, NewMockClient(), nil)
		default:
			return nil, fmt.Errorf("unknown provider type %q for provider %q", pc.Type, name)
		}
	}

	return r, nil
}

// Register adds a client by name. A nil limiter disables rate limiting.
func (r *Registry) Register(name string, client LLMClient, limiter *RateLimiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	r.limiters[name] = limiter
	r.logger.Info("registered LLM client", "name", name, "type", client.Name())
}

// Get returns a client by name.
func (r *Registry) Get(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return client, nil
}

// Limiter returns the rate limiter for a client, which may be nil.
func (r *Registry) Limiter(name string) *RateLimiter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.limiters[name]
}

// List returns all registered client names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
