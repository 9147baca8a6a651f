package llm

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ppiankov/neutralizer/internal/logging"
)

// ErrNoProvider is returned when no LLM provider is configured
var ErrNoProvider = errors.New("no LLM provider configured")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one prompt and returns the model's text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is a single system + user prompt exchange
type CompletionRequest struct {
	System string
	Prompt string

	// Model overrides the configured model
	Model string

	// MaxTokens limits the response length (0 = configured default)
	MaxTokens int

	// JSON asks the provider for a JSON-only response where supported
	JSON bool
}

// CompletionResponse is the model's reply
type CompletionResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling; detection wants it low
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string

	// Logger receives diagnostics (nil = discard)
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     60 * time.Second,
		MaxTokens:   2000,
		Temperature: 0.1,
	}
}

// timeout returns the configured timeout or fallback
func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return fallback
}

// maxTokens picks the request value, then the configured one, then 2000
func (c Config) maxTokens(req CompletionRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 2000
}

// model picks the request model, then the configured one, then fallback
func (c Config) model(req CompletionRequest, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if c.Model != "" {
		return c.Model
	}
	return fallback
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logging.Discard()
}
