package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"feedback-insights-go/internal/types"
)

const (
	ProviderAzure     = "azure"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

const (
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"
	defaultMaxTokens      = 800
)

// Capability is the only thing the analysis core knows about the remote
// model. Send blocks until the reply arrives or ctx is done.
type Capability interface {
	Send(ctx context.Context, p Prompt) (Completion, error)
}

type Prompt struct {
	System string
	User   string
}

// Text is the prompt as billed: system and user message together.
func (p Prompt) Text() string {
	return strings.TrimSpace(p.System + "\n" + p.User)
}

type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}

type Completion struct {
	Text  string
	Model string
	// Usage is nil when the provider did not report token counts.
	Usage *Usage
}

type Config struct {
	Provider   string `yaml:"provider"`
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"api_key"`
	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"api_version"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	MaxTokens  int64  `yaml:"max_tokens"`
}

// Validate checks that the selected provider has its credentials.
func (c Config) Validate() error {
	missing := func(field string) error {
		return types.NewConfigError("llm."+field, "required for provider %q", c.Provider)
	}
	switch c.Provider {
	case ProviderAzure:
		switch {
		case c.Endpoint == "":
			return missing("endpoint")
		case c.APIKey == "":
			return missing("api_key")
		case c.Deployment == "":
			return missing("deployment")
		case c.APIVersion == "":
			return missing("api_version")
		}
	case ProviderOpenAI, ProviderAnthropic:
		if c.APIKey == "" {
			return missing("api_key")
		}
	case ProviderMock:
	default:
		return types.NewConfigError("llm.provider", "unknown provider %q", c.Provider)
	}
	if c.MaxTokens < 0 {
		return types.NewConfigError("llm.max_tokens", "must be >= 0")
	}
	return nil
}

// New builds the capability for cfg.Provider.
func New(cfg Config) (Capability, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ProviderAzure, ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case ProviderAnthropic:
		return NewAnthropic(cfg), nil
	default:
		return NewMock(), nil
	}
}

// TransportError is a provider call that did not produce a reply.
type TransportError struct {
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("llm transport: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RetryableStatus: rate limits, timeouts, conflicts and server errors.
func RetryableStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusConflict, code == http.StatusTooManyRequests:
		return true
	case code >= 500:
		return true
	}
	return false
}

// wrapTransport leaves context errors untouched so callers can tell
// cancellation and deadlines apart from provider failures.
func wrapTransport(err error, status int) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if status == 0 {
		return &TransportError{Retryable: true, Err: err}
	}
	return &TransportError{StatusCode: status, Retryable: RetryableStatus(status), Err: err}
}

func maxTokens(cfg Config) int64 {
	if cfg.MaxTokens > 0 {
		return cfg.MaxTokens
	}
	return defaultMaxTokens
}
