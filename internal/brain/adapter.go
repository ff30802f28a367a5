// Package brain wraps the language-model call behind a small adapter
// interface so the dispatcher never talks to a provider SDK directly.
package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Message is one entry in the ordered prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the normalized generation request.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
	ForceJSON   bool
}

// Adapter produces one model reply for a request.
type Adapter interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config controls adapter construction.
type Config struct {
	Mode    string
	APIKey  string
	BaseURL string
	Model   string
}

// NewAdapter builds the configured adapter. "auto" prefers the OpenAI client
// when a key is present and falls back to the deterministic mock otherwise.
func NewAdapter(cfg Config) (Adapter, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewOpenAIAdapter(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
		}
		return NewMockAdapter(), nil
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("OPENAI_API_KEY is required for openai brain mode")
		}
		return NewOpenAIAdapter(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "mock":
		return NewMockAdapter(), nil
	default:
		return nil, fmt.Errorf("unsupported brain mode %q", cfg.Mode)
	}
}
