// Package llm provides LLM client interfaces and implementations.
package llm

import (
	"context"
	"errors"
)

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// ChatMessage represents a chat message for LLM.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for LLM providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string

	// Models returns available models.
	Models() []string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// NewClient creates a client for the preferred provider, falling back to
// whichever provider has an API key configured.
func NewClient(preferred Provider, openAIKey, anthropicKey string) (Client, error) {
	switch preferred {
	case ProviderAnthropic:
		if anthropicKey != "" {
			return NewAnthropicClient(anthropicKey)
		}
		if openAIKey != "" {
			return NewOpenAIClient(openAIKey)
		}
	default:
		if openAIKey != "" {
			return NewOpenAIClient(openAIKey)
		}
		if anthropicKey != "" {
			return NewAnthropicClient(anthropicKey)
		}
	}
	return nil, errors.New("no LLM API key configured")
}
