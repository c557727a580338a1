// Package provider implements chat-completion clients for the LLM
// backends mergelens can send reviews to.
package provider

import (
	"context"
	"fmt"
)

// Request carries one completion call: a system prompt describing the
// reviewer role and a user prompt carrying the diff.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Response is the raw model output.
type Response struct {
	Content    string
	TokensUsed int
}

// Completer sends a two-message chat completion and returns raw text.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Name() string
}

// New creates a completer by provider name.
func New(name, model string) (Completer, error) {
	switch name {
	case "openrouter":
		return NewOpenRouter(model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}
