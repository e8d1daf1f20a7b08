package analysis

import "context"

// ChatRequest carries one system+user exchange to a chat-completion API.
type ChatRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// ChatProvider is a single chat-completion backend.
type ChatProvider interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// Chat sends the request and returns the raw message content of the
	// first choice.
	Chat(ctx context.Context, req ChatRequest) (string, error)
}
