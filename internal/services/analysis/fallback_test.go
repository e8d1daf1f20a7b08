package analysis

import (
	"context"
	"errors"
	"testing"
)

type stubProvider struct {
	name   string
	reply  string
	err    error
	calls  int
	lastIn ChatRequest
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Chat(ctx context.Context, req ChatRequest) (string, error) {
	s.calls++
	s.lastIn = req
	return s.reply, s.err
}

func TestFallback_PrimarySucceeds(t *testing.T) {
	primary := &stubProvider{name: "groq", reply: "ok"}
	secondary := &stubProvider{name: "openai", reply: "fallback"}
	f := NewFallbackProvider(primary, secondary)

	result, err := f.Chat(context.Background(), ChatRequest{User: "hi"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("Expected primary reply, got %q", result)
	}
	if secondary.calls != 0 {
		t.Errorf("Secondary should not be called, got %d calls", secondary.calls)
	}
}

func TestFallback_RetryableError(t *testing.T) {
	primary := &stubProvider{name: "groq", err: errors.New("Groq API error (status 429): slow down")}
	secondary := &stubProvider{name: "openai", reply: "fallback"}
	f := NewFallbackProvider(primary, secondary)

	result, err := f.Chat(context.Background(), ChatRequest{User: "hi"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != "fallback" {
		t.Errorf("Expected fallback reply, got %q", result)
	}
	if secondary.calls != 1 {
		t.Errorf("Expected 1 secondary call, got %d", secondary.calls)
	}
}

func TestFallback_NonRetryableError(t *testing.T) {
	primaryErr := errors.New("Groq API error (status 401): bad key")
	primary := &stubProvider{name: "groq", err: primaryErr}
	secondary := &stubProvider{name: "openai", reply: "fallback"}
	f := NewFallbackProvider(primary, secondary)

	_, err := f.Chat(context.Background(), ChatRequest{User: "hi"})
	if !errors.Is(err, primaryErr) {
		t.Errorf("Expected original error, got %v", err)
	}
	if secondary.calls != 0 {
		t.Errorf("Secondary should not be called for client errors, got %d calls", secondary.calls)
	}
}

func TestFallback_BothFail(t *testing.T) {
	primary := &stubProvider{name: "groq", err: errors.New("Groq API error (status 503): down")}
	secondary := &stubProvider{name: "openai", err: errors.New("OpenAI API error (status 500): down too")}
	f := NewFallbackProvider(primary, secondary)

	_, err := f.Chat(context.Background(), ChatRequest{User: "hi"})
	if err == nil {
		t.Fatal("Expected error when both providers fail")
	}
	if secondary.calls != 1 {
		t.Errorf("Expected 1 secondary call, got %d", secondary.calls)
	}
}
