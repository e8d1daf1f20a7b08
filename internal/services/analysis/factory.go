package analysis

import (
	"github.com/recipelens/basil/internal/config"
)

// NewChatProvider builds the chat-completion provider selected by the
// configuration, optionally wrapped with a fallback. It returns nil when no
// configured provider has a credential; callers treat a nil provider as
// analysis being unavailable and serve defaults instead.
func NewChatProvider(cfg config.AnalysisConfig, groqKey, openAIKey string) ChatProvider {
	primary := buildProvider(cfg.Provider, groqKey, openAIKey)
	if primary == nil {
		return nil
	}

	if cfg.FallbackEnabled {
		secondary := buildProvider(cfg.FallbackProvider, groqKey, openAIKey)
		if secondary != nil && secondary.Name() != primary.Name() {
			return NewFallbackProvider(primary, secondary)
		}
	}

	return primary
}

func buildProvider(name, groqKey, openAIKey string) ChatProvider {
	switch name {
	case "openai":
		if openAIKey == "" {
			return nil
		}
		return NewOpenAIProvider(openAIKey)
	default:
		// Default to groq
		if groqKey == "" {
			return nil
		}
		return NewGroqProvider(groqKey)
	}
}
