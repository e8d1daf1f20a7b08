package analysis

import "context"

const (
	groqBaseURL = "https://api.groq.com/openai/v1"
	groqModel   = "llama3-8b-8192"
)

// GroqProvider implements ChatProvider for the Groq API.
type GroqProvider struct {
	apiKey  string
	baseURL string
}

// NewGroqProvider creates a new Groq chat provider.
func NewGroqProvider(apiKey string) *GroqProvider {
	return &GroqProvider{apiKey: apiKey, baseURL: groqBaseURL}
}

func (p *GroqProvider) Name() string { return "groq" }

func (p *GroqProvider) Chat(ctx context.Context, req ChatRequest) (string, error) {
	return callChat(ctx, p.baseURL, p.apiKey, "Groq", groqModel, req)
}
