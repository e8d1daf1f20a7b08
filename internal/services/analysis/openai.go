package analysis

import "context"

const (
	openAIBaseURL = "https://api.openai.com/v1"
	openAIModel   = "gpt-4o-mini"
)

// OpenAIProvider implements ChatProvider for the OpenAI API.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
}

// NewOpenAIProvider creates a new OpenAI chat provider.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{apiKey: apiKey, baseURL: openAIBaseURL}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Chat(ctx context.Context, req ChatRequest) (string, error) {
	return callChat(ctx, p.baseURL, p.apiKey, "OpenAI", openAIModel, req)
}
