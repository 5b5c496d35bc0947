package domain

import "context"

// Generator is the text generation contract shared by prompt providers.
// Implementations return the raw model text; schema checks happen above.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

// HealthChecker verifies prompt provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// GenerateRequest is a single structured-output completion request.
type GenerateRequest struct {
	System    string
	User      string
	MaxTokens int
	// JSON asks the provider for a JSON object response.
	JSON bool
}

// GenerateResult carries the model text and token usage through the decorator chain.
type GenerateResult struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
