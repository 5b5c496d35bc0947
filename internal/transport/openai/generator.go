// Package openai adapts OpenAI-compatible chat completion endpoints to
// domain.Generator.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchcraft/internal/domain"
	"github.com/kailas-cloud/matchcraft/internal/metrics"
)

// Generator is a prompt provider using the OpenAI-compatible chat API.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	user        string
	provider    string
	logger      *zap.Logger
}

// Config holds the prompt provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	User        string
	Provider    string
	Logger      *zap.Logger
}

// NewGenerator creates an OpenAI-compatible prompt provider.
func NewGenerator(cfg *Config) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		user:        cfg.User,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
	}
}

// Generate implements domain.Generator with transport-level metrics.
func (g *Generator) Generate(ctx context.Context, in domain.GenerateRequest) (domain.GenerateResult, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: in.System},
			{Role: openai.ChatMessageRoleUser, Content: in.User},
		},
		Temperature: g.temperature,
		User:        g.user,
	}
	if in.MaxTokens > 0 {
		req.MaxTokens = in.MaxTokens
	}
	if in.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.PromptRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		metrics.PromptErrorsTotal.WithLabelValues(g.provider, g.model, "api_error").Inc()
		return domain.GenerateResult{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		metrics.PromptRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		metrics.PromptErrorsTotal.WithLabelValues(g.provider, g.model, "empty_response").Inc()
		return domain.GenerateResult{}, fmt.Errorf("empty completion response: %w", domain.ErrPromptProviderError)
	}

	metrics.PromptRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	metrics.PromptRequestDuration.WithLabelValues(g.provider, g.model).Observe(duration.Seconds())

	usage := resp.Usage
	if usage.TotalTokens > 0 {
		metrics.PromptTokensTotal.WithLabelValues(g.provider, g.model, "prompt").Add(float64(usage.PromptTokens))
		metrics.PromptTokensTotal.WithLabelValues(g.provider, g.model, "completion").Add(float64(usage.CompletionTokens))
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		g.logger.Warn("Completion truncated by max tokens",
			zap.String("provider", g.provider),
			zap.String("model", g.model),
			zap.Int("max_tokens", in.MaxTokens),
		)
	}

	model := resp.Model
	if model == "" {
		model = g.model
	}
	return domain.GenerateResult{
		Text:             choice.Message.Content,
		Model:            model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// Upstream 429s map to domain.ErrRateLimited, everything else to
// domain.ErrPromptProviderError.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		wrap := wrapFor(reqErr.HTTPStatusCode)
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("completion API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("completion API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrapFor(apiErr.HTTPStatusCode))
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("completion request timed out: %w", domain.ErrPromptProviderError)
	}
	return fmt.Errorf("completion request failed: %w", domain.ErrPromptProviderError)
}

func wrapFor(status int) error {
	if status == http.StatusTooManyRequests {
		return domain.ErrRateLimited
	}
	return domain.ErrPromptProviderError
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
