// Package gemini adapts the Google Gemini API to domain.Generator.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/matchcraft/internal/domain"
	"github.com/kailas-cloud/matchcraft/internal/metrics"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Config holds the Gemini provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Provider    string
	Logger      *zap.Logger
}

// Generator is a prompt provider backed by Gemini generateContent.
type Generator struct {
	client      *genai.Client
	model       string
	temperature float32
	provider    string
	logger      *zap.Logger
}

// NewGenerator creates a Gemini prompt provider.
func NewGenerator(ctx context.Context, cfg *Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("genai API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Generator{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
	}, nil
}

// Generate implements domain.Generator with transport-level metrics.
func (g *Generator) Generate(ctx context.Context, in domain.GenerateRequest) (domain.GenerateResult, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if in.System != "" {
		config.SystemInstruction = genai.NewContentFromText(in.System, genai.RoleUser)
	}
	if in.MaxTokens > 0 {
		config.MaxOutputTokens = int32(in.MaxTokens) //nolint:gosec // bounded by config
	}
	if in.JSON {
		config.ResponseMIMEType = "application/json"
	}
	contents := []*genai.Content{genai.NewContentFromText(in.User, genai.RoleUser)}

	start := time.Now()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)

	duration := time.Since(start)

	if err != nil {
		metrics.PromptRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		metrics.PromptErrorsTotal.WithLabelValues(g.provider, g.model, "api_error").Inc()
		return domain.GenerateResult{}, parseAPIError(err)
	}

	text := resp.Text()
	if text == "" {
		metrics.PromptRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		metrics.PromptErrorsTotal.WithLabelValues(g.provider, g.model, "empty_response").Inc()
		return domain.GenerateResult{}, fmt.Errorf("empty generateContent response: %w", domain.ErrPromptProviderError)
	}

	metrics.PromptRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	metrics.PromptRequestDuration.WithLabelValues(g.provider, g.model).Observe(duration.Seconds())

	res := domain.GenerateResult{Text: text, Model: g.model}
	if resp.ModelVersion != "" {
		res.Model = resp.ModelVersion
	}
	if u := resp.UsageMetadata; u != nil {
		res.PromptTokens = int(u.PromptTokenCount)
		res.CompletionTokens = int(u.CandidatesTokenCount)
		res.TotalTokens = int(u.TotalTokenCount)
		metrics.PromptTokensTotal.WithLabelValues(g.provider, g.model, "prompt").Add(float64(res.PromptTokens))
		metrics.PromptTokensTotal.WithLabelValues(g.provider, g.model, "completion").Add(float64(res.CompletionTokens))
	}

	g.logger.Debug("Gemini completion",
		zap.String("model", res.Model),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

// HealthCheck lists a single model to verify the key and endpoint.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 1}); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError maps Gemini errors onto domain sentinels. Quota responses
// (429, RESOURCE_EXHAUSTED) map to domain.ErrRateLimited.
func parseAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		wrap := domain.ErrPromptProviderError
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
			wrap = domain.ErrRateLimited
		}
		return fmt.Errorf("gemini API error %d %s: %s: %w", apiErr.Code, apiErr.Status, apiErr.Message, wrap)
	}
	return fmt.Errorf("gemini request failed: %v: %w", err, domain.ErrPromptProviderError)
}
