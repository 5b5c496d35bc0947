package prompt

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/matchcraft/internal/domain"
	"github.com/kailas-cloud/matchcraft/internal/metrics"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// InstrumentedGenerator wraps a Generator with rate limiting, budget
// enforcement and logging. Transport metrics (requests, duration, tokens)
// are recorded by the provider adapters.
type InstrumentedGenerator struct {
	inner    domain.Generator
	provider string
	model    string
	budget   BudgetChecker
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewInstrumentedGenerator wraps a generator. budget and limiter may be nil.
func NewInstrumentedGenerator(
	inner domain.Generator, provider, model string,
	budget BudgetChecker, limiter *rate.Limiter, logger *zap.Logger,
) *InstrumentedGenerator {
	return &InstrumentedGenerator{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		limiter:  limiter,
		logger:   logger,
	}
}

// NewLimiter builds the provider rate limiter. rps <= 0 disables limiting.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Generate applies the rate limit and budget, delegates and records usage.
func (g *InstrumentedGenerator) Generate(
	ctx context.Context, req domain.GenerateRequest,
) (domain.GenerateResult, error) {
	if g.limiter != nil && !g.limiter.Allow() {
		g.logger.Warn("Prompt rate limit hit",
			zap.String("provider", g.provider),
			zap.String("model", g.model),
		)
		return domain.GenerateResult{}, domain.ErrRateLimited
	}

	if g.budget != nil {
		if err := g.budget.Check(ctx); err != nil {
			g.logger.Error("Budget exceeded",
				zap.String("provider", g.provider),
				zap.String("model", g.model),
				zap.Error(err),
			)
			return domain.GenerateResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()

	result, err := g.inner.Generate(ctx, req)

	duration := time.Since(start)

	if err != nil {
		g.logger.Error("Prompt request failed",
			zap.String("provider", g.provider),
			zap.String("model", g.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.GenerateResult{}, fmt.Errorf("generate: %w", err)
	}

	if g.budget != nil {
		g.budget.Record(int64(result.TotalTokens))
		remaining := metrics.PromptBudgetTokensRemaining
		remaining.WithLabelValues(g.provider, "daily").Set(float64(g.budget.RemainingDaily()))
		remaining.WithLabelValues(g.provider, "monthly").Set(float64(g.budget.RemainingMonthly()))
	}

	g.logger.Debug("Prompt request completed",
		zap.String("provider", g.provider),
		zap.String("model", g.model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}
