// Package suggest answers search-as-you-type lookups.
package suggest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/matchcraft/internal/domain/search/suggestion"
	"github.com/kailas-cloud/matchcraft/internal/metrics"
)

// Branch labels for metrics and logs.
const (
	branchName  = "name"
	branchTerms = "terms"
)

// Service merges and ranks the retrieval branches.
type Service struct {
	retriever Retriever
	limit     int
	logger    *zap.Logger
}

// New creates a suggestion service.
func New(r Retriever, logger *zap.Logger) *Service {
	return &Service{retriever: r, limit: suggestion.BranchLimit, logger: logger}
}

// Suggest returns ranked suggestions for the raw query. It never fails:
// an empty query or a store failure yields an empty list.
func (s *Service) Suggest(ctx context.Context, raw string) []suggestion.Suggestion {
	q := suggestion.Normalize(raw)
	if q == "" {
		metrics.SuggestLookupsTotal.WithLabelValues("empty_query").Inc()
		return []suggestion.Suggestion{}
	}

	start := time.Now()
	out, err := s.lookup(ctx, q)
	metrics.SuggestLookupDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SuggestLookupsTotal.WithLabelValues("failed_open").Inc()
		s.logger.Warn("Suggestion lookup failed, returning empty list",
			zap.String("query", q),
			zap.Error(err),
		)
		return []suggestion.Suggestion{}
	}

	metrics.SuggestLookupsTotal.WithLabelValues("ok").Inc()
	metrics.SuggestResults.Observe(float64(len(out)))
	return out
}

// lookup runs both branches concurrently; either failing fails the lookup.
func (s *Service) lookup(ctx context.Context, q string) ([]suggestion.Suggestion, error) {
	var byName, byTerm []suggestion.Suggestion

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.retriever.NamePrefix(gctx, q, s.limit)
		if err != nil {
			metrics.SuggestBranchErrorsTotal.WithLabelValues(branchName).Inc()
			return fmt.Errorf("%s branch: %w", branchName, err)
		}
		byName = res
		return nil
	})
	g.Go(func() error {
		res, err := s.retriever.TermMatch(gctx, q, s.limit)
		if err != nil {
			metrics.SuggestBranchErrorsTotal.WithLabelValues(branchTerms).Inc()
			return fmt.Errorf("%s branch: %w", branchTerms, err)
		}
		byTerm = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return suggestion.Rank(q, suggestion.Merge(byName, byTerm)), nil
}
