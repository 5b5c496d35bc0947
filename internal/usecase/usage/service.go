// Package usage reports prompt provider consumption against the token budget.
package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/matchcraft/internal/domain/usage"
	"github.com/kailas-cloud/matchcraft/internal/domain/usage/budget"
	"github.com/kailas-cloud/matchcraft/internal/domain/usage/metrics"
)

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil when no provider is configured.
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// GetReport builds a usage report for the given period. The total period has
// no boundaries and reports the monthly counters.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := s.now().UTC()
	var start, end int64
	var limit, used, remaining, requests, hits int64

	switch period {
	case domusage.PeriodDay:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		start = dayStart.UnixMilli()
		end = dayStart.Add(24 * time.Hour).UnixMilli()
		if s.br != nil {
			limit, used, remaining = s.br.DailyLimit(), s.br.DailyUsed(), s.br.RemainingDaily()
			requests, hits = s.br.DailyRequests(), s.br.DailyCacheHits()
		}
	case domusage.PeriodMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		start = monthStart.UnixMilli()
		end = monthStart.AddDate(0, 1, 0).UnixMilli()
		if s.br != nil {
			limit, used, remaining = s.br.MonthlyLimit(), s.br.MonthlyUsed(), s.br.RemainingMonthly()
			requests, hits = s.br.MonthlyRequests(), s.br.MonthlyCacheHits()
		}
	default:
		if s.br != nil {
			limit, used, remaining = s.br.MonthlyLimit(), s.br.MonthlyUsed(), s.br.RemainingMonthly()
			requests, hits = s.br.MonthlyRequests(), s.br.MonthlyCacheHits()
		}
	}

	if s.br == nil {
		remaining = -1
	}
	exhausted := limit > 0 && remaining <= 0

	b := budget.New(int(limit), int(used), int(remaining), exhausted, end)
	m := metrics.New(int(requests), int(hits), int(used))

	return domusage.NewReport(period, start, end, m, b)
}
