package matchcraft

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/matchcraft/internal/domain/usage"
)

// UsagePeriod is the aggregation granularity for usage reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
	PeriodTotal UsagePeriod = "total"
)

// UsageReport contains prompt provider usage for a time period.
type UsageReport struct {
	Period      UsagePeriod
	PeriodStart time.Time // zero for PeriodTotal
	PeriodEnd   time.Time
	Metrics     UsageMetrics
	Budget      BudgetStatus
}

// UsageMetrics tracks prompt provider consumption.
type UsageMetrics struct {
	PromptRequests int
	CacheHits      int
	Tokens         int
}

// BudgetStatus tracks token quota state.
type BudgetStatus struct {
	TokensLimit     int
	TokensUsed      int
	TokensRemaining int // -1 when unlimited
	IsUnlimited     bool
	IsExhausted     bool
	ResetsAt        time.Time
}

// Usage returns a usage report for the given period. The embedded client
// has no prompt provider, so reports are always unlimited.
// Observer always records success: the underlying use-case is in-memory
// and does not produce errors.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) UsageReport {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, nil) }()

	report := c.usageSvc.GetReport(ctx, domusage.Period(period))
	m := report.Metrics()
	b := report.Budget()

	return UsageReport{
		Period:      UsagePeriod(report.Period()),
		PeriodStart: millis(report.PeriodStart()),
		PeriodEnd:   millis(report.PeriodEnd()),
		Metrics: UsageMetrics{
			PromptRequests: m.PromptRequests(),
			CacheHits:      m.CacheHits(),
			Tokens:         m.Tokens(),
		},
		Budget: BudgetStatus{
			TokensLimit:     b.TokensLimit(),
			TokensUsed:      b.TokensUsed(),
			TokensRemaining: b.TokensRemaining(),
			IsUnlimited:     b.IsUnlimited(),
			IsExhausted:     b.IsExhausted(),
			ResetsAt:        millis(b.ResetsAt()),
		},
	}
}

// usageUseCase is the internal interface for usage reports.
type usageUseCase interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}
