package usage

import (
	"context"
	"testing"
	"time"

	domusage "github.com/kailas-cloud/matchcraft/internal/domain/usage"
)

// --- Mock ---

type mockBudgetReader struct {
	dailyLimit       int64
	monthlyLimit     int64
	dailyUsed        int64
	monthlyUsed      int64
	remainingDaily   int64
	remainingMonthly int64
	dailyRequests    int64
	monthlyRequests  int64
	dailyHits        int64
	monthlyHits      int64
}

func (m *mockBudgetReader) DailyLimit() int64       { return m.dailyLimit }
func (m *mockBudgetReader) MonthlyLimit() int64     { return m.monthlyLimit }
func (m *mockBudgetReader) DailyUsed() int64        { return m.dailyUsed }
func (m *mockBudgetReader) MonthlyUsed() int64      { return m.monthlyUsed }
func (m *mockBudgetReader) RemainingDaily() int64   { return m.remainingDaily }
func (m *mockBudgetReader) RemainingMonthly() int64 { return m.remainingMonthly }
func (m *mockBudgetReader) DailyRequests() int64    { return m.dailyRequests }
func (m *mockBudgetReader) MonthlyRequests() int64  { return m.monthlyRequests }
func (m *mockBudgetReader) DailyCacheHits() int64   { return m.dailyHits }
func (m *mockBudgetReader) MonthlyCacheHits() int64 { return m.monthlyHits }

var fixedNow = time.Date(2026, time.March, 14, 15, 9, 26, 0, time.UTC)

func newService(br BudgetReader) *Service {
	svc := New(br)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// --- Tests ---

func TestGetReport_DailyPeriod(t *testing.T) {
	br := &mockBudgetReader{
		dailyLimit:       10000,
		dailyUsed:        3000,
		remainingDaily:   7000,
		dailyRequests:    12,
		dailyHits:        4,
		monthlyLimit:     100000,
		monthlyUsed:      50000,
		remainingMonthly: 50000,
	}
	r := newService(br).GetReport(context.Background(), domusage.PeriodDay)

	if r.Period() != domusage.PeriodDay {
		t.Errorf("expected period %q, got %q", domusage.PeriodDay, r.Period())
	}

	dayStart := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	if r.PeriodStart() != dayStart.UnixMilli() {
		t.Errorf("expected period start %d, got %d", dayStart.UnixMilli(), r.PeriodStart())
	}
	dayEnd := dayStart.Add(24 * time.Hour)
	if r.PeriodEnd() != dayEnd.UnixMilli() {
		t.Errorf("expected period end %d, got %d", dayEnd.UnixMilli(), r.PeriodEnd())
	}
	if r.Budget().ResetsAt() != dayEnd.UnixMilli() {
		t.Errorf("expected reset at %d, got %d", dayEnd.UnixMilli(), r.Budget().ResetsAt())
	}

	if r.Budget().TokensLimit() != 10000 {
		t.Errorf("expected limit 10000, got %d", r.Budget().TokensLimit())
	}
	if r.Budget().TokensRemaining() != 7000 {
		t.Errorf("expected remaining 7000, got %d", r.Budget().TokensRemaining())
	}
	if r.Budget().TokensUsed() != 3000 {
		t.Errorf("expected used 3000, got %d", r.Budget().TokensUsed())
	}
	if r.Budget().IsExhausted() {
		t.Error("budget should not be exhausted")
	}
	if r.Metrics().Tokens() != 3000 {
		t.Errorf("expected tokens 3000, got %d", r.Metrics().Tokens())
	}
	if r.Metrics().PromptRequests() != 12 || r.Metrics().CacheHits() != 4 {
		t.Errorf("expected 12 requests / 4 hits, got %d / %d",
			r.Metrics().PromptRequests(), r.Metrics().CacheHits())
	}
}

func TestGetReport_MonthlyPeriod(t *testing.T) {
	br := &mockBudgetReader{
		monthlyLimit:     100000,
		monthlyUsed:      80000,
		remainingMonthly: 20000,
		monthlyRequests:  300,
		monthlyHits:      90,
	}
	r := newService(br).GetReport(context.Background(), domusage.PeriodMonth)

	if r.Period() != domusage.PeriodMonth {
		t.Errorf("expected period %q, got %q", domusage.PeriodMonth, r.Period())
	}

	monthStart := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	if r.PeriodStart() != monthStart.UnixMilli() {
		t.Errorf("expected period start %d, got %d", monthStart.UnixMilli(), r.PeriodStart())
	}
	monthEnd := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	if r.PeriodEnd() != monthEnd.UnixMilli() {
		t.Errorf("expected period end %d, got %d", monthEnd.UnixMilli(), r.PeriodEnd())
	}

	if r.Budget().TokensLimit() != 100000 {
		t.Errorf("expected limit 100000, got %d", r.Budget().TokensLimit())
	}
	if r.Metrics().PromptRequests() != 300 || r.Metrics().CacheHits() != 90 {
		t.Errorf("unexpected metrics %+v", r.Metrics())
	}
}

func TestGetReport_TotalPeriod(t *testing.T) {
	br := &mockBudgetReader{
		monthlyLimit:     100000,
		monthlyUsed:      100000,
		remainingMonthly: 0,
	}
	r := newService(br).GetReport(context.Background(), domusage.PeriodTotal)

	if r.Period() != domusage.PeriodTotal {
		t.Errorf("expected period %q, got %q", domusage.PeriodTotal, r.Period())
	}
	if r.PeriodStart() != 0 || r.PeriodEnd() != 0 {
		t.Errorf("expected no boundaries for total, got %d..%d", r.PeriodStart(), r.PeriodEnd())
	}
	if r.Budget().ResetsAt() != 0 {
		t.Errorf("expected no reset for total, got %d", r.Budget().ResetsAt())
	}
	if !r.Budget().IsExhausted() {
		t.Error("spent monthly budget should be exhausted")
	}
}

func TestGetReport_NilBudgetReader(t *testing.T) {
	r := newService(nil).GetReport(context.Background(), domusage.PeriodDay)

	if !r.Budget().IsUnlimited() {
		t.Error("nil budget reader should be unlimited")
	}
	if r.Budget().TokensRemaining() != -1 {
		t.Errorf("expected remaining -1, got %d", r.Budget().TokensRemaining())
	}
	if r.Budget().IsExhausted() {
		t.Error("nil budget reader should not be exhausted")
	}
}

func TestGetReport_Unlimited(t *testing.T) {
	br := &mockBudgetReader{dailyUsed: 900, remainingDaily: -1}
	r := newService(br).GetReport(context.Background(), domusage.PeriodDay)

	if r.Budget().IsExhausted() {
		t.Error("unlimited budget should never be exhausted")
	}
	if r.Metrics().Tokens() != 900 {
		t.Errorf("expected tokens 900, got %d", r.Metrics().Tokens())
	}
}

func TestGetReport_Exhausted(t *testing.T) {
	br := &mockBudgetReader{
		dailyLimit:     5000,
		dailyUsed:      5000,
		remainingDaily: 0,
	}
	r := newService(br).GetReport(context.Background(), domusage.PeriodDay)

	if !r.Budget().IsExhausted() {
		t.Error("budget should be exhausted when remaining is 0")
	}
}
