package prompt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchcraft/internal/domain"
)

// BudgetAction defines behavior when the token budget is exceeded.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but allows the request.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject blocks the request.
	BudgetActionReject BudgetAction = "reject"
)

// BudgetStore is the persistence interface for budget counters.
// Implementations must be idempotent (IncrBy can be called repeatedly).
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// Persisted counter names.
const (
	counterTokens    = "tokens"
	counterRequests  = "requests"
	counterCacheHits = "cache_hits"
)

type counters struct {
	tokens    int64
	requests  int64
	cacheHits int64
}

func (c *counters) get(name string) *int64 {
	switch name {
	case counterTokens:
		return &c.tokens
	case counterRequests:
		return &c.requests
	default:
		return &c.cacheHits
	}
}

// BudgetTracker is an in-memory token budget tracker with optional persistence.
// Check is in-memory only. Record updates memory first, then writes behind
// to the store.
type BudgetTracker struct {
	mu             sync.Mutex
	day            counters
	month          counters
	dailyLimit     int64
	monthlyLimit   int64
	action         BudgetAction
	provider       string
	lastDayReset   time.Time
	lastMonthReset time.Time
	store          BudgetStore
	logger         *zap.Logger
	now            func() time.Time
}

// NewBudgetTracker creates a budget tracker with the given limits. A zero
// limit means unlimited.
func NewBudgetTracker(
	provider string, dailyLimit, monthlyLimit int64,
	action BudgetAction, logger *zap.Logger,
) *BudgetTracker {
	b := &BudgetTracker{
		dailyLimit:   dailyLimit,
		monthlyLimit: monthlyLimit,
		action:       action,
		provider:     provider,
		logger:       logger,
		now:          time.Now,
	}
	now := b.clock()
	b.lastDayReset = truncateToDay(now)
	b.lastMonthReset = truncateToMonth(now)
	return b
}

// WithStore attaches a persistence store and loads current counters.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.store = store
	b.loadFromStore(ctx)
	return b
}

func (b *BudgetTracker) loadFromStore(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clock()
	for _, name := range []string{counterTokens, counterRequests, counterCacheHits} {
		if val, err := b.store.Get(ctx, b.dailyKey(name, now)); err == nil {
			*b.day.get(name) = val
		} else {
			b.logger.Warn("Failed to load daily budget from store", zap.String("counter", name), zap.Error(err))
		}
		if val, err := b.store.Get(ctx, b.monthlyKey(name, now)); err == nil {
			*b.month.get(name) = val
		} else {
			b.logger.Warn("Failed to load monthly budget from store", zap.String("counter", name), zap.Error(err))
		}
	}

	b.logger.Info("Budget loaded from store",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.day.tokens),
		zap.Int64("monthly_used", b.month.tokens),
	)
}

func (b *BudgetTracker) dailyKey(counter string, t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:%s:daily:%s", domain.KeyPrefix, b.provider, counter, t.Format("2006-01-02"))
}

func (b *BudgetTracker) monthlyKey(counter string, t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:%s:monthly:%s", domain.KeyPrefix, b.provider, counter, t.Format("2006-01"))
}

// Check verifies the budget allows a new request. In-memory only (hot path).
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetIfNeeded()

	dailyExceeded := b.dailyLimit > 0 && b.day.tokens >= b.dailyLimit
	monthlyExceeded := b.monthlyLimit > 0 && b.month.tokens >= b.monthlyLimit

	if !dailyExceeded && !monthlyExceeded {
		return nil
	}

	if b.action == BudgetActionReject {
		return domain.ErrPromptQuotaExceeded
	}

	b.logger.Warn("Token budget exceeded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.day.tokens),
		zap.Int64("daily_limit", b.dailyLimit),
		zap.Int64("monthly_used", b.month.tokens),
		zap.Int64("monthly_limit", b.monthlyLimit),
	)
	return nil
}

// Record registers one provider call and the tokens it consumed.
func (b *BudgetTracker) Record(tokens int64) {
	b.add(map[string]int64{counterTokens: tokens, counterRequests: 1})
}

// RecordCacheHit registers a request answered from the response cache.
func (b *BudgetTracker) RecordCacheHit() {
	b.add(map[string]int64{counterRequests: 1, counterCacheHits: 1})
}

func (b *BudgetTracker) add(deltas map[string]int64) {
	b.mu.Lock()
	b.resetIfNeeded()
	for name, v := range deltas {
		*b.day.get(name) += v
		*b.month.get(name) += v
	}
	store := b.store
	now := b.clock()
	b.mu.Unlock()

	if store == nil {
		return
	}

	// Write-behind with a detached context so store latency never reaches the caller's deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for name, v := range deltas {
		if v == 0 {
			continue
		}
		for _, key := range []string{b.dailyKey(name, now), b.monthlyKey(name, now)} {
			if err := store.IncrBy(ctx, key, v); err != nil {
				b.logger.Warn("Failed to persist budget counter", zap.String("key", key), zap.Error(err))
			}
		}
	}
}

// RemainingDaily returns tokens left in the daily budget (-1 if unlimited).
func (b *BudgetTracker) RemainingDaily() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return remaining(b.dailyLimit, b.day.tokens)
}

// RemainingMonthly returns tokens left in the monthly budget (-1 if unlimited).
func (b *BudgetTracker) RemainingMonthly() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return remaining(b.monthlyLimit, b.month.tokens)
}

func remaining(limit, used int64) int64 {
	if limit == 0 {
		return -1 // unlimited
	}
	if used >= limit {
		return 0
	}
	return limit - used
}

// DailyLimit returns the daily token cap.
func (b *BudgetTracker) DailyLimit() int64 { return b.dailyLimit }

// MonthlyLimit returns the monthly token cap.
func (b *BudgetTracker) MonthlyLimit() int64 { return b.monthlyLimit }

// DailyUsed returns tokens consumed today.
func (b *BudgetTracker) DailyUsed() int64 { return b.snapshot(true).tokens }

// MonthlyUsed returns tokens consumed this month.
func (b *BudgetTracker) MonthlyUsed() int64 { return b.snapshot(false).tokens }

// DailyRequests returns prompt calls made today, cached ones included.
func (b *BudgetTracker) DailyRequests() int64 { return b.snapshot(true).requests }

// MonthlyRequests returns prompt calls made this month, cached ones included.
func (b *BudgetTracker) MonthlyRequests() int64 { return b.snapshot(false).requests }

// DailyCacheHits returns prompt calls answered from cache today.
func (b *BudgetTracker) DailyCacheHits() int64 { return b.snapshot(true).cacheHits }

// MonthlyCacheHits returns prompt calls answered from cache this month.
func (b *BudgetTracker) MonthlyCacheHits() int64 { return b.snapshot(false).cacheHits }

func (b *BudgetTracker) snapshot(daily bool) counters {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	if daily {
		return b.day
	}
	return b.month
}

// resetIfNeeded zeroes counters when the day or month rolls over.
func (b *BudgetTracker) resetIfNeeded() {
	now := b.clock()
	today := truncateToDay(now)
	thisMonth := truncateToMonth(now)

	if today.After(b.lastDayReset) {
		b.day = counters{}
		b.lastDayReset = today
	}
	if thisMonth.After(b.lastMonthReset) {
		b.month = counters{}
		b.lastMonthReset = thisMonth
	}
}

func (b *BudgetTracker) clock() time.Time {
	return b.now().UTC()
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
