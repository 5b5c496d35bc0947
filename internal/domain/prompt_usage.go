package domain

import "context"

type promptUsageKey struct{}

// PromptUsage collects token usage for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// the service writes after generation; the handler reads it for response headers.
type PromptUsage struct {
	TotalTokens int
	Cached      bool // true when the answer came from the response cache
}

// NewContextWithUsage returns a context with a usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *PromptUsage) {
	u := &PromptUsage{}
	return context.WithValue(ctx, promptUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *PromptUsage {
	u, _ := ctx.Value(promptUsageKey{}).(*PromptUsage)
	return u
}

// AddTokens records consumed tokens. Safe on a nil receiver.
func (u *PromptUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
	}
}

// MarkCached flags the request as served from cache. Safe on a nil receiver.
func (u *PromptUsage) MarkCached() {
	if u != nil {
		u.Cached = true
	}
}
