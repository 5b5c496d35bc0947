package matchcraft

import (
	"context"
	"sync"
	"time"
)

// --- Suggester mock ---

// fakeSuggester answers from a fixed table after an optional per-query delay.
type fakeSuggester struct {
	mu      sync.Mutex
	answers map[string][]Suggestion
	delays  map[string]time.Duration
	err     error
	queries []string
}

func (f *fakeSuggester) Suggest(ctx context.Context, q string) ([]Suggestion, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	delay := f.delays[q]
	items, err := f.answers[q], f.err
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return items, err
}

func (f *fakeSuggester) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

// collector records delivered results.
type collector struct {
	mu      sync.Mutex
	results []SuggestResult
	got     chan struct{}
}

func newCollector() *collector {
	return &collector{got: make(chan struct{}, 16)}
}

func (c *collector) add(r SuggestResult) {
	c.mu.Lock()
	c.results = append(c.results, r)
	c.mu.Unlock()
	c.got <- struct{}{}
}

func (c *collector) all() []SuggestResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SuggestResult(nil), c.results...)
}

// --- helpers ---

func testClient(t interface{ Fatalf(string, ...any) }) *Client {
	c, err := New(context.Background(), WithMemory())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}
