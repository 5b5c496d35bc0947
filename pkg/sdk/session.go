package matchcraft

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// suggestion lookup runs.
const DefaultDebounce = 150 * time.Millisecond

// Suggester looks up suggestions for a query. *Client implements it.
type Suggester interface {
	Suggest(ctx context.Context, q string) ([]Suggestion, error)
}

// SuggestResult is delivered to the session callback for the latest query.
// Items is empty, never nil, when Err is set.
type SuggestResult struct {
	RequestID uint64
	Query     string
	Items     []Suggestion
	Err       error
}

// SessionOption configures a SuggestSession.
type SessionOption func(*SuggestSession)

// WithDebounce overrides DefaultDebounce. Zero runs each lookup immediately.
func WithDebounce(d time.Duration) SessionOption {
	return func(s *SuggestSession) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// SuggestSession debounces the keystrokes of one search box. Every Type call
// issues a new request id; a lookup result is delivered only when its id is
// still the latest at resolution time. Superseded lookups run to completion
// and their results are dropped.
type SuggestSession struct {
	ctx      context.Context
	lookup   Suggester
	onResult func(SuggestResult)
	delay    time.Duration
	obs      *observer

	mu     sync.Mutex
	latest uint64
	timer  *time.Timer
	closed bool
	wg     sync.WaitGroup

	// deliverMu serializes onResult; delivered is the newest id handed out.
	deliverMu sync.Mutex
	delivered uint64
}

// NewSuggestSession starts a session over lookup. onResult is called from a
// background goroutine, at most once per request id. Calls never overlap, and
// a result is never delivered after one with a newer id.
func NewSuggestSession(
	ctx context.Context, lookup Suggester, onResult func(SuggestResult), opts ...SessionOption,
) *SuggestSession {
	s := &SuggestSession{
		ctx:      ctx,
		lookup:   lookup,
		onResult: onResult,
		delay:    DefaultDebounce,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewSuggestSession starts a search-as-you-type session backed by the client.
func (c *Client) NewSuggestSession(
	ctx context.Context, onResult func(SuggestResult), opts ...SessionOption,
) *SuggestSession {
	s := NewSuggestSession(ctx, c, onResult, opts...)
	s.obs = c.obs
	return s
}

// Type records a keystroke with the full current input and restarts the
// debounce timer. It returns the request id issued for q, or 0 after Close.
func (s *SuggestSession) Type(q string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}
	s.latest++
	id := s.latest
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() { s.fire(id, q) })
	return id
}

// Latest returns the most recently issued request id.
func (s *SuggestSession) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Close stops the pending timer and waits for in-flight lookups. No result
// is delivered after Close returns.
func (s *SuggestSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *SuggestSession) fire(id uint64, q string) {
	s.mu.Lock()
	if s.closed || id != s.latest {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	start := time.Now()
	items, err := s.lookup.Suggest(s.ctx, q)
	if err != nil || items == nil {
		items = []Suggestion{}
	}

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if !s.current(id) || id <= s.delivered {
		s.obs.discarded("suggest_session", start)
		return
	}
	s.delivered = id
	s.obs.observe("suggest_session", start, err)
	s.onResult(SuggestResult{RequestID: id, Query: q, Items: items, Err: err})
}

func (s *SuggestSession) current(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && id == s.latest
}
