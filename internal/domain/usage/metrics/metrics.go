package metrics

// Metrics holds prompt provider usage for a time period.
type Metrics struct {
	promptRequests int
	cacheHits      int
	tokens         int
}

// New creates a Metrics snapshot.
func New(requests, cacheHits, tokens int) Metrics {
	return Metrics{promptRequests: requests, cacheHits: cacheHits, tokens: tokens}
}

// PromptRequests returns the number of prompt calls, cached ones included.
func (m Metrics) PromptRequests() int { return m.promptRequests }

// CacheHits returns the number of prompt calls answered from cache.
func (m Metrics) CacheHits() int { return m.cacheHits }

// Tokens returns the total tokens consumed.
func (m Metrics) Tokens() int { return m.tokens }
