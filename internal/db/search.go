package db

import "github.com/kailas-cloud/matchcraft/internal/domain/search/filter"

// ListQuery is the input for a filtered, paginated FT.SEARCH.
// An empty filter matches every indexed document.
type ListQuery struct {
	IndexName    string
	Filters      filter.Expression
	Offset       int
	Limit        int
	SortBy       string
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
