package suggest

import (
	"context"

	"github.com/kailas-cloud/matchcraft/internal/domain/search/suggestion"
)

// Retriever runs the two suggestion retrieval branches. q is normalized.
type Retriever interface {
	NamePrefix(ctx context.Context, q string, limit int) ([]suggestion.Suggestion, error)
	TermMatch(ctx context.Context, q string, limit int) ([]suggestion.Suggestion, error)
}
