package prompt

import (
	"context"

	domprofile "github.com/kailas-cloud/matchcraft/internal/domain/profile"
)

// Cache stores checked feature outputs keyed by (feature, model, input).
type Cache interface {
	Get(ctx context.Context, feature, model string, input []byte) ([]byte, bool)
	Put(ctx context.Context, feature, model string, input, output []byte)
}

// ProfileReader loads the profiles a match suggestion is built from.
type ProfileReader interface {
	Get(ctx context.Context, id string) (domprofile.Record, error)
	GetMany(ctx context.Context, ids []string) ([]domprofile.Record, error)
}

// CacheHitRecorder counts requests answered from the cache.
type CacheHitRecorder interface {
	RecordCacheHit()
}
