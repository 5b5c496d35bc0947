// Package promptcache stores checked prompt outputs keyed by a hash of the
// feature, the model and the rendered input.
package promptcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchcraft/internal/db"
	"github.com/kailas-cloud/matchcraft/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "prompt_cache:"

// store is the consumer interface for the prompt cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Entry is a cached, already validated prompt output.
type Entry struct {
	Feature   string `msgpack:"f"`
	Model     string `msgpack:"m"`
	Output    []byte `msgpack:"o"` // output JSON
	CreatedAt int64  `msgpack:"c"` // unix millis
}

// Cache reads and writes entries with a fixed TTL. Store failures degrade to
// cache misses.
type Cache struct {
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a prompt cache.
// cacheTotal is a counter vec with labels "feature" and "result" ("hit"/"miss"), passed explicitly.
func New(s store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	return &Cache{store: s, ttl: ttl, cacheTotal: cacheTotal, logger: logger, now: time.Now}
}

// Key derives the cache key of a (feature, model, input) triple.
func Key(feature, model string, input []byte) string {
	h := sha256.New()
	h.Write([]byte(feature))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write(input)
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Get returns the output JSON cached for (feature, model, input).
func (c *Cache) Get(ctx context.Context, feature, model string, input []byte) ([]byte, bool) {
	e, ok := c.entry(ctx, feature, Key(feature, model, input))
	return e.Output, ok
}

func (c *Cache) entry(ctx context.Context, feature, key string) (Entry, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached prompt output", zap.String("key", key), zap.Error(err))
		}
		c.inc(feature, "miss")
		return Entry{}, false
	}

	var e Entry
	if err := msgpack.Unmarshal(data, &e); err != nil || len(e.Output) == 0 {
		c.logger.Warn("Failed to decode cached prompt output", zap.String("key", key), zap.Error(err))
		c.inc(feature, "miss")
		return Entry{}, false
	}
	c.inc(feature, "hit")
	return e, true
}

// Put stores a checked output for (feature, model, input). Errors are
// logged, never returned.
func (c *Cache) Put(ctx context.Context, feature, model string, input, output []byte) {
	if c.ttl <= 0 {
		return
	}
	key := Key(feature, model, input)
	e := Entry{Feature: feature, Model: model, Output: output, CreatedAt: c.now().UnixMilli()}
	data, err := msgpack.Marshal(e)
	if err != nil {
		c.logger.Warn("Failed to encode prompt output", zap.Error(fmt.Errorf("msgpack: %w", err)))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache prompt output", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) inc(feature, result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(feature, result).Inc()
	}
}
