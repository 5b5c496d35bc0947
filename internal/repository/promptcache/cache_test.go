package promptcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchcraft/internal/db"
	"github.com/kailas-cloud/matchcraft/internal/db/memory"
)

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_prompt_cache_total"},
		[]string{"feature", "result"})
}

func TestKey(t *testing.T) {
	a := Key("enhance_bio", "gpt-4o-mini", []byte(`{"bio":"x"}`))
	if !strings.HasPrefix(a, "matchcraft:prompt_cache:") {
		t.Fatalf("unexpected prefix: %s", a)
	}
	if a != Key("enhance_bio", "gpt-4o-mini", []byte(`{"bio":"x"}`)) {
		t.Error("key must be deterministic")
	}
	for _, other := range []string{
		Key("enhance_music", "gpt-4o-mini", []byte(`{"bio":"x"}`)),
		Key("enhance_bio", "gemini-2.0-flash", []byte(`{"bio":"x"}`)),
		Key("enhance_bio", "gpt-4o-mini", []byte(`{"bio":"y"}`)),
		Key("enhance_bi", "ogpt-4o-mini", []byte(`{"bio":"x"}`)),
	} {
		if other == a {
			t.Errorf("collision with %s", other)
		}
	}
}

func TestPutGet_RoundTrip(t *testing.T) {
	cnt := newCounter()
	c := New(memory.New(), time.Hour, cnt, zap.NewNop())
	ctx := context.Background()
	in := []byte(`{"bio":"x"}`)
	key := Key("enhance_bio", "m", in)

	if _, ok := c.Get(ctx, "enhance_bio", "m", in); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.now = func() time.Time { return time.UnixMilli(42) }
	c.Put(ctx, "enhance_bio", "m", in, []byte(`{"bio":"hi"}`))

	got, ok := c.Get(ctx, "enhance_bio", "m", in)
	if !ok {
		t.Fatal("expected hit")
	}
	if string(got) != `{"bio":"hi"}` {
		t.Errorf("output = %s", got)
	}
	e, _ := c.entry(ctx, "enhance_bio", key)
	if e.Model != "m" || e.Feature != "enhance_bio" || e.CreatedAt != 42 {
		t.Errorf("entry = %+v", e)
	}

	if v := testutil.ToFloat64(cnt.WithLabelValues("enhance_bio", "hit")); v != 2 {
		t.Errorf("hits = %v", v)
	}
	if v := testutil.ToFloat64(cnt.WithLabelValues("enhance_bio", "miss")); v != 1 {
		t.Errorf("misses = %v", v)
	}
}

func TestPut_UsesTTL(t *testing.T) {
	var gotTTL time.Duration
	ms := &mockKVStore{setFn: func(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
		gotTTL = ttl
		return nil
	}}
	c := New(ms, 15*time.Minute, nil, zap.NewNop())
	c.Put(context.Background(), "enhance_bio", "m", []byte("in"), []byte("{}"))
	if gotTTL != 15*time.Minute {
		t.Errorf("ttl = %v", gotTTL)
	}
}

func TestPut_DisabledWithZeroTTL(t *testing.T) {
	ms := &mockKVStore{setFn: func(context.Context, string, []byte, time.Duration) error {
		t.Fatal("SetWithTTL must not be called")
		return nil
	}}
	New(ms, 0, nil, zap.NewNop()).Put(context.Background(), "enhance_bio", "m", []byte("in"), []byte("{}"))
}

func TestGet_StoreErrorIsMiss(t *testing.T) {
	ms := &mockKVStore{getFn: func(context.Context, string) ([]byte, error) {
		return nil, errors.New("timeout")
	}}
	c := New(ms, time.Hour, nil, zap.NewNop())
	if _, ok := c.Get(context.Background(), "enhance_bio", "m", []byte("in")); ok {
		t.Fatal("store error must read as a miss")
	}
}

func TestGet_CorruptEntryIsMiss(t *testing.T) {
	ms := &mockKVStore{getFn: func(context.Context, string) ([]byte, error) {
		return []byte{0xc1}, nil
	}}
	c := New(ms, time.Hour, nil, zap.NewNop())
	if _, ok := c.Get(context.Background(), "enhance_bio", "m", []byte("in")); ok {
		t.Fatal("corrupt entry must read as a miss")
	}
}

func TestPut_StoreErrorSwallowed(t *testing.T) {
	ms := &mockKVStore{setFn: func(context.Context, string, []byte, time.Duration) error {
		return errors.New("OOM")
	}}
	New(ms, time.Hour, nil, zap.NewNop()).Put(context.Background(), "enhance_bio", "m", []byte("in"), []byte("{}"))
}
