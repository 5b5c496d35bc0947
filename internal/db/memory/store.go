// Package memory implements db.Store in process memory. It backs local runs
// and usecase tests; it mirrors the Redis driver's observable behavior for
// hashes, counters, sorted sets and FT listing over HASH indexes.
package memory

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/kailas-cloud/matchcraft/internal/db"
)

var _ db.Store = (*Store)(nil)

type kvEntry struct {
	value   []byte
	expires time.Time // zero means no expiry
}

// Store is a mutex-guarded in-memory db.Store.
type Store struct {
	mu      sync.RWMutex
	hashes  map[string]map[string]string
	kv      map[string]*kvEntry
	zsets   map[string]*sortedSet
	indexes map[string]*ftIndex
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for key expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		hashes:  make(map[string]map[string]string),
		kv:      make(map[string]*kvEntry),
		zsets:   make(map[string]*sortedSet),
		indexes: make(map[string]*ftIndex),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// --- hashes ---

// HSet merges fields into the hash at key.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return &db.Error{Op: db.OpHSet, Err: errNoFields(key)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hset(key, fields)
	return nil
}

// HSetMulti applies several HSETs atomically.
func (s *Store) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	for _, it := range items {
		if len(it.Fields) == 0 {
			return &db.Error{Op: db.OpHSet, Err: errNoFields(it.Key)}
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		s.hset(it.Key, it.Fields)
	}
	return nil
}

func (s *Store) hset(key string, fields map[string]string) {
	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		s.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	for _, idx := range s.indexes {
		idx.reindex(key, h)
	}
}

// HGetAll returns a copy of the hash at key.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hashes[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return copyMap(h), nil
}

// HGetAllMulti returns copies of several hashes; missing keys yield nil.
func (s *Store) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		if h, ok := s.hashes[k]; ok {
			out[i] = copyMap(h)
		}
	}
	return out, nil
}

// Del removes a key of any type.
func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hashes[key]; ok {
		delete(s.hashes, key)
		for _, idx := range s.indexes {
			idx.remove(key)
		}
	}
	delete(s.kv, key)
	delete(s.zsets, key)
	return nil
}

// Exists reports whether a live key of any type exists.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exists(key), nil
}

func (s *Store) exists(key string) bool {
	if _, ok := s.hashes[key]; ok {
		return true
	}
	if _, ok := s.zsets[key]; ok {
		return true
	}
	_, ok := s.liveKV(key)
	return ok
}

// Scan returns every key matching a glob pattern, sorted.
func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	match := func(k string) error {
		ok, err := path.Match(pattern, k)
		if err != nil {
			return &db.Error{Op: db.OpScan, Err: err}
		}
		if ok {
			keys = append(keys, k)
		}
		return nil
	}
	for k := range s.hashes {
		if err := match(k); err != nil {
			return nil, err
		}
	}
	for k := range s.zsets {
		if err := match(k); err != nil {
			return nil, err
		}
	}
	for k := range s.kv {
		if _, live := s.liveKV(k); !live {
			continue
		}
		if err := match(k); err != nil {
			return nil, err
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// --- strings ---

func (s *Store) liveKV(key string) (*kvEntry, bool) {
	e, ok := s.kv[key]
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		return nil, false
	}
	return e, true
}

// Get returns the value at key or ErrKeyNotFound.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.liveKV(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores a value without expiry.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = &kvEntry{value: append([]byte(nil), value...)}
	return nil
}

// SetWithTTL stores a value that expires after ttl.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = &kvEntry{value: append([]byte(nil), value...), expires: s.now().Add(ttl)}
	return nil
}

// IncrBy increments the integer at key, creating it at zero.
func (s *Store) IncrBy(_ context.Context, key string, val int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.liveKV(key)
	if !ok {
		e = &kvEntry{}
		s.kv[key] = e
	}
	var cur int64
	if len(e.value) > 0 {
		n, err := strconv.ParseInt(string(e.value), 10, 64)
		if err != nil {
			return &db.Error{Op: db.OpIncrBy, Err: err}
		}
		cur = n
	}
	e.value = []byte(strconv.FormatInt(cur+val, 10))
	return nil
}

// Expire sets a TTL on a string key. With nx only keys without TTL are touched.
func (s *Store) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.liveKV(key)
	if !ok {
		return nil
	}
	if nx && !e.expires.IsZero() {
		return nil
	}
	e.expires = s.now().Add(ttl)
	return nil
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func errNoFields(key string) error { return fmt.Errorf("key %s: no fields", key) }
