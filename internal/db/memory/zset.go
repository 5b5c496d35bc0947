package memory

import (
	"context"
	"sort"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/kailas-cloud/matchcraft/internal/db"
)

// sortedSet keeps scores by member plus a patricia trie over member names
// for lexicographic prefix scans.
type sortedSet struct {
	scores map[string]float64
	lex    *patricia.Trie
}

func newSortedSet() *sortedSet {
	return &sortedSet{scores: make(map[string]float64), lex: patricia.NewTrie()}
}

// ordered returns members sorted by (score, member).
func (z *sortedSet) ordered() []db.ZMember {
	out := make([]db.ZMember, 0, len(z.scores))
	for m, sc := range z.scores {
		out = append(out, db.ZMember{Member: m, Score: sc})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Member < out[j].Member
	})
	return out
}

// ZAdd adds or rescores members.
func (s *Store) ZAdd(_ context.Context, key string, members ...db.ZMember) error {
	if len(members) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	z, ok := s.zsets[key]
	if !ok {
		z = newSortedSet()
		s.zsets[key] = z
	}
	for _, m := range members {
		z.scores[m.Member] = m.Score
		z.lex.Set(patricia.Prefix(m.Member), struct{}{})
	}
	return nil
}

// ZRem removes members; an emptied set is deleted like in Redis.
func (s *Store) ZRem(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	z, ok := s.zsets[key]
	if !ok {
		return nil
	}
	for _, m := range members {
		delete(z.scores, m)
		z.lex.Delete(patricia.Prefix(m))
	}
	if len(z.scores) == 0 {
		delete(s.zsets, key)
	}
	return nil
}

// ZRangeByPrefix returns up to limit members starting with prefix in byte order.
func (s *Store) ZRangeByPrefix(_ context.Context, key, prefix string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	z, ok := s.zsets[key]
	if !ok || limit <= 0 {
		return nil, nil
	}

	var out []string
	err := z.lex.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, _ patricia.Item) error {
		out = append(out, string(p))
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpZRangeByLex, Err: err}
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ZRange returns members by rank; negative indexes count from the end.
func (s *Store) ZRange(_ context.Context, key string, start, stop int64, rev bool) ([]db.ZMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	z, ok := s.zsets[key]
	if !ok {
		return nil, nil
	}
	all := z.ordered()
	if rev {
		for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
			all[i], all[j] = all[j], all[i]
		}
	}

	n := int64(len(all))
	if start < 0 {
		start = max(n+start, 0)
	}
	if stop < 0 {
		stop = n + stop
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return nil, nil
	}
	return all[start : stop+1], nil
}

// ZCard returns the member count.
func (s *Store) ZCard(_ context.Context, key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if z, ok := s.zsets[key]; ok {
		return int64(len(z.scores)), nil
	}
	return 0, nil
}
