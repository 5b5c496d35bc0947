package memory

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/kailas-cloud/matchcraft/internal/db"
	"github.com/kailas-cloud/matchcraft/internal/domain/search/filter"
)

// ftIndex is an inverted index over hashes under the definition's prefixes.
// Documents get dense uint32 ids; tag postings are roaring bitmaps.
type ftIndex struct {
	def *db.IndexDefinition

	ids     map[string]uint32
	keys    []string // id -> key; "" once removed
	live    *roaring.Bitmap
	tags    map[string]map[string]*roaring.Bitmap // field -> value -> docs
	numbers map[string]map[uint32]float64         // field -> doc -> value
	docTags map[uint32]map[string][]string        // doc -> field -> values, for removal
}

func newFTIndex(def *db.IndexDefinition) *ftIndex {
	return &ftIndex{
		def:     def,
		ids:     make(map[string]uint32),
		live:    roaring.New(),
		tags:    make(map[string]map[string]*roaring.Bitmap),
		numbers: make(map[string]map[uint32]float64),
		docTags: make(map[uint32]map[string][]string),
	}
}

func (x *ftIndex) covers(key string) bool {
	if len(x.def.Prefixes) == 0 {
		return true
	}
	for _, p := range x.def.Prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

func (x *ftIndex) reindex(key string, h map[string]string) {
	if !x.covers(key) {
		return
	}
	x.remove(key)

	id, ok := x.ids[key]
	if !ok {
		id = uint32(len(x.keys))
		x.ids[key] = id
		x.keys = append(x.keys, key)
	}
	x.keys[id] = key
	x.live.Add(id)

	for i := range x.def.Fields {
		f := &x.def.Fields[i]
		raw, ok := h[f.Name]
		if !ok {
			continue
		}
		name := fieldName(f)
		switch f.Type {
		case db.IndexFieldTag:
			vals := splitTag(f, raw)
			if len(vals) == 0 {
				continue
			}
			if x.docTags[id] == nil {
				x.docTags[id] = make(map[string][]string)
			}
			x.docTags[id][name] = vals
			for _, v := range vals {
				x.posting(name, v).Add(id)
			}
		case db.IndexFieldNumeric:
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			if x.numbers[name] == nil {
				x.numbers[name] = make(map[uint32]float64)
			}
			x.numbers[name][id] = n
		}
	}
}

func (x *ftIndex) remove(key string) {
	id, ok := x.ids[key]
	if !ok || !x.live.Contains(id) {
		return
	}
	x.live.Remove(id)
	for name, vals := range x.docTags[id] {
		for _, v := range vals {
			if bm := x.tags[name][v]; bm != nil {
				bm.Remove(id)
				if bm.IsEmpty() {
					delete(x.tags[name], v)
				}
			}
		}
	}
	delete(x.docTags, id)
	for _, m := range x.numbers {
		delete(m, id)
	}
}

func (x *ftIndex) posting(field, value string) *roaring.Bitmap {
	byValue := x.tags[field]
	if byValue == nil {
		byValue = make(map[string]*roaring.Bitmap)
		x.tags[field] = byValue
	}
	bm := byValue[value]
	if bm == nil {
		bm = roaring.New()
		byValue[value] = bm
	}
	return bm
}

func fieldName(f *db.IndexField) string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

func splitTag(f *db.IndexField, raw string) []string {
	parts := strings.Split(raw, f.Separator())
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !f.TagCaseSensitive {
			p = strings.ToLower(p)
		}
		out = append(out, p)
	}
	return out
}

// eval resolves a filter expression to the set of matching doc ids.
func (x *ftIndex) eval(expr filter.Expression) (*roaring.Bitmap, error) {
	result := x.live.Clone()
	for _, c := range expr.Must() {
		bm, err := x.condition(c)
		if err != nil {
			return nil, err
		}
		result.And(bm)
	}
	if len(expr.Should()) > 0 {
		either := roaring.New()
		for _, c := range expr.Should() {
			bm, err := x.condition(c)
			if err != nil {
				return nil, err
			}
			either.Or(bm)
		}
		result.And(either)
	}
	for _, c := range expr.MustNot() {
		bm, err := x.condition(c)
		if err != nil {
			return nil, err
		}
		result.AndNot(bm)
	}
	return result, nil
}

func (x *ftIndex) condition(c filter.Condition) (*roaring.Bitmap, error) {
	f, ok := x.def.Field(c.Key())
	if !ok {
		return nil, errors.New("unknown field: " + c.Key())
	}
	name := fieldName(f)

	if c.IsRange() {
		if f.Type != db.IndexFieldNumeric {
			return nil, errors.New("range filter on non-numeric field: " + c.Key())
		}
		bm := roaring.New()
		for id, v := range x.numbers[name] {
			if c.Range().Contains(v) {
				bm.Add(id)
			}
		}
		return bm, nil
	}

	if f.Type != db.IndexFieldTag {
		return nil, errors.New("tag filter on non-tag field: " + c.Key())
	}
	out := roaring.New()
	for _, v := range c.Values() {
		if !f.TagCaseSensitive {
			v = strings.ToLower(v)
		}
		if bm := x.tags[name][v]; bm != nil {
			out.Or(bm)
		}
	}
	return out, nil
}

// --- db.IndexManager / db.Searcher ---

// CreateIndex registers an index and backfills existing hashes.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if def == nil {
		return errors.New("index definition is required")
	}
	if err := def.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	idx := newFTIndex(def)
	keys := make([]string, 0, len(s.hashes))
	for k := range s.hashes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		idx.reindex(k, s.hashes[k])
	}
	s.indexes[def.Name] = idx
	return nil
}

// DropIndex removes an index, keeping documents.
func (s *Store) DropIndex(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[name]; !ok {
		return db.ErrIndexNotFound
	}
	delete(s.indexes, name)
	return nil
}

// IndexExists reports whether an index is registered.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.indexes[name]
	return ok, nil
}

// SearchList evaluates the filter and pages the hits ordered by SortBy
// (ascending) or by key.
func (s *Store) SearchList(_ context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if q == nil || q.IndexName == "" {
		return nil, errors.New("index name is required")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, errors.New("offset and limit must not be negative")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexes[q.IndexName]
	if !ok {
		return nil, db.ErrIndexNotFound
	}
	hits, err := idx.eval(q.Filters)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	keys := make([]string, 0, hits.GetCardinality())
	it := hits.Iterator()
	for it.HasNext() {
		keys = append(keys, idx.keys[it.Next()])
	}
	sortKeys(keys, s.hashes, q.SortBy)

	res := &db.SearchResult{Total: len(keys)}
	if q.Offset >= len(keys) {
		return res, nil
	}
	end := min(q.Offset+q.Limit, len(keys))
	for _, k := range keys[q.Offset:end] {
		res.Entries = append(res.Entries, db.SearchEntry{Key: k, Fields: project(s.hashes[k], q.ReturnFields)})
	}
	return res, nil
}

// SearchCount returns the number of documents matching the filter.
func (s *Store) SearchCount(_ context.Context, q *db.ListQuery) (int, error) {
	if q == nil || q.IndexName == "" {
		return 0, errors.New("index name is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexes[q.IndexName]
	if !ok {
		return 0, db.ErrIndexNotFound
	}
	hits, err := idx.eval(q.Filters)
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	return int(hits.GetCardinality()), nil
}

func sortKeys(keys []string, hashes map[string]map[string]string, by string) {
	if by == "" {
		sort.Strings(keys)
		return
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := hashes[keys[i]][by], hashes[keys[j]][by]
		if a == b {
			return keys[i] < keys[j]
		}
		fa, errA := strconv.ParseFloat(a, 64)
		fb, errB := strconv.ParseFloat(b, 64)
		if errA == nil && errB == nil {
			return fa < fb
		}
		return a < b
	})
}

func project(h map[string]string, fields []string) map[string]string {
	if len(fields) == 0 {
		return copyMap(h)
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := h[f]; ok {
			out[f] = v
		}
	}
	return out
}
