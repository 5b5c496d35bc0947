// Package profile persists user records as hashes, keeps the display-name
// lexicographic index in step and lists records through the FT index.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/matchcraft/internal/db"
	"github.com/kailas-cloud/matchcraft/internal/domain"
	domprofile "github.com/kailas-cloud/matchcraft/internal/domain/profile"
	"github.com/kailas-cloud/matchcraft/internal/domain/search/filter"
)

// store is the consumer interface for user records (ISP).
//
//nolint:interfacebloat // profile repo needs hash, sorted set and index operations
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	ZAdd(ctx context.Context, key string, members ...db.ZMember) error
	ZRem(ctx context.Context, key string, members ...string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, q *db.ListQuery) (int, error)
}

// Default and maximum page sizes of List.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Repo implements usecase/profile.Repository.
type Repo struct {
	store store
}

// New creates a profile repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the users index if it is missing.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	if err := r.store.CreateIndex(ctx, Index()); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create users index: %w", err)
	}
	return nil
}

// Save writes rec in full and moves its name index entry when the display
// name changed. prevName is the stored display name, empty on create.
func (r *Repo) Save(ctx context.Context, rec domprofile.Record, prevName string) error {
	key := domain.UserKey(rec.ID)
	if err := r.store.HSet(ctx, key, domprofile.ToStorage(rec)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}

	member := domain.NameMember(rec.DisplayName, rec.ID)
	if prevName != "" {
		if old := domain.NameMember(prevName, rec.ID); old != member {
			if err := r.store.ZRem(ctx, domain.UserNamesKey, old); err != nil {
				return fmt.Errorf("zrem name %s: %w", rec.ID, err)
			}
		}
	}
	if err := r.store.ZAdd(ctx, domain.UserNamesKey, db.ZMember{Member: member}); err != nil {
		return fmt.Errorf("zadd name %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns a user record by id.
func (r *Repo) Get(ctx context.Context, id string) (domprofile.Record, error) {
	key := domain.UserKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domprofile.Record{}, domain.ErrUserNotFound
		}
		return domprofile.Record{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	rec := domprofile.FromStorage(m)
	if rec.ID == "" {
		rec.ID = id
	}
	return rec, nil
}

// GetMany returns the records that exist among ids, in the given order.
func (r *Repo) GetMany(ctx context.Context, ids []string) ([]domprofile.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = domain.UserKey(id)
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}
	out := make([]domprofile.Record, 0, len(maps))
	for i, m := range maps {
		if m == nil {
			continue
		}
		rec := domprofile.FromStorage(m)
		if rec.ID == "" {
			rec.ID = ids[i]
		}
		out = append(out, rec)
	}
	return out, nil
}

// Delete removes the record and its name index entry.
func (r *Repo) Delete(ctx context.Context, id string) error {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	key := domain.UserKey(id)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if err := r.store.ZRem(ctx, domain.UserNamesKey, domain.NameMember(rec.DisplayName, id)); err != nil {
		return fmt.Errorf("zrem name %s: %w", id, err)
	}
	return nil
}

// IDs returns the ids of every stored record.
func (r *Repo) IDs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, domain.UserKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = domain.UserIDFromKey(k)
	}
	return ids, nil
}

// List returns records ordered by creation time with offset cursors.
func (r *Repo) List(ctx context.Context, f domprofile.ListFilter, cursor string, limit int) (
	[]domprofile.Record, string, error,
) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return nil, "", fmt.Errorf("%w: invalid cursor %q", domain.ErrInvalidRequest, cursor)
		}
		offset = parsed
	}

	expr, err := listExpression(f)
	if err != nil {
		return nil, "", err
	}

	res, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName: domain.UsersIndex,
		Filters:   expr,
		Offset:    offset,
		Limit:     limit + 1,
		SortBy:    domprofile.FieldCreatedAt,
	})
	if err != nil {
		return nil, "", fmt.Errorf("search users: %w", err)
	}
	if res == nil || len(res.Entries) == 0 {
		return nil, "", nil
	}

	recs := make([]domprofile.Record, 0, limit)
	for i, e := range res.Entries {
		if i >= limit {
			break
		}
		rec := domprofile.FromStorage(e.Fields)
		if rec.ID == "" {
			rec.ID = domain.UserIDFromKey(e.Key)
		}
		recs = append(recs, rec)
	}

	var next string
	if len(res.Entries) > limit {
		next = strconv.Itoa(offset + limit)
	}
	return recs, next, nil
}

// Count returns the number of records matching f.
func (r *Repo) Count(ctx context.Context, f domprofile.ListFilter) (int, error) {
	expr, err := listExpression(f)
	if err != nil {
		return 0, err
	}
	n, err := r.store.SearchCount(ctx, &db.ListQuery{IndexName: domain.UsersIndex, Filters: expr})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func listExpression(f domprofile.ListFilter) (filter.Expression, error) {
	var must []filter.Condition
	if f.Gender != domprofile.GenderUnspecified {
		c, err := filter.NewMatch(domprofile.FieldGender, string(f.Gender))
		if err != nil {
			return filter.Expression{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
		must = append(must, c)
	}
	if f.MinAge > 0 || f.MaxAge > 0 {
		var lo, hi *float64
		if f.MinAge > 0 {
			v := float64(f.MinAge)
			lo = &v
		}
		if f.MaxAge > 0 {
			v := float64(f.MaxAge)
			hi = &v
		}
		if lo != nil && hi != nil && *lo > *hi {
			return filter.Expression{}, fmt.Errorf("%w: min_age exceeds max_age", domain.ErrInvalidRequest)
		}
		rng, err := filter.NewRangeFilter(nil, lo, nil, hi)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
		c, err := filter.NewRange(domprofile.FieldAge, rng)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
		must = append(must, c)
	}
	expr, err := filter.All(must...)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return expr, nil
}
