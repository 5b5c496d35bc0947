// Package search implements the two suggestion retrieval branches: a
// lexicographic range scan over lowercased display names and an exact
// containment match on the searchTerms tag field.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/matchcraft/internal/db"
	"github.com/kailas-cloud/matchcraft/internal/domain"
	domprofile "github.com/kailas-cloud/matchcraft/internal/domain/profile"
	"github.com/kailas-cloud/matchcraft/internal/domain/search/filter"
	"github.com/kailas-cloud/matchcraft/internal/domain/search/suggestion"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	ZRangeByPrefix(ctx context.Context, key, prefix string, limit int) ([]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

// suggestionFields are the hash fields a suggestion is projected from.
var suggestionFields = []string{
	domprofile.FieldID,
	domprofile.FieldDisplayName,
	domprofile.FieldPhotoURL,
	domprofile.FieldAge,
	domprofile.FieldProfession,
	domprofile.FieldLocation,
}

// Repo implements usecase/suggest.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// NamePrefix returns up to limit users whose lowercased display name lies in
// [q, q+"\xff"). Hits are checked against the stored display name, so stale
// index entries are skipped. q must already be normalized.
func (r *Repo) NamePrefix(ctx context.Context, q string, limit int) ([]suggestion.Suggestion, error) {
	members, err := r.store.ZRangeByPrefix(ctx, domain.UserNamesKey, q, limit)
	if err != nil {
		return nil, fmt.Errorf("name range %q: %w", q, err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	keys := make([]string, len(members))
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = domain.IDFromNameMember(m)
		keys[i] = domain.UserKey(ids[i])
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hydrate name hits: %w", err)
	}

	out := make([]suggestion.Suggestion, 0, len(maps))
	for i, m := range maps {
		// A name entry can briefly outlive its record during delete.
		if m == nil {
			continue
		}
		// Concurrent renames can leave an entry for a name the record no
		// longer has.
		s := project(ids[i], m)
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(s.DisplayName)), q) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// TermMatch returns up to limit users whose searchTerms contain q exactly.
func (r *Repo) TermMatch(ctx context.Context, q string, limit int) ([]suggestion.Suggestion, error) {
	cond, err := filter.NewMatch(domprofile.FieldSearchTerms, q)
	if err != nil {
		return nil, fmt.Errorf("term filter: %w", err)
	}
	expr, err := filter.All(cond)
	if err != nil {
		return nil, fmt.Errorf("term filter: %w", err)
	}

	sr, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName:    domain.UsersIndex,
		Filters:      expr,
		Limit:        limit,
		ReturnFields: suggestionFields,
	})
	if err != nil {
		return nil, fmt.Errorf("term search %q: %w", q, err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	out := make([]suggestion.Suggestion, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		out = append(out, project(domain.UserIDFromKey(e.Key), e.Fields))
	}
	return out, nil
}

func project(id string, fields map[string]string) suggestion.Suggestion {
	rec := domprofile.FromStorage(fields)
	if rec.ID == "" {
		rec.ID = id
	}
	return rec.Suggestion()
}
