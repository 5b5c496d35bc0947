package matchcraft

import (
	"context"
	"fmt"
	"time"

	domprofile "github.com/kailas-cloud/matchcraft/internal/domain/profile"
)

// ProfileService manages user profiles.
type ProfileService struct {
	svc profileUseCase
	obs *observer
}

// ProfilePage is one page of a profile listing.
type ProfilePage struct {
	Items      []Profile
	NextCursor string // empty on the last page
}

// Create stores a new profile with a generated id.
func (s *ProfileService) Create(ctx context.Context, in ProfileInput) (_ Profile, err error) {
	start := time.Now()
	defer func() { s.obs.observe("profile_create", start, err) }()

	rec, err := s.svc.Create(ctx, profileInputToDomain(in))
	if err != nil {
		return Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return profileFromDomain(rec), nil
}

// Get returns a profile by id.
func (s *ProfileService) Get(ctx context.Context, id string) (_ Profile, err error) {
	start := time.Now()
	defer func() { s.obs.observe("profile_get", start, err) }()

	rec, err := s.svc.Get(ctx, id)
	if err != nil {
		return Profile{}, fmt.Errorf("get profile %s: %w", id, err)
	}
	return profileFromDomain(rec), nil
}

// Update replaces the editable fields of a profile.
func (s *ProfileService) Update(ctx context.Context, id string, in ProfileInput) (_ Profile, err error) {
	start := time.Now()
	defer func() { s.obs.observe("profile_update", start, err) }()

	rec, err := s.svc.Update(ctx, id, profileInputToDomain(in))
	if err != nil {
		return Profile{}, fmt.Errorf("update profile %s: %w", id, err)
	}
	return profileFromDomain(rec), nil
}

// Delete removes a profile and its search index entries.
func (s *ProfileService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("profile_delete", start, err) }()

	if err = s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete profile %s: %w", id, err)
	}
	return nil
}

// List returns a page of profiles matching f.
func (s *ProfileService) List(
	ctx context.Context, f ListFilter, cursor string, limit int,
) (_ ProfilePage, err error) {
	start := time.Now()
	defer func() { s.obs.observe("profile_list", start, err) }()

	recs, next, err := s.svc.List(ctx, listFilterToDomain(f), cursor, limit)
	if err != nil {
		return ProfilePage{}, fmt.Errorf("list profiles: %w", err)
	}
	items := make([]Profile, len(recs))
	for i, r := range recs {
		items[i] = profileFromDomain(r)
	}
	return ProfilePage{Items: items, NextCursor: next}, nil
}

// Count returns the number of profiles matching f.
func (s *ProfileService) Count(ctx context.Context, f ListFilter) (_ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("profile_count", start, err) }()

	n, err := s.svc.Count(ctx, listFilterToDomain(f))
	if err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}

// Reindex recomputes search terms and name index entries for every profile.
func (s *ProfileService) Reindex(ctx context.Context) (_ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("profile_reindex", start, err) }()

	n, err := s.svc.Reindex(ctx)
	if err != nil {
		return 0, fmt.Errorf("reindex profiles: %w", err)
	}
	return n, nil
}

func listFilterToDomain(f ListFilter) domprofile.ListFilter {
	return domprofile.ListFilter{
		Gender: domprofile.Gender(f.Gender),
		MinAge: f.MinAge,
		MaxAge: f.MaxAge,
	}
}
