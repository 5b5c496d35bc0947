// Package profile manages user records: validation, search term
// maintenance, admin listing and profile photos.
package profile

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchcraft/internal/domain"
	domprofile "github.com/kailas-cloud/matchcraft/internal/domain/profile"
)

// DefaultMaxPhotoBytes caps photo uploads when no limit is configured.
const DefaultMaxPhotoBytes = 5 << 20

// reindexBatch is the number of records loaded per round trip by Reindex.
const reindexBatch = 100

var photoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Service handles profile CRUD.
type Service struct {
	repo          Repository
	photos        PhotoStore
	maxPhotoBytes int64
	newID         func() (string, error)
	now           func() time.Time
	logger        *zap.Logger
}

// New creates a profile service.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:          repo,
		maxPhotoBytes: DefaultMaxPhotoBytes,
		newID:         newUUIDv7,
		now:           time.Now,
		logger:        logger,
	}
}

// WithPhotos enables photo uploads up to maxBytes (0 keeps the default).
func (s *Service) WithPhotos(p PhotoStore, maxBytes int64) *Service {
	s.photos = p
	if maxBytes > 0 {
		s.maxPhotoBytes = maxBytes
	}
	return s
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

// Create validates in and stores a new record under a fresh id.
func (s *Service) Create(ctx context.Context, in domprofile.Input) (domprofile.Record, error) {
	id, err := s.newID()
	if err != nil {
		return domprofile.Record{}, err
	}
	rec, err := domprofile.New(id, in, s.now().UnixMilli())
	if err != nil {
		return domprofile.Record{}, err
	}
	if err := s.repo.Save(ctx, rec, ""); err != nil {
		return domprofile.Record{}, fmt.Errorf("save profile: %w", err)
	}
	return rec, nil
}

// Get returns a record by id.
func (s *Service) Get(ctx context.Context, id string) (domprofile.Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return domprofile.Record{}, fmt.Errorf("get profile: %w", err)
	}
	return rec, nil
}

// Update overwrites every editable field of the record and recomputes its
// search terms.
func (s *Service) Update(ctx context.Context, id string, in domprofile.Input) (domprofile.Record, error) {
	old, err := s.repo.Get(ctx, id)
	if err != nil {
		return domprofile.Record{}, fmt.Errorf("get profile: %w", err)
	}
	rec, err := old.Update(in, s.now().UnixMilli())
	if err != nil {
		return domprofile.Record{}, err
	}
	if err := s.repo.Save(ctx, rec, old.DisplayName); err != nil {
		return domprofile.Record{}, fmt.Errorf("save profile: %w", err)
	}
	return rec, nil
}

// Delete removes the record, its index entries and, best effort, its photo.
func (s *Service) Delete(ctx context.Context, id string) error {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get profile: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	s.dropPhoto(ctx, id, rec.PhotoURL)
	return nil
}

// List pages through records matching f for the admin surface.
func (s *Service) List(
	ctx context.Context, f domprofile.ListFilter, cursor string, limit int,
) ([]domprofile.Record, string, error) {
	recs, next, err := s.repo.List(ctx, f, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list profiles: %w", err)
	}
	return recs, next, nil
}

// Count returns how many records match f.
func (s *Service) Count(ctx context.Context, f domprofile.ListFilter) (int, error) {
	n, err := s.repo.Count(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}

// Reindex recomputes the search terms of every stored record and returns
// how many were rewritten.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	ids, err := s.repo.IDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list ids: %w", err)
	}

	n := 0
	for start := 0; start < len(ids); start += reindexBatch {
		if err := ctx.Err(); err != nil {
			return n, fmt.Errorf("reindex: %w", err)
		}
		end := min(start+reindexBatch, len(ids))
		recs, err := s.repo.GetMany(ctx, ids[start:end])
		if err != nil {
			return n, fmt.Errorf("load batch: %w", err)
		}
		for _, rec := range recs {
			if err := s.repo.Save(ctx, rec.Reindexed(), rec.DisplayName); err != nil {
				return n, fmt.Errorf("save %s: %w", rec.ID, err)
			}
			n++
		}
	}

	s.logger.Info("Search terms reindexed", zap.Int("records", n))
	return n, nil
}

// SetPhoto uploads a new profile photo, points the record at it and removes
// the previous one.
func (s *Service) SetPhoto(
	ctx context.Context, id, contentType string, data []byte,
) (domprofile.Record, error) {
	if s.photos == nil {
		return domprofile.Record{}, fmt.Errorf("photo storage: %w", domain.ErrNotImplemented)
	}
	ct, err := s.checkPhoto(contentType, data)
	if err != nil {
		return domprofile.Record{}, err
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return domprofile.Record{}, fmt.Errorf("get profile: %w", err)
	}

	url, err := s.photos.Upload(ctx, id, ct, data)
	if err != nil {
		return domprofile.Record{}, fmt.Errorf("upload photo: %w", err)
	}

	prev := rec.PhotoURL
	rec = rec.WithPhoto(url, s.now().UnixMilli())
	if err := s.repo.Save(ctx, rec, rec.DisplayName); err != nil {
		s.dropPhoto(ctx, id, url)
		return domprofile.Record{}, fmt.Errorf("save profile: %w", err)
	}
	if prev != "" && prev != url {
		s.dropPhoto(ctx, id, prev)
	}
	return rec, nil
}

// checkPhoto validates the declared content type against the accepted set
// and the sniffed bytes, and enforces the size cap.
func (s *Service) checkPhoto(contentType string, data []byte) (string, error) {
	ct, _, err := mime.ParseMediaType(contentType)
	if err != nil || !photoTypes[ct] {
		return "", fmt.Errorf("%w: %q, want image/jpeg, image/png or image/webp",
			domain.ErrUnsupportedMedia, contentType)
	}
	if len(data) == 0 {
		return "", domain.InvalidField(domain.ErrInvalidProfile, "photo", "is empty")
	}
	if int64(len(data)) > s.maxPhotoBytes {
		return "", fmt.Errorf("%w: %d bytes, max %d", domain.ErrPayloadTooLarge, len(data), s.maxPhotoBytes)
	}
	if sniffed := http.DetectContentType(data); sniffed != ct {
		return "", fmt.Errorf("%w: declared %s, content is %s", domain.ErrUnsupportedMedia, ct, sniffed)
	}
	return ct, nil
}

func (s *Service) dropPhoto(ctx context.Context, id, url string) {
	if s.photos == nil || url == "" {
		return
	}
	if err := s.photos.DeleteURL(ctx, url); err != nil {
		s.logger.Warn("Failed to delete photo",
			zap.String("user_id", id),
			zap.String("url", url),
			zap.Error(err),
		)
	}
}
