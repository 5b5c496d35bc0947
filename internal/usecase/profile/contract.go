package profile

import (
	"context"

	domprofile "github.com/kailas-cloud/matchcraft/internal/domain/profile"
)

// Repository defines the storage contract for user records.
type Repository interface {
	Save(ctx context.Context, rec domprofile.Record, prevName string) error
	Get(ctx context.Context, id string) (domprofile.Record, error)
	GetMany(ctx context.Context, ids []string) ([]domprofile.Record, error)
	Delete(ctx context.Context, id string) error
	IDs(ctx context.Context) ([]string, error)
	List(ctx context.Context, f domprofile.ListFilter, cursor string, limit int) (
		recs []domprofile.Record, nextCursor string, err error,
	)
	Count(ctx context.Context, f domprofile.ListFilter) (int, error)
}

// PhotoStore keeps profile photos in object storage.
type PhotoStore interface {
	Upload(ctx context.Context, userID, contentType string, data []byte) (url string, err error)
	DeleteURL(ctx context.Context, url string) error
}
