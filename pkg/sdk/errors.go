package matchcraft

import "github.com/kailas-cloud/matchcraft/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrUserNotFound     = domain.ErrUserNotFound
	ErrInvalidProfile   = domain.ErrInvalidProfile
	ErrInvalidMessage   = domain.ErrInvalidMessage
	ErrInvalidRequest   = domain.ErrInvalidRequest
	ErrNotImplemented   = domain.ErrNotImplemented
	ErrUnsupportedMedia = domain.ErrUnsupportedMedia
	ErrPayloadTooLarge  = domain.ErrPayloadTooLarge
)
