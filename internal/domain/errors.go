package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrUserNotFound signals a missing user record.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRequest signals malformed request parameters.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidProfile signals a profile that fails boundary validation.
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrInvalidMessage signals a message that cannot be sent.
	ErrInvalidMessage = errors.New("invalid message")
	// ErrInvalidPromptInput signals AI feature input that violates its schema.
	ErrInvalidPromptInput = errors.New("invalid prompt input")
	// ErrUnsupportedMedia signals a photo upload with an unaccepted content type.
	ErrUnsupportedMedia = errors.New("unsupported media type")
	// ErrPayloadTooLarge signals an upload above the configured size limit.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrPromptQuotaExceeded signals an exhausted prompt token budget.
	ErrPromptQuotaExceeded = errors.New("prompt quota exceeded")
	// ErrPromptProviderError signals a prompt provider failure or malformed output.
	ErrPromptProviderError = errors.New("prompt provider error")
	// ErrNotImplemented signals a feature disabled by configuration.
	ErrNotImplemented = errors.New("not implemented")
)

// FieldError wraps a sentinel with the offending field.
type FieldError struct {
	Kind   error
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Kind.Error(), e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// InvalidField creates a FieldError of the given kind.
func InvalidField(kind error, field, reason string) error {
	return &FieldError{Kind: kind, Field: field, Reason: reason}
}
