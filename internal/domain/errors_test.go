package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestFieldError(t *testing.T) {
	err := InvalidField(ErrInvalidProfile, "age", "must be between 18 and 120")
	if err.Error() != "invalid profile: age must be between 18 and 120" {
		t.Errorf("Error() = %q", err.Error())
	}

	wrapped := fmt.Errorf("create: %w", err)
	if !errors.Is(wrapped, ErrInvalidProfile) {
		t.Error("errors.Is should reach the sentinel")
	}
	var fe *FieldError
	if !errors.As(wrapped, &fe) || fe.Field != "age" {
		t.Errorf("errors.As = %+v", fe)
	}
	if errors.Is(wrapped, ErrInvalidMessage) {
		t.Error("unexpected match on a different sentinel")
	}
}
