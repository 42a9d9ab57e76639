package apperror

import (
	"errors"
	"fmt"
	"testing"
)

// Each constructor must wrap its sentinel so errors.Is works through
// arbitrary fmt.Errorf("...: %w", err) layers added by callers.

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("article"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("title", "title is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("article with this slug already exists"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("you are not the author of this article"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("invalid email or password"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Internal wraps ErrInternal",
			err:       Internal("favorite insert confirmed no row"),
			target:    ErrInternal,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrConflict",
			err:       NotFound("article"),
			target:    ErrConflict,
			wantMatch: false,
		},
		{
			name:      "Conflict does NOT match ErrForbidden",
			err:       Conflict("duplicate"),
			target:    ErrForbidden,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorsIs_ThroughWrapping(t *testing.T) {
	// Simulate a service wrapping a repository error before returning it.
	inner := Conflict("article already favorited")
	wrapped := fmt.Errorf("favoriting article: %w", inner)

	if !errors.Is(wrapped, ErrConflict) {
		t.Errorf("wrapped error should still match ErrConflict, got %v", wrapped)
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatalf("errors.As should extract *AppError from %v", wrapped)
	}
	if appErr.Message != "article already favorited" {
		t.Errorf("Message = %q, want %q", appErr.Message, "article already favorited")
	}
}

func TestErrorMessage(t *testing.T) {
	err := NotFound("profile")
	if err.Error() != "profile not found" {
		t.Errorf("Error() = %q, want %q", err.Error(), "profile not found")
	}
}
