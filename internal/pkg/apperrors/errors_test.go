package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructorsWrapSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"not found", NewResourceNotFoundError("club not found"), ErrResourceNotFound},
		{"conflict", NewConflictError("duplicate"), ErrConflict},
		{"forbidden", NewForbiddenError("no"), ErrPermissionDenied},
		{"validation", NewValidationError("bad", nil), ErrValidationFailed},
		{"business rule", NewBusinessRuleError("rule"), ErrBusinessRule},
		{"invalid state", NewInvalidStateError("state"), ErrInvalidState},
		{"unauthorized", NewUnauthorizedError("who"), ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("service: %w", tt.err)
			if !errors.Is(wrapped, tt.target) {
				t.Fatalf("errors.Is(%v, %v) = false", wrapped, tt.target)
			}
		})
	}
}

func TestValidationErrorDetails(t *testing.T) {
	err := NewValidationError("invalid input", map[string]string{"clubName": "required"})
	details := DetailsOf(err)
	if details["clubName"] != "required" {
		t.Fatalf("details = %v", details)
	}
	if DetailsOf(errors.New("plain")) != nil {
		t.Fatal("expected nil details for plain error")
	}
}

func TestIsMatchesAnyInList(t *testing.T) {
	err := NewInvalidStateError("done")
	if !Is(err, ErrConflict, ErrInvalidState) {
		t.Fatal("expected match on list member")
	}
	if Is(err, ErrConflict, ErrPermissionDenied) {
		t.Fatal("unexpected match")
	}
}
