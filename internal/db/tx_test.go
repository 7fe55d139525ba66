package db

import (
	"errors"
	"testing"

	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

func TestWithRollbackErrorKeepsBothKinds(t *testing.T) {
	rbErr := errors.New("connection reset")
	err := withRollbackError(apperrors.NewInvalidStateError("Event is already approved"), rbErr)

	if !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("domain kind lost: %v", err)
	}
	if !errors.Is(err, rbErr) {
		t.Fatalf("rollback cause lost: %v", err)
	}
}
