package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

// Scope is the reach an actor has over a club's workflow items
type Scope int

const (
	// ScopeNone grants nothing
	ScopeNone Scope = iota
	// ScopeOwnClub grants review rights over the actor's own club
	ScopeOwnClub
	// ScopeFull grants review rights over every club
	ScopeFull
)

func (s Scope) String() string {
	switch s {
	case ScopeFull:
		return "full"
	case ScopeOwnClub:
		return "own-club"
	default:
		return "none"
	}
}

// ClubReader is the club lookup the authorization rules need
type ClubReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Club, error)
	ListPresidedBy(ctx context.Context, userID uuid.UUID) ([]*models.Club, error)
}

// MembershipReader is the membership lookup the visibility rules need
type MembershipReader interface {
	ListApprovedClubIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// AuthorizationService centralises role scope and visibility decisions
type AuthorizationService struct {
	clubs       ClubReader
	memberships MembershipReader
	logger      zerolog.Logger
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(clubs ClubReader, memberships MembershipReader, logger zerolog.Logger) *AuthorizationService {
	return &AuthorizationService{
		clubs:       clubs,
		memberships: memberships,
		logger:      logger,
	}
}

// ScopeFor returns the actor's reach over the given club.
// Admin gets ScopeFull; the President of that active club gets ScopeOwnClub.
func (s *AuthorizationService) ScopeFor(ctx context.Context, actor Actor, clubID uuid.UUID) (Scope, error) {
	if !actor.IsAuthenticated() {
		return ScopeNone, nil
	}
	if actor.IsAdmin() {
		return ScopeFull, nil
	}
	if !actor.IsPresident() {
		return ScopeNone, nil
	}

	club, err := s.clubs.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ScopeNone, nil
		}
		return ScopeNone, fmt.Errorf("error loading club for scope: %w", err)
	}
	if club.IsActive && club.PresidentID == actor.UserID {
		return ScopeOwnClub, nil
	}
	return ScopeNone, nil
}

// RequireReviewer fails with forbidden unless the actor may review items of the club
func (s *AuthorizationService) RequireReviewer(ctx context.Context, actor Actor, clubID uuid.UUID) (Scope, error) {
	scope, err := s.ScopeFor(ctx, actor, clubID)
	if err != nil {
		return ScopeNone, err
	}
	if scope == ScopeNone {
		s.logger.Warn().
			Str("userId", actor.UserID.String()).
			Str("clubId", clubID.String()).
			Msg("Review attempted outside actor scope")
		return ScopeNone, apperrors.NewForbiddenError("You can only review items of clubs you preside over")
	}
	return scope, nil
}

// RequireAdmin fails with forbidden unless the actor is an administrator
func RequireAdmin(actor Actor) error {
	if !actor.IsAuthenticated() {
		return apperrors.NewUnauthorizedError("Authentication required")
	}
	if !actor.IsAdmin() {
		return apperrors.NewForbiddenError("Only administrators can perform this action")
	}
	return nil
}

// PresidedClubs returns the active clubs the actor presides over
func (s *AuthorizationService) PresidedClubs(ctx context.Context, actor Actor) ([]*models.Club, error) {
	if !actor.IsAuthenticated() {
		return nil, nil
	}
	clubs, err := s.clubs.ListPresidedBy(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("error listing presided clubs: %w", err)
	}
	return clubs, nil
}
