package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
)

// Viewer is an actor together with their club affiliations
type Viewer struct {
	Actor
	PresidedClubIDs []uuid.UUID
	MemberClubIDs   []uuid.UUID
}

// ViewerFor resolves the club affiliations that drive visibility
func (s *AuthorizationService) ViewerFor(ctx context.Context, actor Actor) (Viewer, error) {
	v := Viewer{Actor: actor}
	if !actor.IsAuthenticated() || actor.IsAdmin() {
		return v, nil
	}

	if actor.IsPresident() {
		clubs, err := s.PresidedClubs(ctx, actor)
		if err != nil {
			return v, err
		}
		for _, c := range clubs {
			v.PresidedClubIDs = append(v.PresidedClubIDs, c.ID)
		}
	}

	ids, err := s.memberships.ListApprovedClubIDs(ctx, actor.UserID)
	if err != nil {
		return v, fmt.Errorf("error listing member clubs: %w", err)
	}
	v.MemberClubIDs = ids
	return v, nil
}

// PresidesOver reports whether the viewer presides the club
func (v Viewer) PresidesOver(clubID uuid.UUID) bool {
	for _, id := range v.PresidedClubIDs {
		if id == clubID {
			return true
		}
	}
	return false
}

// AudienceScope is the announcement visibility of the viewer
func (v Viewer) AudienceScope() models.AudienceScope {
	if v.IsAdmin() {
		return models.AudienceScope{All: true}
	}
	clubIDs := make([]uuid.UUID, 0, len(v.PresidedClubIDs)+len(v.MemberClubIDs))
	seen := make(map[uuid.UUID]struct{}, cap(clubIDs))
	for _, ids := range [][]uuid.UUID{v.PresidedClubIDs, v.MemberClubIDs} {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			clubIDs = append(clubIDs, id)
		}
	}
	return models.AudienceScope{
		Presidents: len(v.PresidedClubIDs) > 0,
		ClubIDs:    clubIDs,
	}
}

// EventScope is the event visibility of the viewer
func (v Viewer) EventScope() models.EventScope {
	if v.IsAdmin() {
		return models.EventScope{All: true}
	}
	return models.EventScope{ClubIDs: v.PresidedClubIDs}
}

// CanSeeAnnouncement applies the listing rule to a single announcement
func (v Viewer) CanSeeAnnouncement(a *models.Announcement) bool {
	if v.IsAdmin() {
		return true
	}
	if a.Status != models.ApprovalApproved {
		// Authors keep access to their own submissions while they are under review
		return a.CreatedByID != nil && *a.CreatedByID == v.UserID
	}
	return v.AudienceScope().Allows(a)
}

// CanSeeEvent applies the listing rule to a single event
func (v Viewer) CanSeeEvent(e *models.Event) bool {
	return v.EventScope().Allows(e)
}
