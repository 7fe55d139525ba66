package models

import "github.com/google/uuid"

// AudienceScope describes which approved announcements a viewer may see
type AudienceScope struct {
	All        bool        // Admin
	Presidents bool        // Viewer presides at least one active club
	ClubIDs    []uuid.UUID // Clubs whose club-scoped announcements are visible
}

// Allows reports whether an approved announcement falls inside the scope
func (s AudienceScope) Allows(a *Announcement) bool {
	if s.All {
		return true
	}
	switch a.Audience {
	case AudienceAllStudents:
		return true
	case AudiencePresidents:
		return s.Presidents
	case AudienceClubMembers, AudienceSpecificClubMembers:
		return a.ClubID != nil && containsID(s.ClubIDs, *a.ClubID)
	}
	return false
}

// EventScope describes which events a viewer may see
type EventScope struct {
	All     bool        // Admin
	ClubIDs []uuid.UUID // Clubs whose events are visible in every status
}

// Allows reports whether the event falls inside the scope
func (s EventScope) Allows(e *Event) bool {
	if s.All || e.Status == ApprovalApproved {
		return true
	}
	return containsID(s.ClubIDs, e.ClubID)
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
