package models

import (
	"time"

	"github.com/google/uuid"
)

// Filters are plain predicates the repositories translate to SQL.

// ClubFilter narrows club listings
type ClubFilter struct {
	Search      string
	PresidentID *uuid.UUID
	ActiveOnly  bool
}

// ApplicationFilter narrows club application listings
type ApplicationFilter struct {
	Status      *ApprovalStatus
	ApplicantID *uuid.UUID
	Search      string
}

// MembershipFilter narrows membership listings
type MembershipFilter struct {
	ClubIDs []uuid.UUID // Empty means every club
	UserID  *uuid.UUID
	Status  *MembershipStatus
}

// EventFilter narrows event listings
type EventFilter struct {
	ClubID   *uuid.UUID
	Status   *ApprovalStatus
	FromDate *time.Time
	Search   string
	Scope    EventScope
}

// AnnouncementFilter narrows announcement listings
type AnnouncementFilter struct {
	Status   ApprovalStatus
	Audience *AnnouncementAudience
	ClubID   *uuid.UUID
	IsPinned *bool
	Search   string
	UnreadBy *uuid.UUID     // Only announcements this user has not read
	Scope    *AudienceScope // Nil means no audience restriction
}
