package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is an identity-level role granted to a user account
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RolePresident Role = "PRESIDENT"
	RoleMember    Role = "MEMBER"
)

// ApprovalStatus is the review state shared by applications, events and announcements
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// IsTerminal reports whether no further review transition is allowed
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalApproved || s == ApprovalRejected
}

// MembershipStatus is the review state of a club membership request
type MembershipStatus string

const (
	MembershipPending   MembershipStatus = "PENDING"
	MembershipApproved  MembershipStatus = "APPROVED"
	MembershipRejected  MembershipStatus = "REJECTED"
	MembershipCancelled MembershipStatus = "CANCELLED"
)

// ClubRole is the role a member holds inside a single club
type ClubRole string

const (
	ClubRoleMember        ClubRole = "MEMBER"
	ClubRoleBoardMember   ClubRole = "BOARD_MEMBER"
	ClubRoleVicePresident ClubRole = "VICE_PRESIDENT"
	ClubRolePresident     ClubRole = "PRESIDENT"
)

// IsPrivileged reports whether the role is subject to the one-privileged-role-per-user rule
func (r ClubRole) IsPrivileged() bool {
	switch r {
	case ClubRoleBoardMember, ClubRoleVicePresident, ClubRolePresident:
		return true
	}
	return false
}

// PrivilegedClubRoles lists the roles a user may hold in at most one club
var PrivilegedClubRoles = []ClubRole{ClubRoleBoardMember, ClubRoleVicePresident, ClubRolePresident}

// AnnouncementAudience decides who may see an announcement
type AnnouncementAudience string

const (
	AudienceAllStudents         AnnouncementAudience = "ALL_STUDENTS"
	AudiencePresidents          AnnouncementAudience = "PRESIDENTS"
	AudienceClubMembers         AnnouncementAudience = "CLUB_MEMBERS"
	AudienceSpecificClubMembers AnnouncementAudience = "SPECIFIC_CLUB_MEMBERS"
)

// IsClubScoped reports whether the audience refers to the members of one club
func (a AnnouncementAudience) IsClubScoped() bool {
	return a == AudienceClubMembers || a == AudienceSpecificClubMembers
}

// Audit is the envelope every persisted entity carries
type Audit struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	CreatedByID *uuid.UUID `json:"createdById,omitempty" db:"created_by_id"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
	UpdatedByID *uuid.UUID `json:"updatedById,omitempty" db:"updated_by_id"`
	IsDeleted   bool       `json:"-" db:"is_deleted"`
	Version     int        `json:"version" db:"version"`
}

// Stamp initialises the envelope of a new entity
func (a *Audit) Stamp(now time.Time, by *uuid.UUID) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = now.UTC()
	a.CreatedByID = by
	a.Version = 1
}

// Touch records a mutation on the envelope
func (a *Audit) Touch(now time.Time, by uuid.UUID) {
	t := now.UTC()
	a.UpdatedAt = &t
	a.UpdatedByID = &by
}
