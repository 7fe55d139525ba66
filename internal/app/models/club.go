package models

import "github.com/google/uuid"

// Club is an approved student club
type Club struct {
	Audit
	Name        string    `json:"name" db:"name"`
	NameKey     string    `json:"-" db:"name_key"`
	Description string    `json:"description,omitempty" db:"description"`
	AdvisorName string    `json:"advisorName,omitempty" db:"advisor_name"`
	PresidentID uuid.UUID `json:"presidentId" db:"president_id"`
	IsActive    bool      `json:"isActive" db:"is_active"`
}

// ClubApplication is a proposal to found a new club
type ClubApplication struct {
	Audit
	ClubName             string         `json:"clubName" db:"club_name"`
	ClubNameKey          string         `json:"-" db:"club_name_key"`
	Mission              string         `json:"mission" db:"mission"`
	Vision               string         `json:"vision,omitempty" db:"vision"`
	PlannedActivities    string         `json:"plannedActivities,omitempty" db:"planned_activities"`
	EstimatedMemberCount int            `json:"estimatedMemberCount" db:"estimated_member_count"`
	AdvisorName          string         `json:"advisorName,omitempty" db:"advisor_name"`
	AdvisorEmail         string         `json:"advisorEmail,omitempty" db:"advisor_email"`
	ResourceNeeds        string         `json:"resourceNeeds,omitempty" db:"resource_needs"`
	ApplicantUserID      uuid.UUID      `json:"applicantUserId" db:"applicant_user_id"`
	Status               ApprovalStatus `json:"status" db:"status"`
	Review
	CoordinatorNote string `json:"coordinatorNote,omitempty" db:"coordinator_note"`
}

// ClubMembership links a user to a club
type ClubMembership struct {
	Audit
	ClubID uuid.UUID        `json:"clubId" db:"club_id"`
	UserID uuid.UUID        `json:"userId" db:"user_id"`
	Status MembershipStatus `json:"status" db:"status"`
	Role   ClubRole         `json:"role" db:"role"`
	Review
	Note string `json:"note,omitempty" db:"note"`
}
