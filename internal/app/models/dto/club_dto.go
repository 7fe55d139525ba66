package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
)

// ClubFilterRequest represents club listing parameters
type ClubFilterRequest struct {
	Search string `form:"search"`
	PageRequest
}

// ClubResponse represents an active club
type ClubResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	AdvisorName string    `json:"advisorName,omitempty"`
	PresidentID uuid.UUID `json:"presidentId"`
	IsActive    bool      `json:"isActive"`
	MemberCount int64     `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ClubListResponse represents a page of clubs
type ClubListResponse struct {
	Clubs      []ClubResponse `json:"clubs"`
	Pagination PaginationInfo `json:"pagination"`
}

// NewClubResponse maps a club to its public representation
func NewClubResponse(c *models.Club, memberCount int64) ClubResponse {
	return ClubResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		AdvisorName: c.AdvisorName,
		PresidentID: c.PresidentID,
		IsActive:    c.IsActive,
		MemberCount: memberCount,
		CreatedAt:   c.CreatedAt,
	}
}

// --- Club applications ---

// SubmitClubApplicationRequest represents a proposal to found a club
type SubmitClubApplicationRequest struct {
	ClubName             string `json:"clubName" binding:"required" validate:"required,min=3,max=150"`
	Mission              string `json:"mission" binding:"required" validate:"required,max=500"`
	Vision               string `json:"vision" validate:"max=500"`
	PlannedActivities    string `json:"plannedActivities" validate:"max=2000"`
	EstimatedMemberCount int    `json:"estimatedMemberCount" validate:"min=5,max=500"`
	AdvisorName          string `json:"advisorName" validate:"max=150"`
	AdvisorEmail         string `json:"advisorEmail" validate:"omitempty,email,max=150"`
	ResourceNeeds        string `json:"resourceNeeds" validate:"max=1000"`
}

// ClubApplicationFilterRequest represents application listing parameters
type ClubApplicationFilterRequest struct {
	Status *models.ApprovalStatus `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Search string                 `form:"search"`
	PageRequest
}

// ClubApplicationResponse represents a club application
type ClubApplicationResponse struct {
	ID                   uuid.UUID             `json:"id"`
	ClubName             string                `json:"clubName"`
	Mission              string                `json:"mission"`
	Vision               string                `json:"vision,omitempty"`
	PlannedActivities    string                `json:"plannedActivities,omitempty"`
	EstimatedMemberCount int                   `json:"estimatedMemberCount"`
	AdvisorName          string                `json:"advisorName,omitempty"`
	AdvisorEmail         string                `json:"advisorEmail,omitempty"`
	ResourceNeeds        string                `json:"resourceNeeds,omitempty"`
	ApplicantUserID      uuid.UUID             `json:"applicantUserId"`
	Status               models.ApprovalStatus `json:"status"`
	ReviewedByID         *uuid.UUID            `json:"reviewedById,omitempty"`
	ReviewedAt           *time.Time            `json:"reviewedAt,omitempty"`
	CoordinatorNote      string                `json:"coordinatorNote,omitempty"`
	CreatedAt            time.Time             `json:"createdAt"`
	ClubID               *uuid.UUID            `json:"clubId,omitempty"` // Set when approval created a club
}

// ClubApplicationListResponse represents a page of applications
type ClubApplicationListResponse struct {
	Applications []ClubApplicationResponse `json:"applications"`
	Pagination   PaginationInfo            `json:"pagination"`
}

// NewClubApplicationResponse maps an application to its representation
func NewClubApplicationResponse(a *models.ClubApplication) ClubApplicationResponse {
	return ClubApplicationResponse{
		ID:                   a.ID,
		ClubName:             a.ClubName,
		Mission:              a.Mission,
		Vision:               a.Vision,
		PlannedActivities:    a.PlannedActivities,
		EstimatedMemberCount: a.EstimatedMemberCount,
		AdvisorName:          a.AdvisorName,
		AdvisorEmail:         a.AdvisorEmail,
		ResourceNeeds:        a.ResourceNeeds,
		ApplicantUserID:      a.ApplicantUserID,
		Status:               a.Status,
		ReviewedByID:         a.ReviewedByID,
		ReviewedAt:           a.ReviewedAt,
		CoordinatorNote:      a.CoordinatorNote,
		CreatedAt:            a.CreatedAt,
	}
}
