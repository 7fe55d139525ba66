package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
)

// AssignRoleRequest changes the club role of an approved member
type AssignRoleRequest struct {
	Role models.ClubRole `json:"role" binding:"required,oneof=MEMBER BOARD_MEMBER VICE_PRESIDENT PRESIDENT"`
}

// PendingMembershipFilterRequest narrows the pending review queue
type PendingMembershipFilterRequest struct {
	ClubID *uuid.UUID `form:"-"` // Parsed from the clubId query parameter
	PageRequest
}

// MembershipResponse represents a club membership
type MembershipResponse struct {
	ID           uuid.UUID               `json:"id"`
	ClubID       uuid.UUID               `json:"clubId"`
	UserID       uuid.UUID               `json:"userId"`
	Status       models.MembershipStatus `json:"status"`
	Role         models.ClubRole         `json:"role"`
	ReviewedByID *uuid.UUID              `json:"reviewedById,omitempty"`
	ReviewedAt   *time.Time              `json:"reviewedAt,omitempty"`
	Note         string                  `json:"note,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
}

// MembershipListResponse represents a page of memberships
type MembershipListResponse struct {
	Memberships []MembershipResponse `json:"memberships"`
	Pagination  PaginationInfo       `json:"pagination"`
}

// NewMembershipResponse maps a membership to its representation
func NewMembershipResponse(m *models.ClubMembership) MembershipResponse {
	return MembershipResponse{
		ID:           m.ID,
		ClubID:       m.ClubID,
		UserID:       m.UserID,
		Status:       m.Status,
		Role:         m.Role,
		ReviewedByID: m.ReviewedByID,
		ReviewedAt:   m.ReviewedAt,
		Note:         m.Note,
		CreatedAt:    m.CreatedAt,
	}
}
