package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
)

// AnnouncementContent holds the editable fields of an announcement
type AnnouncementContent struct {
	Title    string                      `json:"title" binding:"required" validate:"required,max=200"`
	Content  string                      `json:"content" binding:"required" validate:"required,max=5000"`
	Audience models.AnnouncementAudience `json:"audience" binding:"required" validate:"required,oneof=ALL_STUDENTS PRESIDENTS CLUB_MEMBERS SPECIFIC_CLUB_MEMBERS"`
	ClubID   *uuid.UUID                  `json:"clubId"`
	IsPinned bool                        `json:"isPinned"`
}

// CreateAnnouncementRequest represents a new announcement
type CreateAnnouncementRequest struct {
	AnnouncementContent
}

// UpdateAnnouncementRequest represents an announcement edit
type UpdateAnnouncementRequest struct {
	AnnouncementContent
}

// AnnouncementFilterRequest represents announcement listing parameters
type AnnouncementFilterRequest struct {
	Audience   *models.AnnouncementAudience `form:"audience" binding:"omitempty,oneof=ALL_STUDENTS PRESIDENTS CLUB_MEMBERS SPECIFIC_CLUB_MEMBERS"`
	ClubID     *uuid.UUID                   `form:"-"` // Parsed from the clubId query parameter
	IsPinned   *bool                        `form:"pinned"`
	Search     string                       `form:"search"`
	UnreadOnly bool                         `form:"unread"`
	PageRequest
}

// AnnouncementSummaryResponse is a list entry with truncated content
type AnnouncementSummaryResponse struct {
	ID          uuid.UUID                   `json:"id"`
	Title       string                      `json:"title"`
	Content     string                      `json:"content"`
	Audience    models.AnnouncementAudience `json:"audience"`
	ClubID      *uuid.UUID                  `json:"clubId,omitempty"`
	IsPinned    bool                        `json:"isPinned"`
	Status      models.ApprovalStatus       `json:"status"`
	IsRead      bool                        `json:"isRead"`
	CreatedByID *uuid.UUID                  `json:"createdById,omitempty"`
	CreatedAt   time.Time                   `json:"createdAt"`
}

// AnnouncementDetailResponse carries full content and read statistics
type AnnouncementDetailResponse struct {
	AnnouncementSummaryResponse
	ReadCount int64 `json:"readCount"`
}

// AnnouncementListResponse represents a page of announcements
type AnnouncementListResponse struct {
	Announcements []AnnouncementSummaryResponse `json:"announcements"`
	Pagination    PaginationInfo                `json:"pagination"`
}

// AllowedAudiencesResponse lists the audiences the caller may address
type AllowedAudiencesResponse struct {
	Audiences []models.AnnouncementAudience `json:"audiences"`
}

// NewAnnouncementSummary maps an announcement with the given content body
func NewAnnouncementSummary(a *models.Announcement, content string, isRead bool) AnnouncementSummaryResponse {
	return AnnouncementSummaryResponse{
		ID:          a.ID,
		Title:       a.Title,
		Content:     content,
		Audience:    a.Audience,
		ClubID:      a.ClubID,
		IsPinned:    a.IsPinned,
		Status:      a.Status,
		IsRead:      isRead,
		CreatedByID: a.CreatedByID,
		CreatedAt:   a.CreatedAt,
	}
}
