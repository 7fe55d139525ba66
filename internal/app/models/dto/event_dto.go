package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
)

// EventContent holds the editable fields of an event
type EventContent struct {
	Title           string  `json:"title" binding:"required" validate:"required,max=200"`
	Description     string  `json:"description" validate:"max=2000"`
	EventDate       string  `json:"eventDate" binding:"required" validate:"required"` // RFC3339 or local wall time
	TimeZone        string  `json:"timeZone" validate:"omitempty,timezone"`           // Applies to wall times without offset
	EstimatedBudget float64 `json:"estimatedBudget" validate:"gte=0"`
}

// ProposeEventRequest represents an event proposal
type ProposeEventRequest struct {
	ClubID *uuid.UUID `json:"clubId"` // Defaults to the presided club
	EventContent
}

// EventFilterRequest represents event listing parameters
type EventFilterRequest struct {
	Status   *models.ApprovalStatus `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	ClubID   *uuid.UUID             `form:"-"` // Parsed from the clubId query parameter
	Upcoming bool                   `form:"upcoming"`
	Search   string                 `form:"search"`
	PageRequest
}

// EventApprovalResponse represents one review action
type EventApprovalResponse struct {
	ID         uuid.UUID             `json:"id"`
	ReviewerID uuid.UUID             `json:"reviewerId"`
	Status     models.ApprovalStatus `json:"status"`
	Comment    string                `json:"comment,omitempty"`
	CreatedAt  time.Time             `json:"createdAt"`
}

// EventResponse represents an event
type EventResponse struct {
	ID              uuid.UUID             `json:"id"`
	ClubID          uuid.UUID             `json:"clubId"`
	ClubName        string                `json:"clubName,omitempty"`
	Title           string                `json:"title"`
	Description     string                `json:"description,omitempty"`
	EventDate       time.Time             `json:"eventDate"`
	EstimatedBudget float64               `json:"estimatedBudget"`
	Status          models.ApprovalStatus `json:"status"`
	CreatedByID     *uuid.UUID            `json:"createdById,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
}

// EventDetailResponse extends EventResponse with its review history
type EventDetailResponse struct {
	EventResponse
	LatestApproval  *EventApprovalResponse  `json:"latestApproval,omitempty"`
	ApprovalHistory []EventApprovalResponse `json:"approvalHistory"`
}

// EventListResponse represents a page of events
type EventListResponse struct {
	Events     []EventResponse `json:"events"`
	Pagination PaginationInfo  `json:"pagination"`
}

// NewEventResponse maps an event to its representation
func NewEventResponse(e *models.Event) EventResponse {
	resp := EventResponse{
		ID:              e.ID,
		ClubID:          e.ClubID,
		Title:           e.Title,
		Description:     e.Description,
		EventDate:       e.EventDate.UTC(),
		EstimatedBudget: e.EstimatedBudget,
		Status:          e.Status,
		CreatedByID:     e.CreatedByID,
		CreatedAt:       e.CreatedAt,
	}
	if e.Club != nil {
		resp.ClubName = e.Club.Name
	}
	return resp
}

// NewEventApprovalResponse maps a review action to its representation
func NewEventApprovalResponse(a *models.EventApproval) EventApprovalResponse {
	return EventApprovalResponse{
		ID:         a.ID,
		ReviewerID: a.ReviewerID,
		Status:     a.Status,
		Comment:    a.Comment,
		CreatedAt:  a.CreatedAt,
	}
}
