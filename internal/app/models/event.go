package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is an activity proposed by a club
type Event struct {
	Audit
	ClubID          uuid.UUID      `json:"clubId" db:"club_id"`
	Title           string         `json:"title" db:"title"`
	Description     string         `json:"description,omitempty" db:"description"`
	EventDate       time.Time      `json:"eventDate" db:"event_date"` // Always UTC
	EstimatedBudget float64        `json:"estimatedBudget" db:"estimated_budget"`
	Status          ApprovalStatus `json:"status" db:"status"`

	// Related entities
	Club            *Club           `json:"club,omitempty"`
	ApprovalHistory []EventApproval `json:"approvalHistory,omitempty"`
}

// EventApproval is one immutable review action on an event
type EventApproval struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	EventID    uuid.UUID      `json:"eventId" db:"event_id"`
	ReviewerID uuid.UUID      `json:"reviewerId" db:"reviewer_id"`
	Status     ApprovalStatus `json:"status" db:"status"`
	Comment    string         `json:"comment,omitempty" db:"comment"`
	CreatedAt  time.Time      `json:"createdAt" db:"created_at"`
}

// LatestApproval returns the most recent review in the history, or nil
func (e *Event) LatestApproval() *EventApproval {
	var latest *EventApproval
	for i := range e.ApprovalHistory {
		a := &e.ApprovalHistory[i]
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	return latest
}
