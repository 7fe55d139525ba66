package models

import (
	"time"

	"github.com/google/uuid"
)

// Review carries the reviewer attribution of a workflow item
type Review struct {
	ReviewedByID *uuid.UUID `json:"reviewedById,omitempty" db:"reviewed_by_id"`
	ReviewedAt   *time.Time `json:"reviewedAt,omitempty" db:"reviewed_at"`
}

// Record stamps the reviewer and review time
func (r *Review) Record(reviewerID uuid.UUID, at time.Time) {
	t := at.UTC()
	r.ReviewedByID = &reviewerID
	r.ReviewedAt = &t
}
