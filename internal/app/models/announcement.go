package models

import (
	"time"

	"github.com/google/uuid"
)

// Announcement is a notice addressed to an audience
type Announcement struct {
	Audit
	Title    string               `json:"title" db:"title"`
	Content  string               `json:"content" db:"content"`
	Audience AnnouncementAudience `json:"audience" db:"audience"`
	ClubID   *uuid.UUID           `json:"clubId,omitempty" db:"club_id"`
	IsPinned bool                 `json:"isPinned" db:"is_pinned"`
	Status   ApprovalStatus       `json:"status" db:"status"`
}

// AnnouncementRead marks that a user has viewed an announcement
type AnnouncementRead struct {
	ID             uuid.UUID `json:"id" db:"id"`
	AnnouncementID uuid.UUID `json:"announcementId" db:"announcement_id"`
	UserID         uuid.UUID `json:"userId" db:"user_id"`
	ReadAt         time.Time `json:"readAt" db:"read_at"`
}
