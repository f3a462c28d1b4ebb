package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionLog tracks join/leave and watch duration per viewer of a room.
type SessionLog struct {
	ID           uuid.UUID  `json:"id"`
	WebinarID    uuid.UUID  `json:"webinar_id"`
	AttendeeID   *uuid.UUID `json:"attendee_id,omitempty"`
	ViewerEmail  string     `json:"viewer_email"`
	JoinedAt     time.Time  `json:"joined_at"`
	LeftAt       *time.Time `json:"left_at,omitempty"`
	WatchSeconds int64      `json:"watch_seconds"`
	CreatedAt    time.Time  `json:"created_at"`
}
