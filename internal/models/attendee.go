package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Attendee is a registration for a webinar, unique per (webinar, email).
type Attendee struct {
	ID           uuid.UUID       `json:"id"`
	WebinarID    uuid.UUID       `json:"webinar_id"`
	Email        string          `json:"email"`
	FullName     string          `json:"full_name"`
	Company      string          `json:"company,omitempty"`
	CustomFields json.RawMessage `json:"custom_fields,omitempty"` // responses keyed by field id
	AttendedAt   *time.Time      `json:"attended_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
