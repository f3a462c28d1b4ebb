package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailLogStatus is the delivery state of a logged email.
type EmailLogStatus string

const (
	EmailQueued EmailLogStatus = "queued"
	EmailSent   EmailLogStatus = "sent"
	EmailFailed EmailLogStatus = "failed"
)

// EmailLog records an outbound email (registration confirmations) so hosts
// can audit and re-send.
type EmailLog struct {
	ID         uuid.UUID      `json:"id"`
	WebinarID  uuid.UUID      `json:"webinar_id"`
	AttendeeID *uuid.UUID     `json:"attendee_id,omitempty"`
	Recipient  string         `json:"recipient"`
	Subject    string         `json:"subject"`
	EmailType  string         `json:"email_type"`
	Status     EmailLogStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	SentAt     *time.Time     `json:"sent_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
