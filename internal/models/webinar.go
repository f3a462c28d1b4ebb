package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WebinarStatus is the persisted room state of a webinar. "scheduled" means
// the status is derived from the schedule; hosts may force live/paused/ended.
type WebinarStatus string

const (
	WebinarScheduled WebinarStatus = "scheduled"
	WebinarLive      WebinarStatus = "live"
	WebinarPaused    WebinarStatus = "paused"
	WebinarEnded     WebinarStatus = "ended"
)

// FormFieldConfig is one host-defined field in the attendee registration form.
type FormFieldConfig struct {
	ID       string `json:"id"`       // key for storing the response, e.g. "company"
	Label    string `json:"label"`    // display label, e.g. "Company name"
	Type     string `json:"type"`     // "text", "email", "number", "textarea"
	Required bool   `json:"required"`
}

// MessageKind is the rendering type of a scheduled chat message.
type MessageKind string

const (
	MessageText  MessageKind = "text"
	MessageImage MessageKind = "image"
	MessageCTA   MessageKind = "cta"
)

// ScheduledMessage is a chat message configured to appear at a fixed offset
// into the session. Offsets are seconds from the scheduled start; IDs are
// unique within a webinar and guard against double delivery.
type ScheduledMessage struct {
	ID          string      `json:"id"`
	AtSeconds   int         `json:"at_seconds"`
	Kind        MessageKind `json:"kind"`
	Sender      string      `json:"sender,omitempty"`
	Text        string      `json:"text,omitempty"`
	ImageURL    string      `json:"image_url,omitempty"`
	Caption     string      `json:"caption,omitempty"`
	ButtonLabel string      `json:"button_label,omitempty"`
	ButtonURL   string      `json:"button_url,omitempty"`
}

// Webinar represents a scheduled presentation of a pre-recorded video.
type Webinar struct {
	ID                  uuid.UUID          `json:"id"`
	Title               string             `json:"title"`
	Description         string             `json:"description"`
	StartsAt            time.Time          `json:"starts_at"`
	DurationMinutes     int                `json:"duration_minutes"`
	MaxAttendees        int                `json:"max_attendees"`
	RequireRegistration bool               `json:"require_registration"`
	Status              WebinarStatus      `json:"status"`
	HostID              uuid.UUID          `json:"host_id"`
	VideoKey            string             `json:"video_key,omitempty"`              // S3 object key of the uploaded video
	VideoDurationSec    int                `json:"video_duration_seconds,omitempty"` // 0 = unknown
	CustomFields        json.RawMessage    `json:"custom_fields,omitempty"`          // []FormFieldConfig
	ScheduledMessages   []ScheduledMessage `json:"scheduled_messages,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// EndsAt returns the nominal end of the session (start + duration).
func (w *Webinar) EndsAt() time.Time {
	return w.StartsAt.Add(time.Duration(w.DurationMinutes) * time.Minute)
}
