package liveroom

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saemahesh/webinar-ai/internal/models"
)

var (
	// ErrNotRegistered denies a viewer with no registration record for a
	// webinar that requires one.
	ErrNotRegistered = errors.New("not registered for this webinar")
	// ErrSessionEnded denies entry to a room whose session has concluded.
	// Terminal: the viewer is redirected to the ended view, never retried.
	ErrSessionEnded = errors.New("session has ended")
)

// AttendeeLookup is the registration-service read the gate consumes.
type AttendeeLookup interface {
	GetByWebinarAndEmail(ctx context.Context, webinarID uuid.UUID, email string) (*models.Attendee, error)
}

// SessionState is the snapshot a viewer receives on joining a room. The
// playback offset is computed once here; the client seeks to it and plays,
// re-syncing only as an explicit user action.
type SessionState struct {
	WebinarID         uuid.UUID `json:"webinar_id"`
	Status            Status    `json:"status"`
	TimeToStartSec    int       `json:"time_to_start_seconds,omitempty"`
	PlaybackOffsetSec int       `json:"playback_offset_seconds"`
	VideoExhausted    bool      `json:"video_exhausted,omitempty"`
	AudienceCount     int       `json:"audience_count"`
	DeliveredIDs      []string  `json:"delivered_message_ids,omitempty"`
}

// Gate decides whether a viewer may enter a room and, when allowed, yields
// the session snapshot that drives playback.
type Gate struct {
	attendees AttendeeLookup
	store     Store
	now       func() time.Time
}

// NewGate creates a join gate. now defaults to time.Now.
func NewGate(attendees AttendeeLookup, store Store, now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{attendees: attendees, store: store, now: now}
}

// Join checks registration and session status for (webinar, email). It
// returns ErrNotRegistered or ErrSessionEnded on denial; store failures are
// recovered with defaults so the simulated experience stays available.
func (g *Gate) Join(ctx context.Context, w *models.Webinar, email string) (*SessionState, error) {
	if w.RequireRegistration {
		att, err := g.attendees.GetByWebinarAndEmail(ctx, w.ID, email)
		if err != nil {
			// A lookup outage is not a denial; the caller retries.
			return nil, fmt.Errorf("registration lookup: %w", err)
		}
		if att == nil {
			return nil, ErrNotRegistered
		}
	}

	now := g.now()
	status, timeToStart := ResolveStatus(w.StartsAt, w.DurationMinutes, now)
	if w.Status == models.WebinarEnded || status == StatusEnded {
		return nil, ErrSessionEnded
	}

	offset := PlaybackOffset(w.StartsAt, now)
	offset, exhausted := ClampOffset(offset, w.VideoDurationSec)
	if exhausted {
		// Media length is a tighter bound than the nominal window.
		return nil, ErrSessionEnded
	}

	st := &SessionState{
		WebinarID:         w.ID,
		Status:            status,
		TimeToStartSec:    int(timeToStart / time.Second),
		PlaybackOffsetSec: offset,
	}
	if room, err := g.store.Get(ctx, RoomKey(w.ID)); err == nil && room != nil {
		st.AudienceCount = room.Count
		st.DeliveredIDs = room.DeliveredIDs
	} else {
		st.AudienceCount = ExpectedCount(now, w.StartsAt, w.DurationMinutes, targetEndMin)
	}
	return st, nil
}
