package liveroom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/saemahesh/webinar-ai/internal/models"
)

type fakeAttendees struct {
	registered map[string]bool
	err        error
}

func (f *fakeAttendees) GetByWebinarAndEmail(_ context.Context, _ uuid.UUID, email string) (*models.Attendee, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !f.registered[email] {
		return nil, nil
	}
	return &models.Attendee{Email: email}, nil
}

func testWebinar(startsAt time.Time) *models.Webinar {
	return &models.Webinar{
		ID:                  uuid.New(),
		Title:               "Scaling with Go",
		StartsAt:            startsAt,
		DurationMinutes:     60,
		RequireRegistration: true,
		Status:              models.WebinarScheduled,
	}
}

func TestGateJoinRequiresRegistration(t *testing.T) {
	attendees := &fakeAttendees{registered: map[string]bool{"in@example.com": true}}
	now := sessionStart.Add(10 * time.Minute)
	gate := NewGate(attendees, NewMemoryStore(), func() time.Time { return now })
	w := testWebinar(sessionStart)

	if _, err := gate.Join(context.Background(), w, "out@example.com"); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("unregistered viewer: err = %v, want ErrNotRegistered", err)
	}

	st, err := gate.Join(context.Background(), w, "in@example.com")
	if err != nil {
		t.Fatalf("registered viewer: %v", err)
	}
	if st.Status != StatusLive {
		t.Errorf("status = %q, want live", st.Status)
	}
	if st.PlaybackOffsetSec != 600 {
		t.Errorf("playback offset = %d, want 600", st.PlaybackOffsetSec)
	}
}

func TestGateJoinLookupFailureIsNotDenial(t *testing.T) {
	attendees := &fakeAttendees{err: errors.New("connection refused")}
	now := sessionStart.Add(10 * time.Minute)
	gate := NewGate(attendees, NewMemoryStore(), func() time.Time { return now })

	_, err := gate.Join(context.Background(), testWebinar(sessionStart), "in@example.com")
	if err == nil {
		t.Fatal("lookup outage produced no error")
	}
	if errors.Is(err, ErrNotRegistered) {
		t.Fatalf("lookup outage reported as ErrNotRegistered: %v", err)
	}
	if errors.Is(err, ErrSessionEnded) {
		t.Fatalf("lookup outage reported as ErrSessionEnded: %v", err)
	}
}

func TestGateJoinOpenWebinarSkipsLookup(t *testing.T) {
	attendees := &fakeAttendees{err: errors.New("must not be called")}
	now := sessionStart.Add(time.Minute)
	gate := NewGate(attendees, NewMemoryStore(), func() time.Time { return now })
	w := testWebinar(sessionStart)
	w.RequireRegistration = false

	if _, err := gate.Join(context.Background(), w, "anyone@example.com"); err != nil {
		t.Fatalf("open webinar join: %v", err)
	}
}

func TestGateJoinEnded(t *testing.T) {
	attendees := &fakeAttendees{registered: map[string]bool{"in@example.com": true}}

	t.Run("past nominal end", func(t *testing.T) {
		now := sessionStart.Add(2 * time.Hour)
		gate := NewGate(attendees, NewMemoryStore(), func() time.Time { return now })
		if _, err := gate.Join(context.Background(), testWebinar(sessionStart), "in@example.com"); !errors.Is(err, ErrSessionEnded) {
			t.Fatalf("err = %v, want ErrSessionEnded", err)
		}
	})

	t.Run("host forced end overrides schedule", func(t *testing.T) {
		now := sessionStart.Add(10 * time.Minute)
		gate := NewGate(attendees, NewMemoryStore(), func() time.Time { return now })
		w := testWebinar(sessionStart)
		w.Status = models.WebinarEnded
		if _, err := gate.Join(context.Background(), w, "in@example.com"); !errors.Is(err, ErrSessionEnded) {
			t.Fatalf("err = %v, want ErrSessionEnded", err)
		}
	})

	t.Run("video exhausted before nominal end", func(t *testing.T) {
		now := sessionStart.Add(30 * time.Minute)
		gate := NewGate(attendees, NewMemoryStore(), func() time.Time { return now })
		w := testWebinar(sessionStart)
		w.VideoDurationSec = 20 * 60
		if _, err := gate.Join(context.Background(), w, "in@example.com"); !errors.Is(err, ErrSessionEnded) {
			t.Fatalf("err = %v, want ErrSessionEnded", err)
		}
	})
}

func TestGateJoinWaiting(t *testing.T) {
	attendees := &fakeAttendees{registered: map[string]bool{"in@example.com": true}}
	now := sessionStart.Add(-90 * time.Second)
	gate := NewGate(attendees, NewMemoryStore(), func() time.Time { return now })

	st, err := gate.Join(context.Background(), testWebinar(sessionStart), "in@example.com")
	if err != nil {
		t.Fatalf("join before start: %v", err)
	}
	if st.Status != StatusWaiting {
		t.Errorf("status = %q, want waiting", st.Status)
	}
	if st.TimeToStartSec != 90 {
		t.Errorf("time to start = %d, want 90", st.TimeToStartSec)
	}
	if st.PlaybackOffsetSec != 0 {
		t.Errorf("playback offset = %d, want 0", st.PlaybackOffsetSec)
	}
}

func TestGateJoinSnapshotFromStore(t *testing.T) {
	attendees := &fakeAttendees{registered: map[string]bool{"in@example.com": true}}
	store := NewMemoryStore()
	now := sessionStart.Add(10 * time.Minute)
	gate := NewGate(attendees, store, func() time.Time { return now })
	w := testWebinar(sessionStart)

	if err := store.Set(context.Background(), RoomKey(w.ID), &RoomState{
		Count: 217, TargetEnd: 170, DeliveredIDs: []string{"m1", "m2"},
	}); err != nil {
		t.Fatal(err)
	}

	st, err := gate.Join(context.Background(), w, "in@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if st.AudienceCount != 217 {
		t.Errorf("audience count = %d, want 217 from store", st.AudienceCount)
	}
	if len(st.DeliveredIDs) != 2 {
		t.Errorf("delivered ids = %v, want 2 entries", st.DeliveredIDs)
	}
}

func TestGateJoinFallsBackToExpectedCount(t *testing.T) {
	attendees := &fakeAttendees{registered: map[string]bool{"in@example.com": true}}
	now := sessionStart.Add(20 * time.Minute)
	gate := NewGate(attendees, NewMemoryStore(), func() time.Time { return now })

	st, err := gate.Join(context.Background(), testWebinar(sessionStart), "in@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if st.AudienceCount != peakCount {
		t.Errorf("audience count = %d, want expected steady value %d", st.AudienceCount, peakCount)
	}
}
