package liveroom

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/saemahesh/webinar-ai/internal/models"
)

type fakeLoader struct {
	mu  sync.Mutex
	w   *models.Webinar
	err error
}

func (f *fakeLoader) GetByID(_ context.Context, _ uuid.UUID) (*models.Webinar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.w, f.err
}

type recordedEvent struct {
	event   string
	payload interface{}
}

type fakeHub struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeHub) BroadcastToWebinarAndPublish(_ uuid.UUID, event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{event, payload})
}

func (f *fakeHub) byName(event string) []recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedEvent
	for _, e := range f.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func liveWebinar() *models.Webinar {
	return &models.Webinar{
		ID:              uuid.New(),
		Title:           "Live now",
		StartsAt:        time.Now().Add(-time.Minute),
		DurationMinutes: 60,
		Status:          models.WebinarScheduled,
		ScheduledMessages: []models.ScheduledMessage{
			{ID: "hello", AtSeconds: 0, Kind: models.MessageText, Text: "welcome everyone"},
		},
	}
}

func TestRunnerBroadcastsAndPersists(t *testing.T) {
	w := liveWebinar()
	loader := &fakeLoader{w: w}
	hub := &fakeHub{}
	store := NewMemoryStore()

	r := NewRunner(w.ID, loader, hub, store, 5*time.Millisecond, nil)
	r.Start()
	time.Sleep(150 * time.Millisecond)
	r.Stop()

	if got := hub.byName(EventRoomStatus); len(got) == 0 {
		t.Error("no room_status broadcast")
	}
	if got := hub.byName(EventChatMessage); len(got) != 1 {
		t.Errorf("chat_message broadcasts = %d, want exactly 1", len(got))
	}
	if got := hub.byName(EventAudienceCount); len(got) == 0 {
		t.Error("no audience_count broadcast")
	}

	st, err := store.Get(context.Background(), RoomKey(w.ID))
	if err != nil {
		t.Fatal(err)
	}
	if st == nil {
		t.Fatal("no room state persisted")
	}
	if st.TargetEnd < targetEndMin || st.TargetEnd > targetEndMax {
		t.Errorf("persisted target end = %d, outside [%d, %d]", st.TargetEnd, targetEndMin, targetEndMax)
	}
	if len(st.DeliveredIDs) != 1 || st.DeliveredIDs[0] != "hello" {
		t.Errorf("persisted delivered ids = %v, want [hello]", st.DeliveredIDs)
	}
}

func TestRunnerRestoresDeliveredIDs(t *testing.T) {
	w := liveWebinar()
	loader := &fakeLoader{w: w}
	hub := &fakeHub{}
	store := NewMemoryStore()

	if err := store.Set(context.Background(), RoomKey(w.ID), &RoomState{
		Count: 100, TargetEnd: 170, DeliveredIDs: []string{"hello"},
	}); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(w.ID, loader, hub, store, 5*time.Millisecond, nil)
	r.Start()
	time.Sleep(100 * time.Millisecond)
	r.Stop()

	if got := hub.byName(EventChatMessage); len(got) != 0 {
		t.Errorf("already-delivered message refired %d times", len(got))
	}
}

func TestRunnerStopsCleanlyOnLoadFailure(t *testing.T) {
	loader := &fakeLoader{err: errors.New("db down")}
	r := NewRunner(uuid.New(), loader, &fakeHub{}, NewMemoryStore(), 5*time.Millisecond, nil)
	r.Start()
	time.Sleep(30 * time.Millisecond)
	r.Stop() // must not hang even though run() exited on its own
}

func TestRegistryLifecycle(t *testing.T) {
	w := liveWebinar()
	loader := &fakeLoader{w: w}
	reg := NewRegistry(loader, &fakeHub{}, NewMemoryStore(), 5*time.Millisecond, nil)

	reg.Start(w.ID)
	reg.Start(w.ID) // idempotent
	reg.Reload(w.ID)
	reg.Reload(uuid.New()) // unknown room is a no-op

	reg.Stop(w.ID)
	reg.Stop(w.ID) // already stopped

	reg.Start(w.ID)
	reg.StopAll()
}
