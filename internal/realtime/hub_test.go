package realtime

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// loopbackPubSub mimics Redis pub/sub in-process: a published event is
// delivered to every subscription on the channel, including the publisher's
// own, exactly as Redis does.
type loopbackPubSub struct {
	mu       sync.Mutex
	handlers map[uuid.UUID][]func(event string, payload []byte)
}

func newLoopbackPubSub() *loopbackPubSub {
	return &loopbackPubSub{handlers: make(map[uuid.UUID][]func(event string, payload []byte))}
}

func (l *loopbackPubSub) PublishWebinarEvent(webinarID uuid.UUID, event string, payload []byte) error {
	l.mu.Lock()
	handlers := append(([]func(string, []byte))(nil), l.handlers[webinarID]...)
	l.mu.Unlock()
	for _, h := range handlers {
		h(event, payload)
	}
	return nil
}

func (l *loopbackPubSub) SubscribeWebinar(webinarID uuid.UUID, handler func(event string, payload []byte)) (func(), error) {
	l.mu.Lock()
	l.handlers[webinarID] = append(l.handlers[webinarID], handler)
	l.mu.Unlock()
	return func() {}, nil
}

func newTestClient(webinarID uuid.UUID) *Client {
	return &Client{
		ID:        uuid.New().String(),
		WebinarID: webinarID,
		Role:      "viewer",
		send:      make(chan WSMessage, 16),
	}
}

func received(c *Client) int {
	n := 0
	for {
		select {
		case <-c.send:
			n++
		default:
			return n
		}
	}
}

func TestBroadcastAndPublishDeliversOnce(t *testing.T) {
	pubsub := newLoopbackPubSub()
	hub := NewHub(zap.NewNop(), pubsub, pubsub)
	webinarID := uuid.New()
	c := newTestClient(webinarID)
	hub.Register(c)
	defer hub.Unregister(c)

	hub.BroadcastToWebinarAndPublish(webinarID, "chat_message", ChatEcho{ID: "m1", Text: "hi"})

	if got := received(c); got != 1 {
		t.Fatalf("client received %d copies of one broadcast event, want 1", got)
	}
}

func TestBroadcastAndPublishWithoutRedis(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	webinarID := uuid.New()
	c := newTestClient(webinarID)
	hub.Register(c)
	defer hub.Unregister(c)

	hub.BroadcastToWebinarAndPublish(webinarID, "audience_count", map[string]int{"count": 7})

	if got := received(c); got != 1 {
		t.Fatalf("client received %d events, want 1", got)
	}
}

func TestBroadcastConcurrentWithRegistration(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	webinarID := uuid.New()

	stable := newTestClient(webinarID)
	hub.Register(stable)
	defer hub.Unregister(stable)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			c := newTestClient(webinarID)
			hub.Register(c)
			hub.Unregister(c)
		}
	}()

	for i := 0; i < 500; i++ {
		hub.BroadcastToWebinar(webinarID, "room_status", map[string]string{"status": "live"})
	}
	<-done
}

type lifecycleRecorder struct {
	mu       sync.Mutex
	occupied int
	emptied  int
}

func (r *lifecycleRecorder) RoomOccupied(uuid.UUID) {
	r.mu.Lock()
	r.occupied++
	r.mu.Unlock()
}

func (r *lifecycleRecorder) RoomEmptied(uuid.UUID) {
	r.mu.Lock()
	r.emptied++
	r.mu.Unlock()
}

func TestRoomLifecycleFiresOnFirstAndLast(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	rec := &lifecycleRecorder{}
	hub.SetRoomLifecycleHandler(rec)
	webinarID := uuid.New()

	a := newTestClient(webinarID)
	b := newTestClient(webinarID)
	hub.Register(a)
	hub.Register(b)
	hub.Unregister(a)
	hub.Unregister(b)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.occupied != 1 || rec.emptied != 1 {
		t.Fatalf("lifecycle fired occupied=%d emptied=%d, want 1 and 1", rec.occupied, rec.emptied)
	}
}
