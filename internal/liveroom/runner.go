package liveroom

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saemahesh/webinar-ai/internal/models"
)

// Room event names broadcast to connected clients.
const (
	EventRoomStatus    = "room_status"
	EventChatMessage   = "chat_message"
	EventAudienceCount = "audience_count"
	EventRoomControl   = "room_control"
)

// Ticker cadence: the clock re-evaluates every second (message delivery must
// poll at 1s per the delivery contract); the displayed audience count only
// moves every few ticks so it reads as organic drift.
const (
	DefaultTickInterval = time.Second
	audienceEveryTicks  = 5
	reloadEveryTicks    = 30
	endedGrace          = 30 * time.Second
)

// Broadcaster pushes room events to all connected clients of a webinar,
// including those on other instances.
type Broadcaster interface {
	BroadcastToWebinarAndPublish(webinarID uuid.UUID, event string, payload interface{})
}

// WebinarLoader fetches the authoritative webinar record. The runner reloads
// it periodically so host edits (schedule, messages, forced status) take
// effect mid-room.
type WebinarLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Webinar, error)
}

// StatusPayload is the body of room_status events.
type StatusPayload struct {
	Status            Status `json:"status"`
	TimeToStartSec    int    `json:"time_to_start_seconds,omitempty"`
	PlaybackOffsetSec int    `json:"playback_offset_seconds"`
}

// CountPayload is the body of audience_count events.
type CountPayload struct {
	Count int `json:"count"`
}

// Runner drives one webinar's simulated-live room: a single ticker loop that
// re-resolves status, fires scheduled messages, and steps the attendee count,
// broadcasting changes through the hub. All derived state is recomputed from
// the schedule each tick; only continuity counters touch the Store.
type Runner struct {
	webinarID uuid.UUID
	loader    WebinarLoader
	hub       Broadcaster
	store     Store
	logger    *zap.Logger
	interval  time.Duration
	rng       *rand.Rand

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	reloadCh chan struct{}
}

// NewRunner creates a room runner for a webinar.
func NewRunner(webinarID uuid.UUID, loader WebinarLoader, hub Broadcaster, store Store, interval time.Duration, logger *zap.Logger) *Runner {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		webinarID: webinarID,
		loader:    loader,
		hub:       hub,
		store:     store,
		logger:    logger,
		interval:  interval,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		done:      make(chan struct{}),
		reloadCh:  make(chan struct{}, 1),
	}
}

// Start begins the room loop. Call Stop to release resources.
func (r *Runner) Start() {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.mu.Unlock()

	go r.run(ctx)
	r.logger.Info("room runner started", zap.String("webinar_id", r.webinarID.String()))
}

// Stop stops the room loop and waits for the goroutine to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.cancel = nil
	<-r.done
	r.logger.Info("room runner stopped", zap.String("webinar_id", r.webinarID.String()))
}

// Reload signals the runner to refetch the webinar record on the next tick
// (host edited the schedule or messages).
func (r *Runner) Reload() {
	select {
	case r.reloadCh <- struct{}{}:
	default:
	}
}

func (r *Runner) run(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	w, err := r.loader.GetByID(ctx, r.webinarID)
	if err != nil || w == nil {
		r.logger.Warn("room runner load webinar failed", zap.Error(err), zap.String("webinar_id", r.webinarID.String()))
		return
	}

	// Continuity: restore count, settle target and delivered ids if a prior
	// run left them; otherwise seed from the curve.
	var prior *RoomState
	if st, err := r.store.Get(ctx, RoomKey(r.webinarID)); err == nil {
		prior = st
	}
	now := time.Now()
	targetEnd := 0
	initial := 0
	var deliveredIDs []string
	if prior != nil {
		targetEnd = prior.TargetEnd
		initial = prior.Count
		deliveredIDs = prior.DeliveredIDs
	}
	if targetEnd < targetEndMin || targetEnd > targetEndMax {
		targetEnd = PickTargetEnd(r.rng)
	}
	if initial <= 0 {
		initial = ExpectedCount(now, w.StartsAt, w.DurationMinutes, targetEnd)
	}
	audience := NewAudience(initial, targetEnd, r.rng)
	delivery := NewDelivery(w.StartsAt, w.DurationMinutes, w.ScheduledMessages, deliveredIDs)

	lastStatus, _ := ResolveStatus(w.StartsAt, w.DurationMinutes, now)
	r.broadcastStatus(w, now, lastStatus)

	var tick int
	var endedAt time.Time
	for {
		select {
		case <-ctx.Done():
			r.persist(audience, delivery)
			return
		case <-r.reloadCh:
			if fresh, err := r.loader.GetByID(ctx, r.webinarID); err == nil && fresh != nil {
				w = fresh
				delivery.SetMessages(w.ScheduledMessages)
			}
			continue
		case <-ticker.C:
		}
		tick++
		now = time.Now()

		if tick%reloadEveryTicks == 0 {
			if fresh, err := r.loader.GetByID(ctx, r.webinarID); err == nil && fresh != nil {
				// Keep ticking on last-known data when the fetch fails; a
				// transient outage must not stop the room clock.
				w = fresh
				delivery.SetMessages(w.ScheduledMessages)
			}
		}

		status, _ := ResolveStatus(w.StartsAt, w.DurationMinutes, now)
		if w.Status == models.WebinarEnded {
			status = StatusEnded
		}
		if status != lastStatus {
			lastStatus = status
			r.broadcastStatus(w, now, status)
		}

		for _, m := range delivery.Tick(now) {
			r.hub.BroadcastToWebinarAndPublish(r.webinarID, EventChatMessage, m)
		}

		if tick%audienceEveryTicks == 0 {
			count := audience.Step(now, w.StartsAt, w.DurationMinutes)
			r.hub.BroadcastToWebinarAndPublish(r.webinarID, EventAudienceCount, CountPayload{Count: count})
			r.persist(audience, delivery)
		}

		if status == StatusEnded {
			if endedAt.IsZero() {
				endedAt = now
			} else if now.Sub(endedAt) > endedGrace {
				r.persist(audience, delivery)
				r.logger.Info("room ended, runner exiting", zap.String("webinar_id", r.webinarID.String()))
				return
			}
		}
	}
}

func (r *Runner) broadcastStatus(w *models.Webinar, now time.Time, status Status) {
	_, timeToStart := ResolveStatus(w.StartsAt, w.DurationMinutes, now)
	offset := PlaybackOffset(w.StartsAt, now)
	offset, _ = ClampOffset(offset, w.VideoDurationSec)
	r.hub.BroadcastToWebinarAndPublish(r.webinarID, EventRoomStatus, StatusPayload{
		Status:            status,
		TimeToStartSec:    int(timeToStart / time.Second),
		PlaybackOffsetSec: offset,
	})
}

func (r *Runner) persist(audience *Audience, delivery *Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st := &RoomState{
		Count:        audience.Count(),
		TargetEnd:    audience.TargetEnd(),
		DeliveredIDs: delivery.DeliveredIDs(),
		UpdatedAt:    time.Now().Unix(),
	}
	if err := r.store.Set(ctx, RoomKey(r.webinarID), st); err != nil {
		r.logger.Warn("room state persist failed", zap.Error(err), zap.String("webinar_id", r.webinarID.String()))
	}
}
