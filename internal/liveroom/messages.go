package liveroom

import (
	"sort"
	"time"

	"github.com/saemahesh/webinar-ai/internal/models"
)

// Delivery tracks which scheduled messages have fired for a viewing session.
// Ticks are idempotent: a message id fires at most once, and re-evaluating
// with the same clock yields nothing new. Delivery is driven by polling (the
// room runner ticks every second) rather than one timer per message, so a
// discontinuous clock self-corrects instead of silently missing fires.
type Delivery struct {
	startsAt        time.Time
	durationMinutes int
	messages        []models.ScheduledMessage
	delivered       map[string]struct{}
}

// NewDelivery creates a delivery tracker. deliveredIDs seeds the
// already-fired set (continuity across reconnects); unknown ids are kept so
// a message removed and re-added by the host does not refire.
func NewDelivery(startsAt time.Time, durationMinutes int, messages []models.ScheduledMessage, deliveredIDs []string) *Delivery {
	if durationMinutes <= 0 {
		durationMinutes = DefaultDurationMinutes
	}
	delivered := make(map[string]struct{}, len(deliveredIDs))
	for _, id := range deliveredIDs {
		delivered[id] = struct{}{}
	}
	return &Delivery{
		startsAt:        startsAt,
		durationMinutes: durationMinutes,
		messages:        messages,
		delivered:       delivered,
	}
}

// SetMessages replaces the message list (host edited the schedule mid-room).
// The delivered set is kept.
func (d *Delivery) SetMessages(messages []models.ScheduledMessage) {
	d.messages = messages
}

// Tick returns the messages that became eligible at now, ordered by trigger
// offset with ties broken by id, and marks them delivered. Messages never
// fire before the scheduled start or after the nominal end.
func (d *Delivery) Tick(now time.Time) []models.ScheduledMessage {
	if now.Before(d.startsAt) {
		return nil
	}
	end := d.startsAt.Add(time.Duration(d.durationMinutes) * time.Minute)
	if now.After(end) {
		return nil
	}

	var fired []models.ScheduledMessage
	for _, m := range d.messages {
		if m.ID == "" {
			continue
		}
		if _, ok := d.delivered[m.ID]; ok {
			continue
		}
		at := m.AtSeconds
		if at < 0 {
			at = 0
		}
		fireAt := d.startsAt.Add(time.Duration(at) * time.Second)
		if now.Before(fireAt) {
			continue
		}
		fired = append(fired, m)
	}
	sort.Slice(fired, func(i, j int) bool {
		if fired[i].AtSeconds != fired[j].AtSeconds {
			return fired[i].AtSeconds < fired[j].AtSeconds
		}
		return fired[i].ID < fired[j].ID
	})
	for _, m := range fired {
		d.delivered[m.ID] = struct{}{}
	}
	return fired
}

// DeliveredIDs returns the fired ids in sorted order for stable persistence.
func (d *Delivery) DeliveredIDs() []string {
	ids := make([]string, 0, len(d.delivered))
	for id := range d.delivered {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
