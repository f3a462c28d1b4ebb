package liveroom

import (
	"testing"
	"time"

	"github.com/saemahesh/webinar-ai/internal/models"
)

func msg(id string, at int) models.ScheduledMessage {
	return models.ScheduledMessage{ID: id, AtSeconds: at, Kind: models.MessageText, Text: "m-" + id}
}

func ids(fired []models.ScheduledMessage) []string {
	out := make([]string, len(fired))
	for i, m := range fired {
		out[i] = m.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDeliveryFiresInOrderAndOnce(t *testing.T) {
	start := sessionStart
	d := NewDelivery(start, 60, []models.ScheduledMessage{
		msg("b", 300), msg("a", 300), msg("c", 10),
	}, nil)

	if fired := d.Tick(start.Add(-time.Second)); fired != nil {
		t.Fatalf("fired before start: %v", ids(fired))
	}

	fired := d.Tick(start.Add(10 * time.Second))
	if !equalIDs(ids(fired), []string{"c"}) {
		t.Fatalf("at 10s fired %v, want [c]", ids(fired))
	}

	// Catching up past both 300s messages: ties break by id.
	fired = d.Tick(start.Add(6 * time.Minute))
	if !equalIDs(ids(fired), []string{"a", "b"}) {
		t.Fatalf("at 6m fired %v, want [a b]", ids(fired))
	}

	// Same instant again: nothing refires.
	if fired := d.Tick(start.Add(6 * time.Minute)); len(fired) != 0 {
		t.Fatalf("refired %v", ids(fired))
	}
}

func TestDeliveryNothingAfterEnd(t *testing.T) {
	d := NewDelivery(sessionStart, 30, []models.ScheduledMessage{msg("late", 10)}, nil)
	if fired := d.Tick(sessionStart.Add(31 * time.Minute)); len(fired) != 0 {
		t.Fatalf("fired after end: %v", ids(fired))
	}
}

func TestDeliverySeededIDsDoNotRefire(t *testing.T) {
	d := NewDelivery(sessionStart, 60, []models.ScheduledMessage{msg("x", 5), msg("y", 5)}, []string{"x"})
	fired := d.Tick(sessionStart.Add(10 * time.Second))
	if !equalIDs(ids(fired), []string{"y"}) {
		t.Fatalf("fired %v, want [y]", ids(fired))
	}
}

func TestDeliveryNegativeOffsetClampsToStart(t *testing.T) {
	d := NewDelivery(sessionStart, 60, []models.ScheduledMessage{msg("neg", -30)}, nil)
	fired := d.Tick(sessionStart)
	if !equalIDs(ids(fired), []string{"neg"}) {
		t.Fatalf("fired %v, want [neg]", ids(fired))
	}
}

func TestDeliverySetMessagesKeepsDeliveredSet(t *testing.T) {
	d := NewDelivery(sessionStart, 60, []models.ScheduledMessage{msg("a", 5)}, nil)
	d.Tick(sessionStart.Add(10 * time.Second))

	// Host re-saves the script including the already-fired message.
	d.SetMessages([]models.ScheduledMessage{msg("a", 5), msg("b", 15)})
	fired := d.Tick(sessionStart.Add(20 * time.Second))
	if !equalIDs(ids(fired), []string{"b"}) {
		t.Fatalf("fired %v, want [b]", ids(fired))
	}

	delivered := d.DeliveredIDs()
	if !equalIDs(delivered, []string{"a", "b"}) {
		t.Fatalf("delivered = %v, want [a b]", delivered)
	}
}

func TestDeliverySkipsEmptyID(t *testing.T) {
	d := NewDelivery(sessionStart, 60, []models.ScheduledMessage{{AtSeconds: 1, Kind: models.MessageText}}, nil)
	if fired := d.Tick(sessionStart.Add(time.Minute)); len(fired) != 0 {
		t.Fatalf("fired message without id: %v", ids(fired))
	}
}
