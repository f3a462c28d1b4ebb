// Package liveroom implements the simulated-live session core: resolving the
// waiting/live/ended status of a scheduled webinar against wall-clock time,
// seeking playback so every viewer appears to join in sync, delivering
// scheduled chat messages, and simulating the attendee-count curve. Everything
// here is a pure function of (schedule, now, persisted counters); durable
// state lives behind the Store interface.
package liveroom

import "time"

// Status is the derived room state for a viewer.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusLive    Status = "live"
	StatusEnded   Status = "ended"
)

// DefaultDurationMinutes is substituted when a webinar record carries a
// missing or non-positive duration. Partially populated records must never
// crash the room.
const DefaultDurationMinutes = 30

// ResolveStatus computes the room status and, while waiting, the time until
// the scheduled start. The live window is [startsAt, startsAt+duration]
// inclusive on both ends; any later instant is ended and stays ended.
func ResolveStatus(startsAt time.Time, durationMinutes int, now time.Time) (Status, time.Duration) {
	if durationMinutes <= 0 {
		durationMinutes = DefaultDurationMinutes
	}
	if now.Before(startsAt) {
		return StatusWaiting, startsAt.Sub(now)
	}
	end := startsAt.Add(time.Duration(durationMinutes) * time.Minute)
	if now.After(end) {
		return StatusEnded, 0
	}
	return StatusLive, 0
}

// PlaybackOffset returns the whole seconds elapsed since the scheduled start,
// never negative. It is computed once when playback is initiated for a viewer;
// re-syncing is an explicit client action, not something pushed per tick.
func PlaybackOffset(startsAt, now time.Time) int {
	d := now.Sub(startsAt)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// ClampOffset applies the media length as a tighter upper bound on "live".
// When the computed offset reaches the end of the actual video the content is
// exhausted and the session counts as ended even if the nominal duration
// window has not elapsed. videoDurationSec <= 0 means the length is unknown.
func ClampOffset(offsetSec, videoDurationSec int) (clamped int, exhausted bool) {
	if videoDurationSec > 0 && offsetSec >= videoDurationSec {
		return videoDurationSec, true
	}
	return offsetSec, false
}
