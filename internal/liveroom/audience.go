package liveroom

import (
	"math"
	"math/rand"
	"time"
)

// Attendee-count curve constants. The numbers are cosmetic simulation, not a
// metric: the room starts near baseCount at the scheduled start, ramps to
// peakCount over the first five minutes, holds, and drains toward a per-room
// target over the last ten minutes.
const (
	baseCount    = 23
	peakCount    = 232
	targetEndMin = 150
	targetEndMax = 180

	rampUpWindow   = 5 * time.Minute
	rampDownWindow = 10 * time.Minute

	maxDisplayCount = 500
)

// Phase is the position of now within the attendee-count curve.
type Phase string

const (
	PhasePreStart Phase = "pre-start"
	PhaseRampUp   Phase = "ramp-up"
	PhaseSteady   Phase = "steady"
	PhaseRampDown Phase = "ramp-down"
	PhasePostEnd  Phase = "post-end"
)

// PickTargetEnd draws the count the simulation settles toward after the
// session ends. Fixed once per room.
func PickTargetEnd(rng *rand.Rand) int {
	return targetEndMin + rng.Intn(targetEndMax-targetEndMin+1)
}

// CurvePhase classifies now against the session window.
func CurvePhase(now, startsAt time.Time, durationMinutes int) Phase {
	if durationMinutes <= 0 {
		durationMinutes = DefaultDurationMinutes
	}
	if now.Before(startsAt) {
		return PhasePreStart
	}
	end := startsAt.Add(time.Duration(durationMinutes) * time.Minute)
	if !now.Before(end) {
		return PhasePostEnd
	}
	if now.Sub(startsAt) <= rampUpWindow {
		return PhaseRampUp
	}
	if end.Sub(now) <= rampDownWindow {
		return PhaseRampDown
	}
	return PhaseSteady
}

// ExpectedCount is the deterministic attendee-count curve: 0 before start,
// linear 23->232 over the first five minutes, steady 232, linear 232->target
// over the last ten minutes, target after end.
func ExpectedCount(now, startsAt time.Time, durationMinutes, targetEnd int) int {
	if durationMinutes <= 0 {
		durationMinutes = DefaultDurationMinutes
	}
	switch CurvePhase(now, startsAt, durationMinutes) {
	case PhasePreStart:
		return 0
	case PhasePostEnd:
		return targetEnd
	case PhaseRampUp:
		frac := float64(now.Sub(startsAt)) / float64(rampUpWindow)
		return baseCount + int(math.Round(float64(peakCount-baseCount)*frac))
	case PhaseRampDown:
		end := startsAt.Add(time.Duration(durationMinutes) * time.Minute)
		frac := 1 - float64(end.Sub(now))/float64(rampDownWindow)
		return peakCount + int(math.Round(float64(targetEnd-peakCount)*frac))
	default:
		return peakCount
	}
}

// Audience steps a displayed attendee count toward the expected curve in
// bounded increments so the number fluctuates organically instead of
// teleporting. The random source is injected for deterministic tests.
type Audience struct {
	count     int
	targetEnd int
	rng       *rand.Rand
}

// NewAudience creates a displayed-count stepper starting at initial. An
// initial of zero or less starts from the current expected value so a viewer
// joining mid-session sees a plausible room immediately.
func NewAudience(initial, targetEnd int, rng *rand.Rand) *Audience {
	return &Audience{count: clampCount(initial), targetEnd: targetEnd, rng: rng}
}

// Count returns the current displayed value.
func (a *Audience) Count() int { return a.count }

// TargetEnd returns the per-room settle target.
func (a *Audience) TargetEnd() int { return a.targetEnd }

// Step advances the displayed count one update toward the curve and returns
// the new value. Step magnitudes depend on phase: gentle (<=2) outside the
// session, decisive (3..9) during ramp-up, 2..7 during ramp-down, and a
// jittered hover around the peak during steady state.
func (a *Audience) Step(now, startsAt time.Time, durationMinutes int) int {
	expected := ExpectedCount(now, startsAt, durationMinutes, a.targetEnd)
	delta := expected - a.count

	switch CurvePhase(now, startsAt, durationMinutes) {
	case PhasePreStart, PhasePostEnd:
		a.count += boundedStep(delta, 2)
	case PhaseRampUp:
		a.count += boundedStep(delta, 3+a.rng.Intn(7)) // 3..9
	case PhaseRampDown:
		a.count += boundedStep(delta, 2+a.rng.Intn(6)) // 2..7
	default:
		// Steady: mild pull toward the peak plus +-(3..10) jitter.
		pull := delta
		if pull > 5 {
			pull = 5
		} else if pull < -5 {
			pull = -5
		}
		jitter := 3 + a.rng.Intn(8) // 3..10
		if a.rng.Intn(2) == 0 {
			jitter = -jitter
		}
		a.count += pull + jitter
	}
	a.count = clampCount(a.count)
	return a.count
}

// boundedStep moves toward delta by at most maxStep.
func boundedStep(delta, maxStep int) int {
	if delta > maxStep {
		return maxStep
	}
	if delta < -maxStep {
		return -maxStep
	}
	return delta
}

func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	if n > maxDisplayCount {
		return maxDisplayCount
	}
	return n
}
