package liveroom

import (
	"math/rand"
	"testing"
	"time"
)

func TestCurvePhase(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want Phase
	}{
		{"before start", sessionStart.Add(-time.Minute), PhasePreStart},
		{"at start", sessionStart, PhaseRampUp},
		{"end of ramp up", sessionStart.Add(5 * time.Minute), PhaseRampUp},
		{"mid session", sessionStart.Add(20 * time.Minute), PhaseSteady},
		{"last ten minutes", sessionStart.Add(52 * time.Minute), PhaseRampDown},
		{"at end", sessionStart.Add(60 * time.Minute), PhasePostEnd},
		{"after end", sessionStart.Add(2 * time.Hour), PhasePostEnd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurvePhase(tt.now, sessionStart, 60); got != tt.want {
				t.Errorf("CurvePhase = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpectedCount(t *testing.T) {
	const targetEnd = 165
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before start", sessionStart.Add(-time.Hour), 0},
		{"at start", sessionStart, baseCount},
		{"halfway up the ramp", sessionStart.Add(150 * time.Second), 128},
		{"end of ramp up", sessionStart.Add(5 * time.Minute), peakCount},
		{"steady", sessionStart.Add(30 * time.Minute), peakCount},
		{"halfway down the ramp", sessionStart.Add(55 * time.Minute), 198},
		{"after end", sessionStart.Add(61 * time.Minute), targetEnd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpectedCount(tt.now, sessionStart, 60, targetEnd); got != tt.want {
				t.Errorf("ExpectedCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPickTargetEndWithinRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		got := PickTargetEnd(rng)
		if got < targetEndMin || got > targetEndMax {
			t.Fatalf("PickTargetEnd = %d, outside [%d, %d]", got, targetEndMin, targetEndMax)
		}
	}
}

func TestAudienceStepBounds(t *testing.T) {
	tests := []struct {
		name    string
		initial int
		now     time.Time
		maxStep int
	}{
		{"pre-start creeps", 10, sessionStart.Add(-time.Minute), 2},
		{"ramp up climbs", baseCount, sessionStart.Add(2 * time.Minute), 9},
		{"ramp down drains", peakCount, sessionStart.Add(55 * time.Minute), 7},
		{"post end settles", peakCount, sessionStart.Add(2 * time.Hour), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			a := NewAudience(tt.initial, 165, rng)
			for i := 0; i < 50; i++ {
				prev := a.Count()
				next := a.Step(tt.now, sessionStart, 60)
				if diff := next - prev; diff > tt.maxStep || diff < -tt.maxStep {
					t.Fatalf("step %d moved by %d, max allowed %d", i, diff, tt.maxStep)
				}
			}
		})
	}
}

func TestAudienceSteadyHoversNearPeak(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	a := NewAudience(peakCount, 165, rng)
	now := sessionStart.Add(20 * time.Minute)
	for i := 0; i < 200; i++ {
		got := a.Step(now, sessionStart, 60)
		if got < peakCount-30 || got > peakCount+30 {
			t.Fatalf("step %d drifted to %d, expected near %d", i, got, peakCount)
		}
	}
}

func TestAudienceClamps(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if a := NewAudience(-5, 165, rng); a.Count() != 0 {
		t.Errorf("negative initial = %d, want 0", a.Count())
	}
	if a := NewAudience(9999, 165, rng); a.Count() != maxDisplayCount {
		t.Errorf("oversized initial = %d, want %d", a.Count(), maxDisplayCount)
	}
}

func TestAudienceConvergesToTargetAfterEnd(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	a := NewAudience(peakCount, 160, rng)
	now := sessionStart.Add(2 * time.Hour)
	for i := 0; i < 100; i++ {
		a.Step(now, sessionStart, 60)
	}
	if a.Count() != 160 {
		t.Errorf("count after settling = %d, want 160", a.Count())
	}
}
