package liveroom

import (
	"testing"
	"time"
)

var sessionStart = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name       string
		duration   int
		now        time.Time
		wantStatus Status
		wantToGo   time.Duration
	}{
		{"well before start", 60, sessionStart.Add(-2 * time.Hour), StatusWaiting, 2 * time.Hour},
		{"one second before start", 60, sessionStart.Add(-time.Second), StatusWaiting, time.Second},
		{"exactly at start", 60, sessionStart, StatusLive, 0},
		{"mid session", 60, sessionStart.Add(30 * time.Minute), StatusLive, 0},
		{"exactly at end", 60, sessionStart.Add(60 * time.Minute), StatusLive, 0},
		{"one second after end", 60, sessionStart.Add(60*time.Minute + time.Second), StatusEnded, 0},
		{"long after end", 60, sessionStart.Add(48 * time.Hour), StatusEnded, 0},
		{"zero duration falls back to default", 0, sessionStart.Add(29 * time.Minute), StatusLive, 0},
		{"zero duration ended after default window", 0, sessionStart.Add(31 * time.Minute), StatusEnded, 0},
		{"negative duration falls back to default", -5, sessionStart.Add(10 * time.Minute), StatusLive, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, toGo := ResolveStatus(sessionStart, tt.duration, tt.now)
			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if toGo != tt.wantToGo {
				t.Errorf("time to start = %v, want %v", toGo, tt.wantToGo)
			}
		})
	}
}

func TestPlaybackOffset(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before start clamps to zero", sessionStart.Add(-10 * time.Minute), 0},
		{"at start", sessionStart, 0},
		{"five minutes in", sessionStart.Add(5 * time.Minute), 300},
		{"sub-second truncates", sessionStart.Add(90*time.Second + 700*time.Millisecond), 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlaybackOffset(sessionStart, tt.now); got != tt.want {
				t.Errorf("PlaybackOffset = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClampOffset(t *testing.T) {
	tests := []struct {
		name          string
		offset, video int
		wantOffset    int
		wantExhausted bool
	}{
		{"within video", 100, 3600, 100, false},
		{"at video end", 3600, 3600, 3600, true},
		{"past video end", 4000, 3600, 3600, true},
		{"unknown length never exhausts", 4000, 0, 4000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, exhausted := ClampOffset(tt.offset, tt.video)
			if got != tt.wantOffset || exhausted != tt.wantExhausted {
				t.Errorf("ClampOffset(%d, %d) = (%d, %v), want (%d, %v)",
					tt.offset, tt.video, got, exhausted, tt.wantOffset, tt.wantExhausted)
			}
		})
	}
}
