package liveroom

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry holds running room runners per webinar (thread-safe). Runners are
// started when the first client joins a room and stopped when it empties, so
// idle webinars cost nothing.
type Registry struct {
	mu      sync.RWMutex
	runners map[string]*Runner

	loader   WebinarLoader
	hub      Broadcaster
	store    Store
	interval time.Duration
	logger   *zap.Logger
}

// NewRegistry creates a room registry with shared runner dependencies.
func NewRegistry(loader WebinarLoader, hub Broadcaster, store Store, interval time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		runners:  make(map[string]*Runner),
		loader:   loader,
		hub:      hub,
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Start starts the runner for webinarID if not already running.
func (reg *Registry) Start(webinarID uuid.UUID) {
	key := webinarID.String()
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.runners[key] != nil {
		return
	}
	runner := NewRunner(webinarID, reg.loader, reg.hub, reg.store, reg.interval, reg.logger)
	reg.runners[key] = runner
	runner.Start()
}

// Stop stops the runner for webinarID and removes it from the registry.
func (reg *Registry) Stop(webinarID uuid.UUID) {
	key := webinarID.String()
	reg.mu.Lock()
	runner := reg.runners[key]
	delete(reg.runners, key)
	reg.mu.Unlock()
	if runner != nil {
		runner.Stop()
	}
}

// Reload signals the runner for webinarID to refetch its webinar record.
func (reg *Registry) Reload(webinarID uuid.UUID) {
	reg.mu.RLock()
	runner := reg.runners[webinarID.String()]
	reg.mu.RUnlock()
	if runner != nil {
		runner.Reload()
	}
}

// StopAll stops every running room (server shutdown).
func (reg *Registry) StopAll() {
	reg.mu.Lock()
	runners := reg.runners
	reg.runners = make(map[string]*Runner)
	reg.mu.Unlock()
	for _, r := range runners {
		r.Stop()
	}
}
