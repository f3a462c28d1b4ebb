package liveroom

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// RoomState is the continuity state a room persists between ticks and across
// reconnects/instances: the displayed attendee count, the fixed settle
// target, and the ids of scheduled messages already fired.
type RoomState struct {
	Count        int      `json:"count"`
	TargetEnd    int      `json:"target_end"`
	DeliveredIDs []string `json:"delivered_ids,omitempty"`
	UpdatedAt    int64    `json:"updated_at,omitempty"` // unix seconds
}

// Store is the injected key/value store for room continuity. The room core
// stays storage-agnostic: Redis in production, memory in tests. A missing key
// is (nil, nil), not an error.
type Store interface {
	Get(ctx context.Context, key string) (*RoomState, error)
	Set(ctx context.Context, key string, st *RoomState) error
	Clear(ctx context.Context, key string) error
}

// RoomKey is the store key for a webinar's shared room state.
func RoomKey(webinarID uuid.UUID) string {
	return "liveroom:" + webinarID.String()
}

// MemoryStore is an in-process Store for tests and single-instance runs.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]RoomState
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]RoomState)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*RoomState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.m[key]
	if !ok {
		return nil, nil
	}
	cp := st
	cp.DeliveredIDs = append([]string(nil), st.DeliveredIDs...)
	return &cp, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, st *RoomState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *st
	cp.DeliveredIDs = append([]string(nil), st.DeliveredIDs...)
	s.m[key] = cp
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
