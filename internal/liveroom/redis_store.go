package liveroom

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists room continuity state in Redis so counts and delivered
// ids survive restarts and are shared across instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed Store. Entries expire after ttl
// (rooms are ephemeral; a day-old counter is worthless).
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*RoomState, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("liveroom store get: %w", err)
	}
	var st RoomState
	if err := json.Unmarshal(raw, &st); err != nil {
		// Corrupt entries are treated as absent; the room rebuilds its state.
		return nil, nil
	}
	return &st, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, st *RoomState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("liveroom store marshal: %w", err)
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("liveroom store set: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("liveroom store clear: %w", err)
	}
	return nil
}
