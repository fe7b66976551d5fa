package statestore

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmedy940/dropx-core/internal/ports"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "oauth_state:"

// RedisStore is a StateStore backed by a shared Redis instance, for
// deployments running more than one process. SET NX gives the atomic
// first-writer-wins put and GETDEL the atomic consume that concurrent
// callback handling across instances requires.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed state store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

var _ ports.StateStore = (*RedisStore)(nil)

// Put stores the state unless an unexpired entry already exists, and returns
// whichever value is live.
func (s *RedisStore) Put(ctx context.Context, shop string, state string, ttl time.Duration) (string, error) {
	key := keyPrefix + shop

	set, err := s.client.SetNX(ctx, key, state, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}
	if set {
		return state, nil
	}

	existing, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		// Entry expired between SETNX and GET; the nonce we lost to is gone,
		// so claim the slot with ours.
		if err := s.client.Set(ctx, key, state, ttl).Err(); err != nil {
			return "", fmt.Errorf("failed to store oauth state: %w", err)
		}
		return state, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read oauth state: %w", err)
	}
	return existing, nil
}

// Get returns the live state for a shop, or "" if absent or expired.
func (s *RedisStore) Get(ctx context.Context, shop string) (string, error) {
	value, err := s.client.Get(ctx, keyPrefix+shop).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read oauth state: %w", err)
	}
	return value, nil
}

// Consume returns the stored state exactly once, deleting it atomically.
func (s *RedisStore) Consume(ctx context.Context, shop string) (string, error) {
	value, err := s.client.GetDel(ctx, keyPrefix+shop).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return value, nil
}
