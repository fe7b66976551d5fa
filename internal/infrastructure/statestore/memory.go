package statestore

import (
	"context"
	"sync"
	"time"

	"github.com/ahmedy940/dropx-core/internal/ports"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long an OAuth state nonce stays valid.
const DefaultTTL = 5 * time.Minute

// MemoryStore is an in-memory StateStore for single-process deployments.
// Expired entries are evicted lazily on access; there is no sweeper.
type MemoryStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

// NewMemoryStore creates an in-memory state store.
func NewMemoryStore() *MemoryStore {
	// Cleanup interval 0 disables go-cache's background janitor; eviction
	// happens on access, matching the Redis-backed store's behavior.
	return &MemoryStore{cache: gocache.New(DefaultTTL, 0)}
}

var _ ports.StateStore = (*MemoryStore)(nil)

// Put stores the state unless an unexpired entry already exists, and returns
// whichever value is live (first-writer-wins within the TTL window).
func (s *MemoryStore) Put(_ context.Context, shop string, state string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Add fails only when an unexpired entry is present.
	if err := s.cache.Add(shop, state, ttl); err != nil {
		if existing, ok := s.cache.Get(shop); ok {
			return existing.(string), nil
		}
	}
	return state, nil
}

// Get returns the live state for a shop, or "" if absent or expired.
func (s *MemoryStore) Get(_ context.Context, shop string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.cache.Get(shop)
	if !ok {
		// go-cache treats an expired hit as a miss; delete to reclaim the slot.
		s.cache.Delete(shop)
		return "", nil
	}
	return value.(string), nil
}

// Consume returns the stored state exactly once, deleting it.
func (s *MemoryStore) Consume(_ context.Context, shop string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.cache.Get(shop)
	if !ok {
		s.cache.Delete(shop)
		return "", nil
	}
	s.cache.Delete(shop)
	return value.(string), nil
}
