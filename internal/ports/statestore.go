package ports

import (
	"context"
	"time"
)

// StateStore holds short-lived OAuth state nonces keyed by shop domain.
//
// Put is first-writer-wins within the TTL window: if an unexpired nonce
// already exists for the shop it is kept and returned, so a double-clicked
// install cannot invalidate a nonce the first request already handed to
// Shopify. Consume returns the stored value at most once. Expired entries
// are evicted lazily on access.
type StateStore interface {
	Put(ctx context.Context, shop string, state string, ttl time.Duration) (string, error)
	Get(ctx context.Context, shop string) (string, error)
	Consume(ctx context.Context, shop string) (string, error)
}
