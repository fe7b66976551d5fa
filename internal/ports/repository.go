package ports

import (
	"context"

	"github.com/ahmedy940/dropx-core/internal/domain"
)

// ShopRepository defines the interface for shop persistence.
// Upsert is keyed by shop domain and must be idempotent under retry.
type ShopRepository interface {
	Upsert(ctx context.Context, shop *domain.Shop) error
	GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error)
	GetByEmail(ctx context.Context, email string) (*domain.Shop, error)
	Delete(ctx context.Context, shopDomain string) error
}

// SessionRepository defines the interface for merchant session persistence.
type SessionRepository interface {
	Upsert(ctx context.Context, session *domain.Session) error
	GetByDomain(ctx context.Context, shopDomain string) (*domain.Session, error)
	Delete(ctx context.Context, shopDomain string) error
}

// ActivityLogRepository defines the interface for the append-only activity log.
type ActivityLogRepository interface {
	Append(ctx context.Context, shopDomain string, action string) error
	ListByShop(ctx context.Context, shopDomain string) ([]*domain.ActivityLog, error)
	Purge(ctx context.Context, shopDomain string) error
}
