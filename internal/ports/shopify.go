package ports

import (
	"context"

	"github.com/ahmedy940/dropx-core/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// ShopifyClient defines the outbound Shopify API operations the flow needs.
type ShopifyClient interface {
	// ExchangeToken exchanges an authorization code for an access token.
	// Authorization codes are single-use, so implementations must not retry.
	ExchangeToken(ctx context.Context, shop string, code string) (string, error)

	// GetShop fetches the merchant profile using a freshly issued token.
	GetShop(ctx context.Context, shop string, accessToken string) (*domain.Shop, error)

	// CreateProduct copies a product into the merchant's store.
	CreateProduct(ctx context.Context, shop string, accessToken string, product *goshopify.Product) (*goshopify.Product, error)
}
