package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ahmedy940/dropx-core/internal/domain"
	"github.com/ahmedy940/dropx-core/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// ProductHandler relays product events into the merchant's store. The event
// body carries the merchant's email as the identity correlator plus the
// product payload to copy.
type ProductHandler struct {
	shops   ports.ShopRepository
	shopify ports.ShopifyClient
	logger  zerolog.Logger
}

// NewProductHandler creates a new product relay handler.
func NewProductHandler(shops ports.ShopRepository, shopify ports.ShopifyClient, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		shops:   shops,
		shopify: shopify,
		logger:  logger,
	}
}

// CanHandle returns true for product topics.
func (h *ProductHandler) CanHandle(topic string) bool {
	return strings.HasPrefix(topic, "products/")
}

// Handle looks up the merchant shop by email and copies the product into it.
func (h *ProductHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var body struct {
		Email   string          `json:"email"`
		Product json.RawMessage `json:"product"`
	}
	if err := json.Unmarshal(event.Payload, &body); err != nil {
		h.logger.Warn().Err(err).Str("topic", event.Topic).Msg("Malformed product webhook payload")
		return domain.ErrMissingWebhookFields
	}
	if body.Email == "" || len(body.Product) == 0 {
		return domain.ErrMissingWebhookFields
	}

	shop, err := h.shops.GetByEmail(ctx, body.Email)
	if err != nil {
		return fmt.Errorf("failed to look up shop: %w", err)
	}
	if shop == nil || shop.AccessToken == "" {
		h.logger.Warn().Str("email", body.Email).Msg("No authenticated shop for webhook email")
		return domain.ErrShopNotAuthenticated
	}

	var product goshopify.Product
	if err := json.Unmarshal(body.Product, &product); err != nil {
		h.logger.Warn().Err(err).Str("shop", shop.ShopDomain).Msg("Malformed product in webhook payload")
		return domain.ErrMissingWebhookFields
	}

	created, err := h.shopify.CreateProduct(ctx, shop.ShopDomain, shop.AccessToken, &product)
	if err != nil {
		return fmt.Errorf("failed to sync product to %s: %w", shop.ShopDomain, err)
	}

	h.logger.Info().
		Str("shop", shop.ShopDomain).
		Uint64("productId", created.Id).
		Msg("Product synced to merchant store")
	return nil
}
