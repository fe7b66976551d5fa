package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahmedy940/dropx-core/internal/domain"
	"github.com/ahmedy940/dropx-core/internal/ports"

	"github.com/rs/zerolog"
)

// AppUninstalledHandler cleans up when a merchant removes the app: the
// session goes away and the stored access token is cleared. The shop record
// itself is kept for audit, with an uninstall entry in the activity log.
type AppUninstalledHandler struct {
	shops    ports.ShopRepository
	sessions ports.SessionRepository
	activity ports.ActivityLogRepository
	logger   zerolog.Logger
}

// NewAppUninstalledHandler creates a new app uninstalled webhook handler.
func NewAppUninstalledHandler(
	shops ports.ShopRepository,
	sessions ports.SessionRepository,
	activity ports.ActivityLogRepository,
	logger zerolog.Logger,
) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		shops:    shops,
		sessions: sessions,
		activity: activity,
		logger:   logger,
	}
}

// CanHandle returns true for the app/uninstalled topic.
func (h *AppUninstalledHandler) CanHandle(topic string) bool {
	return topic == "app/uninstalled"
}

// Handle revokes the merchant's stored credentials.
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	shopDomain := event.Shop
	if shopDomain == "" {
		var payload struct {
			Domain          string `json:"domain"`
			MyshopifyDomain string `json:"myshopify_domain"`
		}
		if err := json.Unmarshal(event.Payload, &payload); err == nil {
			if payload.MyshopifyDomain != "" {
				shopDomain = payload.MyshopifyDomain
			} else {
				shopDomain = payload.Domain
			}
		}
	}
	if shopDomain == "" {
		return domain.ErrMissingWebhookFields
	}

	if err := h.sessions.Delete(ctx, shopDomain); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	shop, err := h.shops.GetByDomain(ctx, shopDomain)
	if err != nil {
		return fmt.Errorf("failed to look up shop: %w", err)
	}
	if shop != nil {
		shop.AccessToken = ""
		if err := h.shops.Upsert(ctx, shop); err != nil {
			return fmt.Errorf("failed to clear shop token: %w", err)
		}
	}

	if err := h.activity.Append(ctx, shopDomain, domain.ActionUninstalled); err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	h.logger.Info().Str("shop", shopDomain).Msg("App uninstalled, credentials revoked")
	return nil
}
