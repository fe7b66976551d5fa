package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ahmedy940/dropx-core/internal/domain"
	"github.com/ahmedy940/dropx-core/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

const outboundTimeout = 10 * time.Second

type client struct {
	apiKey    string
	apiSecret string
	app       goshopify.App
	http      *http.Client
	logger    zerolog.Logger
	scheme    string
}

// NewClient creates a Shopify client adapter bound to the app credentials.
func NewClient(apiKey, apiSecret string, logger zerolog.Logger) ports.ShopifyClient {
	app := goshopify.App{
		ApiKey:    apiKey,
		ApiSecret: apiSecret,
	}
	return &client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		app:       app,
		http:      &http.Client{Timeout: outboundTimeout},
		logger:    logger,
		scheme:    "https",
	}
}

// ExchangeToken exchanges an authorization code for an access token.
// The code is single-use on Shopify's side, so there is deliberately no
// retry here: a failure surfaces to the caller and the merchant restarts
// the install flow.
func (c *client) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	tokenURL := fmt.Sprintf("%s://%s/admin/oauth/access_token", c.scheme, shop)

	payload, err := json.Marshal(map[string]string{
		"client_id":     c.apiKey,
		"client_secret": c.apiSecret,
		"code":          code,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().
			Str("shop", shop).
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("Token exchange returned non-OK status")
		return "", fmt.Errorf("token exchange failed: status %d", resp.StatusCode)
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		Scope       string `json:"scope"`
	}
	if err := json.Unmarshal(body, &tokenResponse); err != nil {
		c.logger.Error().
			Str("shop", shop).
			Str("body", string(body)).
			Msg("Token exchange returned malformed body")
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	if tokenResponse.AccessToken == "" {
		c.logger.Error().
			Str("shop", shop).
			Str("body", string(body)).
			Msg("Token exchange response missing access_token")
		return "", fmt.Errorf("token response missing access_token")
	}

	return tokenResponse.AccessToken, nil
}

// GetShop fetches the merchant profile and maps it to the domain entity.
func (c *client) GetShop(ctx context.Context, shop string, accessToken string) (*domain.Shop, error) {
	api, err := goshopify.NewClient(c.app, shop, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	info, err := api.Shop.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	if info == nil {
		return nil, fmt.Errorf("empty shop payload")
	}

	return &domain.Shop{
		ShopDomain:          shop,
		Email:               info.Email,
		Name:                info.Name,
		Plan:                info.PlanDisplayName,
		PrimaryDomain:       info.Domain,
		CurrencyCode:        info.Currency,
		Timezone:            info.IanaTimezone,
		IsCheckoutSupported: info.CheckoutAPISupported,
		AccessToken:         accessToken,
	}, nil
}

// CreateProduct copies a product into the merchant's store.
func (c *client) CreateProduct(ctx context.Context, shop string, accessToken string, product *goshopify.Product) (*goshopify.Product, error) {
	api, err := goshopify.NewClient(c.app, shop, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	created, err := api.Product.Create(ctx, *product)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}
