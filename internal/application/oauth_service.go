package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"github.com/ahmedy940/dropx-core/internal/domain"
	"github.com/ahmedy940/dropx-core/internal/ports"

	"github.com/rs/zerolog"
)

// StateTTL is how long an install request may wait for its callback.
const StateTTL = 5 * time.Minute

// InstallResult carries the values the post-install redirect needs.
type InstallResult struct {
	Shop     string
	Email    string
	ShopName string
}

// OAuthService orchestrates the Shopify install flow: it hands out the
// authorization redirect, then verifies, exchanges and persists the callback.
type OAuthService struct {
	states   ports.StateStore
	verifier ports.SignatureVerifier
	shopify  ports.ShopifyClient
	shops    ports.ShopRepository
	sessions ports.SessionRepository
	activity ports.ActivityLogRepository
	logger   zerolog.Logger

	apiKey      string
	scope       string
	redirectURI string
}

// NewOAuthService creates the OAuth flow orchestrator. Credentials and URLs
// arrive as explicit parameters; the service never reads the environment.
func NewOAuthService(
	states ports.StateStore,
	verifier ports.SignatureVerifier,
	shopify ports.ShopifyClient,
	shops ports.ShopRepository,
	sessions ports.SessionRepository,
	activity ports.ActivityLogRepository,
	logger zerolog.Logger,
	apiKey string,
	scope string,
	redirectURI string,
) *OAuthService {
	return &OAuthService{
		states:      states,
		verifier:    verifier,
		shopify:     shopify,
		shops:       shops,
		sessions:    sessions,
		activity:    activity,
		logger:      logger,
		apiKey:      apiKey,
		scope:       scope,
		redirectURI: redirectURI,
	}
}

// BeginInstall validates the install request and returns the authorization
// URL to redirect the merchant to. If an install for the shop is already in
// flight, the live nonce is reused so the earlier flow stays valid.
func (s *OAuthService) BeginInstall(ctx context.Context, shop string) (string, error) {
	if shop == "" {
		return "", domain.ErrMissingShopParam
	}

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := hex.EncodeToString(stateBytes)

	live, err := s.states.Put(ctx, shop, state, StateTTL)
	if err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}
	if live != state {
		s.logger.Info().Str("shop", shop).Msg("Install already in flight, reusing stored state")
	}

	authURL := fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		s.apiKey,
		url.QueryEscape(s.scope),
		url.QueryEscape(s.redirectURI),
		live,
	)

	s.logger.Info().Str("shop", shop).Msg("Redirecting merchant to Shopify authorization")
	return authURL, nil
}

// CompleteInstall handles the OAuth callback: signature check, state
// correlation, token exchange, profile fetch and persistence. Flow failures
// come back as the sentinel errors in the domain package so the HTTP layer
// can turn them into user-facing redirects.
func (s *OAuthService) CompleteInstall(ctx context.Context, params map[string]string) (*InstallResult, error) {
	shop := params["shop"]
	code := params["code"]
	state := params["state"]
	providedHmac := params["hmac"]

	if shop == "" || code == "" || state == "" || providedHmac == "" {
		return nil, domain.ErrMissingOAuthParams
	}

	if !s.verifier.VerifyQuery(params) {
		s.logger.Warn().Str("shop", shop).Str("stage", "verifying").Msg("OAuth callback signature mismatch")
		return nil, domain.ErrSignatureMismatch
	}

	stored, err := s.states.Consume(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to consume state: %w", err)
	}
	if stored == "" || stored != state {
		s.logger.Warn().Str("shop", shop).Str("stage", "verifying").Msg("OAuth state missing or mismatched")
		return nil, domain.ErrInvalidState
	}

	accessToken, err := s.shopify.ExchangeToken(ctx, shop, code)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Str("stage", "exchanging").Msg("Token exchange failed")
		return nil, domain.ErrMissingAccessToken
	}

	profile, err := s.shopify.GetShop(ctx, shop, accessToken)
	if err != nil || profile == nil {
		s.logger.Error().Err(err).Str("shop", shop).Str("stage", "exchanging").Msg("Shop profile fetch failed")
		return nil, domain.ErrInvalidShopData
	}

	if err := s.persistInstall(ctx, profile, accessToken); err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Str("stage", "persisting").Msg("Install persistence failed")
		return nil, err
	}

	s.logger.Info().Str("shop", shop).Msg("Install completed")
	return &InstallResult{
		Shop:     shop,
		Email:    profile.Email,
		ShopName: profile.Name,
	}, nil
}

// persistInstall writes the shop, session and activity records. The three
// writes are one logical unit; all are idempotent upserts or appends, so a
// replayed callback is safe under at-least-once semantics.
func (s *OAuthService) persistInstall(ctx context.Context, profile *domain.Shop, accessToken string) error {
	if err := s.shops.Upsert(ctx, profile); err != nil {
		return fmt.Errorf("failed to save shop: %w", err)
	}

	session := &domain.Session{
		ShopDomain:  profile.ShopDomain,
		AccessToken: accessToken,
		Email:       profile.Email,
		Scope:       s.scope,
		IsOnline:    false,
		ExpiresAt:   nil,
	}
	if err := s.sessions.Upsert(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if err := s.activity.Append(ctx, profile.ShopDomain, domain.ActionInstalled); err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	return nil
}
