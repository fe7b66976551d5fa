package main

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/ahmedy940/dropx-core/internal/application"
	"github.com/ahmedy940/dropx-core/internal/application/webhook_handlers"
	"github.com/ahmedy940/dropx-core/internal/domain"
	"github.com/ahmedy940/dropx-core/internal/infrastructure/metrics"
	"github.com/ahmedy940/dropx-core/internal/infrastructure/shopify"
	"github.com/ahmedy940/dropx-core/internal/infrastructure/statestore"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPISecret     = "shpss_api_secret"
	testWebhookSecret = "shpss_webhook_secret"
	testLandingURL    = "https://app.example.com/installed"
	testErrorURL      = "https://app.example.com/auth/error"
)

type stubShopifyClient struct {
	exchangeCalls int
	createCalls   int
	token         string
	profile       *domain.Shop
}

func (s *stubShopifyClient) ExchangeToken(_ context.Context, shop, code string) (string, error) {
	s.exchangeCalls++
	return s.token, nil
}

func (s *stubShopifyClient) GetShop(_ context.Context, shop, accessToken string) (*domain.Shop, error) {
	return s.profile, nil
}

func (s *stubShopifyClient) CreateProduct(_ context.Context, shop, accessToken string, product *goshopify.Product) (*goshopify.Product, error) {
	s.createCalls++
	return product, nil
}

type stubShopRepo struct {
	byDomain map[string]*domain.Shop
}

func (s *stubShopRepo) Upsert(_ context.Context, shop *domain.Shop) error {
	copied := *shop
	s.byDomain[shop.ShopDomain] = &copied
	return nil
}

func (s *stubShopRepo) GetByDomain(_ context.Context, shopDomain string) (*domain.Shop, error) {
	return s.byDomain[shopDomain], nil
}

func (s *stubShopRepo) GetByEmail(_ context.Context, email string) (*domain.Shop, error) {
	for _, shop := range s.byDomain {
		if shop.Email == email {
			return shop, nil
		}
	}
	return nil, nil
}

func (s *stubShopRepo) Delete(_ context.Context, shopDomain string) error {
	delete(s.byDomain, shopDomain)
	return nil
}

type stubSessionRepo struct {
	byDomain map[string]*domain.Session
}

func (s *stubSessionRepo) Upsert(_ context.Context, session *domain.Session) error {
	copied := *session
	s.byDomain[session.ShopDomain] = &copied
	return nil
}

func (s *stubSessionRepo) GetByDomain(_ context.Context, shopDomain string) (*domain.Session, error) {
	return s.byDomain[shopDomain], nil
}

func (s *stubSessionRepo) Delete(_ context.Context, shopDomain string) error {
	delete(s.byDomain, shopDomain)
	return nil
}

type stubActivityRepo struct {
	entries []domain.ActivityLog
}

func (s *stubActivityRepo) Append(_ context.Context, shopDomain, action string) error {
	s.entries = append(s.entries, domain.ActivityLog{ShopDomain: shopDomain, Action: action})
	return nil
}

func (s *stubActivityRepo) ListByShop(_ context.Context, shopDomain string) ([]*domain.ActivityLog, error) {
	var out []*domain.ActivityLog
	for i := range s.entries {
		if s.entries[i].ShopDomain == shopDomain {
			out = append(out, &s.entries[i])
		}
	}
	return out, nil
}

func (s *stubActivityRepo) Purge(_ context.Context, shopDomain string) error {
	s.entries = nil
	return nil
}

type apiFixture struct {
	states   *statestore.MemoryStore
	client   *stubShopifyClient
	shops    *stubShopRepo
	sessions *stubSessionRepo
	activity *stubActivityRepo
	metrics  *metrics.Metrics

	install  http.HandlerFunc
	callback http.HandlerFunc
	webhook  http.HandlerFunc
}

func newAPIFixture() *apiFixture {
	logger := zerolog.Nop()
	states := statestore.NewMemoryStore()
	client := &stubShopifyClient{
		token: "tok_abc",
		profile: &domain.Shop{
			ShopDomain:  "foo.example.com",
			Email:       "a@b.com",
			Name:        "Foo Shop",
			AccessToken: "tok_abc",
		},
	}
	shops := &stubShopRepo{byDomain: map[string]*domain.Shop{}}
	sessions := &stubSessionRepo{byDomain: map[string]*domain.Session{}}
	activity := &stubActivityRepo{}
	m := metrics.New(prometheus.NewRegistry())

	oauthSvc := application.NewOAuthService(
		states,
		shopify.NewVerifier(testAPISecret),
		client,
		shops,
		sessions,
		activity,
		logger,
		"api_key",
		"read_shop,write_products",
		"https://app.example.com/auth/shopify/callback",
	)

	dispatcher := application.NewWebhookDispatcher(logger)
	dispatcher.RegisterHandler(webhook_handlers.NewProductHandler(shops, client, logger))

	return &apiFixture{
		states:   states,
		client:   client,
		shops:    shops,
		sessions: sessions,
		activity: activity,
		metrics:  m,
		install:  installHandler(oauthSvc, m, logger),
		callback: callbackHandler(oauthSvc, testLandingURL, testErrorURL, m, logger),
		webhook:  webhookHandler(shopify.NewVerifier(testWebhookSecret), dispatcher, m, logger),
	}
}

// signedCallbackQuery builds a callback query string signed with the API
// secret over the sorted non-hmac parameters.
func signedCallbackQuery(shop, code, state string) string {
	params := map[string]string{
		"shop":  shop,
		"code":  code,
		"state": state,
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	mac := hmac.New(sha256.New, []byte(testAPISecret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	digest := hex.EncodeToString(mac.Sum(nil))
	return "shop=" + shop + "&code=" + code + "&state=" + state + "&hmac=" + digest
}

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestInstallRedirect(t *testing.T) {
	f := newAPIFixture()

	req := httptest.NewRequest(http.MethodGet, "/auth/shopify?shop=foo.example.com", nil)
	rec := httptest.NewRecorder()
	f.install(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "https://foo.example.com/admin/oauth/authorize?"))
	assert.Regexp(t, regexp.MustCompile(`state=[0-9a-f]{32}`), location)
}

func TestInstallMissingShop(t *testing.T) {
	f := newAPIFixture()

	req := httptest.NewRequest(http.MethodGet, "/auth/shopify", nil)
	rec := httptest.NewRecorder()
	f.install(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing required shop parameter")
}

func TestCallbackSuccessRedirect(t *testing.T) {
	ctx := context.Background()
	f := newAPIFixture()

	_, err := f.states.Put(ctx, "foo.example.com", "a1b2c3d4", statestore.DefaultTTL)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/shopify/callback?"+signedCallbackQuery("foo.example.com", "code123", "a1b2c3d4"), nil)
	rec := httptest.NewRecorder()
	f.callback(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t,
		testLandingURL+"?shop=foo.example.com&email=a%40b.com&shopName=Foo%20Shop",
		rec.Header().Get("Location"))

	session := f.sessions.byDomain["foo.example.com"]
	require.NotNil(t, session)
	assert.Equal(t, "tok_abc", session.AccessToken)
}

func TestCallbackStateMismatchRedirect(t *testing.T) {
	ctx := context.Background()
	f := newAPIFixture()

	_, err := f.states.Put(ctx, "foo.example.com", "expected", statestore.DefaultTTL)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/shopify/callback?"+signedCallbackQuery("foo.example.com", "code123", "different"), nil)
	rec := httptest.NewRecorder()
	f.callback(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, testErrorURL+"?"))
	assert.Contains(t, location, "Invalid")
	assert.Zero(t, f.client.exchangeCalls)
}

func TestCallbackBadSignatureRedirect(t *testing.T) {
	f := newAPIFixture()

	query := signedCallbackQuery("foo.example.com", "code123", "a1b2c3d4")
	query = strings.Replace(query, "code123", "code999", 1)

	req := httptest.NewRequest(http.MethodGet, "/auth/shopify/callback?"+query, nil)
	rec := httptest.NewRecorder()
	f.callback(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "HMAC+verification+failed")
	assert.Zero(t, f.client.exchangeCalls)
}

func TestWebhookSuccess(t *testing.T) {
	f := newAPIFixture()
	f.shops.byDomain["foo.example.com"] = &domain.Shop{
		ShopDomain:  "foo.example.com",
		Email:       "a@b.com",
		AccessToken: "tok_abc",
	}

	body := []byte(`{"email":"a@b.com","product":{"title":"Widget"}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify", bytes.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-SHA256", signBody(body, testWebhookSecret))
	rec := httptest.NewRecorder()
	f.webhook(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Webhook processed successfully")
	assert.Equal(t, 1, f.client.createCalls)
}

func TestWebhookTamperedBody(t *testing.T) {
	f := newAPIFixture()
	f.shops.byDomain["foo.example.com"] = &domain.Shop{
		ShopDomain:  "foo.example.com",
		Email:       "a@b.com",
		AccessToken: "tok_abc",
	}

	body := []byte(`{"email":"a@b.com","product":{"title":"Widget"}}`)
	signature := signBody(body, testWebhookSecret)
	tampered := bytes.Replace(body, []byte("Widget"), []byte("Gadget"), 1)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify", bytes.NewReader(tampered))
	req.Header.Set("X-Shopify-Hmac-SHA256", signature)
	rec := httptest.NewRecorder()
	f.webhook(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, f.client.createCalls, "tampered webhooks must never reach the relay")
}

func TestWebhookMissingSignature(t *testing.T) {
	f := newAPIFixture()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	f.webhook(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookMissingFields(t *testing.T) {
	f := newAPIFixture()

	body := []byte(`{"email":"a@b.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify", bytes.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-SHA256", signBody(body, testWebhookSecret))
	rec := httptest.NewRecorder()
	f.webhook(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing required parameters")
}

func TestWebhookUnauthenticatedShop(t *testing.T) {
	f := newAPIFixture()

	body := []byte(`{"email":"nobody@example.com","product":{"title":"Widget"}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify", bytes.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-SHA256", signBody(body, testWebhookSecret))
	rec := httptest.NewRecorder()
	f.webhook(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not authenticated")
}

func TestActivityEndpoints(t *testing.T) {
	f := newAPIFixture()
	logger := zerolog.Nop()
	require.NoError(t, f.activity.Append(context.Background(), "foo.example.com", domain.ActionInstalled))

	router := newTestRouter(f, logger)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shops/foo.example.com/activity", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ActionInstalled)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/shops/foo.example.com/activity", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shops/foo.example.com/activity", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func newTestRouter(f *apiFixture, logger zerolog.Logger) http.Handler {
	router := chi.NewRouter()
	router.Get("/shops/{shopDomain}/activity", activityListHandler(f.activity, logger))
	router.Delete("/shops/{shopDomain}/activity", activityPurgeHandler(f.activity, logger))
	return router
}
