package webhook_handlers

import (
	"context"
	"testing"

	"github.com/ahmedy940/dropx-core/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memShopRepo struct {
	byDomain map[string]*domain.Shop
}

func newMemShopRepo() *memShopRepo {
	return &memShopRepo{byDomain: map[string]*domain.Shop{}}
}

func (m *memShopRepo) Upsert(_ context.Context, shop *domain.Shop) error {
	copied := *shop
	m.byDomain[shop.ShopDomain] = &copied
	return nil
}

func (m *memShopRepo) GetByDomain(_ context.Context, shopDomain string) (*domain.Shop, error) {
	return m.byDomain[shopDomain], nil
}

func (m *memShopRepo) GetByEmail(_ context.Context, email string) (*domain.Shop, error) {
	for _, shop := range m.byDomain {
		if shop.Email == email {
			return shop, nil
		}
	}
	return nil, nil
}

func (m *memShopRepo) Delete(_ context.Context, shopDomain string) error {
	delete(m.byDomain, shopDomain)
	return nil
}

type memSessionRepo struct {
	byDomain map[string]*domain.Session
}

func (m *memSessionRepo) Upsert(_ context.Context, session *domain.Session) error {
	copied := *session
	m.byDomain[session.ShopDomain] = &copied
	return nil
}

func (m *memSessionRepo) GetByDomain(_ context.Context, shopDomain string) (*domain.Session, error) {
	return m.byDomain[shopDomain], nil
}

func (m *memSessionRepo) Delete(_ context.Context, shopDomain string) error {
	delete(m.byDomain, shopDomain)
	return nil
}

type memActivityRepo struct {
	entries []domain.ActivityLog
}

func (m *memActivityRepo) Append(_ context.Context, shopDomain, action string) error {
	m.entries = append(m.entries, domain.ActivityLog{ShopDomain: shopDomain, Action: action})
	return nil
}

func (m *memActivityRepo) ListByShop(_ context.Context, shopDomain string) ([]*domain.ActivityLog, error) {
	return nil, nil
}

func (m *memActivityRepo) Purge(_ context.Context, shopDomain string) error {
	m.entries = nil
	return nil
}

type recordingShopifyClient struct {
	createdFor []string
	products   []*goshopify.Product
}

func (r *recordingShopifyClient) ExchangeToken(_ context.Context, shop, code string) (string, error) {
	return "", nil
}

func (r *recordingShopifyClient) GetShop(_ context.Context, shop, accessToken string) (*domain.Shop, error) {
	return nil, nil
}

func (r *recordingShopifyClient) CreateProduct(_ context.Context, shop, accessToken string, product *goshopify.Product) (*goshopify.Product, error) {
	r.createdFor = append(r.createdFor, shop)
	r.products = append(r.products, product)
	return product, nil
}

func TestProductHandlerCanHandle(t *testing.T) {
	h := NewProductHandler(newMemShopRepo(), &recordingShopifyClient{}, zerolog.Nop())

	assert.True(t, h.CanHandle("products/create"))
	assert.True(t, h.CanHandle("products/update"))
	assert.False(t, h.CanHandle("app/uninstalled"))
	assert.False(t, h.CanHandle("orders/create"))
}

func TestProductHandlerRelaysToShop(t *testing.T) {
	shops := newMemShopRepo()
	shops.byDomain["foo.example.com"] = &domain.Shop{
		ShopDomain:  "foo.example.com",
		Email:       "a@b.com",
		AccessToken: "tok_abc",
	}
	client := &recordingShopifyClient{}
	h := NewProductHandler(shops, client, zerolog.Nop())

	err := h.Handle(context.Background(), &domain.WebhookEvent{
		Topic:   "products/create",
		Payload: []byte(`{"email":"a@b.com","product":{"title":"Widget","body_html":"<p>x</p>"}}`),
	})
	require.NoError(t, err)

	require.Len(t, client.products, 1)
	assert.Equal(t, []string{"foo.example.com"}, client.createdFor)
	assert.Equal(t, "Widget", client.products[0].Title)
}

func TestProductHandlerMissingFields(t *testing.T) {
	h := NewProductHandler(newMemShopRepo(), &recordingShopifyClient{}, zerolog.Nop())

	for name, payload := range map[string]string{
		"no email":   `{"product":{"title":"Widget"}}`,
		"no product": `{"email":"a@b.com"}`,
		"not json":   `not-json`,
	} {
		err := h.Handle(context.Background(), &domain.WebhookEvent{
			Topic:   "products/create",
			Payload: []byte(payload),
		})
		assert.ErrorIs(t, err, domain.ErrMissingWebhookFields, name)
	}
}

func TestProductHandlerUnknownEmail(t *testing.T) {
	h := NewProductHandler(newMemShopRepo(), &recordingShopifyClient{}, zerolog.Nop())

	err := h.Handle(context.Background(), &domain.WebhookEvent{
		Topic:   "products/create",
		Payload: []byte(`{"email":"nobody@example.com","product":{"title":"Widget"}}`),
	})
	assert.ErrorIs(t, err, domain.ErrShopNotAuthenticated)
}

func TestProductHandlerRevokedToken(t *testing.T) {
	shops := newMemShopRepo()
	shops.byDomain["foo.example.com"] = &domain.Shop{
		ShopDomain: "foo.example.com",
		Email:      "a@b.com",
	}
	h := NewProductHandler(shops, &recordingShopifyClient{}, zerolog.Nop())

	err := h.Handle(context.Background(), &domain.WebhookEvent{
		Topic:   "products/create",
		Payload: []byte(`{"email":"a@b.com","product":{"title":"Widget"}}`),
	})
	assert.ErrorIs(t, err, domain.ErrShopNotAuthenticated)
}

func TestAppUninstalledHandler(t *testing.T) {
	shops := newMemShopRepo()
	shops.byDomain["foo.example.com"] = &domain.Shop{
		ShopDomain:  "foo.example.com",
		Email:       "a@b.com",
		AccessToken: "tok_abc",
	}
	sessions := &memSessionRepo{byDomain: map[string]*domain.Session{
		"foo.example.com": {ShopDomain: "foo.example.com", AccessToken: "tok_abc"},
	}}
	activity := &memActivityRepo{}
	h := NewAppUninstalledHandler(shops, sessions, activity, zerolog.Nop())

	require.True(t, h.CanHandle("app/uninstalled"))
	require.False(t, h.CanHandle("products/create"))

	err := h.Handle(context.Background(), &domain.WebhookEvent{
		Topic: "app/uninstalled",
		Shop:  "foo.example.com",
	})
	require.NoError(t, err)

	assert.Empty(t, sessions.byDomain)
	assert.Empty(t, shops.byDomain["foo.example.com"].AccessToken)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, domain.ActionUninstalled, activity.entries[0].Action)
}

func TestAppUninstalledHandlerShopFromPayload(t *testing.T) {
	shops := newMemShopRepo()
	sessions := &memSessionRepo{byDomain: map[string]*domain.Session{
		"foo.example.com": {ShopDomain: "foo.example.com"},
	}}
	h := NewAppUninstalledHandler(shops, sessions, &memActivityRepo{}, zerolog.Nop())

	err := h.Handle(context.Background(), &domain.WebhookEvent{
		Topic:   "app/uninstalled",
		Payload: []byte(`{"myshopify_domain":"foo.example.com"}`),
	})
	require.NoError(t, err)
	assert.Empty(t, sessions.byDomain)
}

func TestAppUninstalledHandlerNoShopDomain(t *testing.T) {
	h := NewAppUninstalledHandler(newMemShopRepo(), &memSessionRepo{byDomain: map[string]*domain.Session{}}, &memActivityRepo{}, zerolog.Nop())

	err := h.Handle(context.Background(), &domain.WebhookEvent{Topic: "app/uninstalled"})
	assert.ErrorIs(t, err, domain.ErrMissingWebhookFields)
}
