package config

import (
	"fmt"
	"os"
	"strings"
)

// DefaultScope is the access scope requested during install.
const DefaultScope = "read_analytics,write_checkouts,write_companies,write_customers,write_discounts,write_draft_orders,write_fulfillments,write_inventory,write_locales,write_locations,write_marketing_events,write_metaobjects,write_orders,write_payment_terms,write_price_rules,write_products,write_reports,write_resource_feedbacks,write_script_tags,write_shipping,write_themes,read_shop"

// Config carries every secret and URL the flow needs, resolved once at
// startup. Core components receive it explicitly and never reach into the
// environment themselves.
type Config struct {
	APIKey         string
	APISecret      string
	WebhookSecret  string
	AppURL         string
	PostInstallURL string
	Scope          string

	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	Port          string
}

// Load reads configuration from the environment and validates the keys the
// OAuth flow cannot run without.
func Load() (*Config, error) {
	cfg := &Config{
		APIKey:         os.Getenv("SHOPIFY_API_KEY"),
		APISecret:      os.Getenv("SHOPIFY_API_SECRET"),
		WebhookSecret:  os.Getenv("SHOPIFY_WEBHOOK_SECRET"),
		AppURL:         strings.TrimSuffix(os.Getenv("APP_URL"), "/"),
		PostInstallURL: os.Getenv("POST_INSTALL_REDIRECT"),
		Scope:          os.Getenv("SHOPIFY_APP_SCOPE"),
		MongoURI:       os.Getenv("MONGODB_URI"),
		MongoDatabase:  os.Getenv("MONGODB_DATABASE"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		Port:           os.Getenv("PORT"),
	}

	if cfg.Scope == "" {
		cfg.Scope = DefaultScope
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = "mongodb://localhost:27017"
	}
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = "dropx"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	var missing []string
	for key, value := range map[string]string{
		"SHOPIFY_API_KEY":        cfg.APIKey,
		"SHOPIFY_API_SECRET":     cfg.APISecret,
		"SHOPIFY_WEBHOOK_SECRET": cfg.WebhookSecret,
		"APP_URL":                cfg.AppURL,
		"POST_INSTALL_REDIRECT":  cfg.PostInstallURL,
	} {
		if value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// RedirectURI is the callback URL registered with Shopify.
func (c *Config) RedirectURI() string {
	return c.AppURL + "/auth/shopify/callback"
}

// ErrorURL is the browser-facing error page base.
func (c *Config) ErrorURL() string {
	return c.AppURL + "/auth/error"
}
