package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/ahmedy940/dropx-core/internal/application"
	"github.com/ahmedy940/dropx-core/internal/application/webhook_handlers"
	"github.com/ahmedy940/dropx-core/internal/infrastructure/config"
	"github.com/ahmedy940/dropx-core/internal/infrastructure/metrics"
	"github.com/ahmedy940/dropx-core/internal/infrastructure/repository"
	shopifyinfra "github.com/ahmedy940/dropx-core/internal/infrastructure/shopify"
	"github.com/ahmedy940/dropx-core/internal/infrastructure/statestore"
	"github.com/ahmedy940/dropx-core/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)

	// Repositories
	shopRepo := repository.NewMongoShopRepository(db)
	sessionRepo := repository.NewMongoSessionRepository(db)
	activityRepo := repository.NewMongoActivityLogRepository(db)

	// OAuth state store: Redis for multi-instance deployments, in-memory
	// otherwise. Both give first-writer-wins put and consume-once semantics.
	var states ports.StateStore
	if cfg.RedisAddr != "" {
		states = statestore.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		logger.Info().Str("addr", cfg.RedisAddr).Msg("State store backed by Redis")
	} else {
		states = statestore.NewMemoryStore()
		logger.Info().Msg("State store in memory (single instance only)")
	}

	// Shopify client and signature verifiers. OAuth callbacks are signed with
	// the API secret, webhook bodies with the webhook secret.
	shopifyClient := shopifyinfra.NewClient(cfg.APIKey, cfg.APISecret, logger)
	oauthVerifier := shopifyinfra.NewVerifier(cfg.APISecret)
	webhookVerifier := shopifyinfra.NewVerifier(cfg.WebhookSecret)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Application services
	oauthService := application.NewOAuthService(
		states,
		oauthVerifier,
		shopifyClient,
		shopRepo,
		sessionRepo,
		activityRepo,
		logger,
		cfg.APIKey,
		cfg.Scope,
		cfg.RedirectURI(),
	)

	webhookDispatcher := application.NewWebhookDispatcher(logger)
	webhookDispatcher.RegisterHandler(webhook_handlers.NewProductHandler(shopRepo, shopifyClient, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewAppUninstalledHandler(shopRepo, sessionRepo, activityRepo, logger))

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// OAuth routes
	r.Get("/auth/shopify", installHandler(oauthService, m, logger))
	r.Get("/auth/shopify/callback", callbackHandler(oauthService, cfg.PostInstallURL, cfg.ErrorURL(), m, logger))

	// Webhook endpoint
	r.Post("/webhooks/shopify", webhookHandler(webhookVerifier, webhookDispatcher, m, logger))

	// Activity log
	r.Get("/shops/{shopDomain}/activity", activityListHandler(activityRepo, logger))
	r.Delete("/shops/{shopDomain}/activity", activityPurgeHandler(activityRepo, logger))

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
