package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ahmedy940/dropx-core/internal/application"
	"github.com/ahmedy940/dropx-core/internal/domain"
	"github.com/ahmedy940/dropx-core/internal/infrastructure/metrics"
	"github.com/ahmedy940/dropx-core/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// installHandler initiates the OAuth flow.
func installHandler(oauthSvc *application.OAuthService, m *metrics.Metrics, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")

		authURL, err := oauthSvc.BeginInstall(r.Context(), shop)
		if err != nil {
			if errors.Is(err, domain.ErrMissingShopParam) {
				writeJSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to begin install")
			writeJSONError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		m.InstallsStarted.Inc()
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// callbackHandler completes the OAuth flow. Flow failures become browser
// redirects to the error page; only success reaches the post-install page.
func callbackHandler(
	oauthSvc *application.OAuthService,
	postInstallURL string,
	errorURL string,
	m *metrics.Metrics,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := flattenQuery(r.URL.Query())

		result, err := oauthSvc.CompleteInstall(r.Context(), params)
		if err != nil {
			m.OAuthFailures.WithLabelValues(stageFor(err)).Inc()
			redirectWithError(w, r, errorURL, messageFor(err))
			return
		}

		m.InstallsCompleted.Inc()
		location := postInstallURL +
			"?shop=" + queryEscape(result.Shop) +
			"&email=" + queryEscape(result.Email) +
			"&shopName=" + queryEscape(result.ShopName)
		http.Redirect(w, r, location, http.StatusFound)
	}
}

// webhookHandler verifies and dispatches Shopify webhooks.
func webhookHandler(
	verifier ports.SignatureVerifier,
	dispatcher *application.WebhookDispatcher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "Failed to read request body")
			return
		}
		defer r.Body.Close()

		hmacHeader := r.Header.Get("X-Shopify-Hmac-SHA256")
		if hmacHeader == "" || !verifier.VerifyBody(payload, hmacHeader) {
			m.WebhooksRejected.Inc()
			logger.Warn().Msg("Webhook signature missing or invalid")
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized request")
			return
		}

		topic := r.Header.Get("X-Shopify-Topic")
		if topic == "" {
			topic = "products/create"
		}

		event := &domain.WebhookEvent{
			Topic:    topic,
			Shop:     r.Header.Get("X-Shopify-Shop-Domain"),
			Payload:  payload,
			Verified: true,
		}
		m.WebhooksReceived.WithLabelValues(topic).Inc()

		if err := dispatcher.Dispatch(r.Context(), event); err != nil {
			switch {
			case errors.Is(err, domain.ErrMissingWebhookFields):
				writeJSONError(w, http.StatusBadRequest, "Missing required parameters")
			case errors.Is(err, domain.ErrShopNotAuthenticated):
				writeJSONError(w, http.StatusForbidden, "Merchant shop not authenticated")
			default:
				logger.Error().Err(err).Str("topic", topic).Msg("Failed to process webhook")
				writeJSONError(w, http.StatusInternalServerError, "Failed to process webhook")
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"success": "Webhook processed successfully"})
	}
}

// activityListHandler returns a shop's activity log, newest first.
func activityListHandler(activity ports.ActivityLogRepository, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopDomain := chi.URLParam(r, "shopDomain")

		logs, err := activity.ListByShop(r.Context(), shopDomain)
		if err != nil {
			logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to list activity logs")
			writeJSONError(w, http.StatusInternalServerError, "Failed to list activity logs")
			return
		}
		if logs == nil {
			logs = []*domain.ActivityLog{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(logs)
	}
}

// activityPurgeHandler administratively clears a shop's activity log.
func activityPurgeHandler(activity ports.ActivityLogRepository, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopDomain := chi.URLParam(r, "shopDomain")

		if err := activity.Purge(r.Context(), shopDomain); err != nil {
			logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to purge activity logs")
			writeJSONError(w, http.StatusInternalServerError, "Failed to purge activity logs")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"success": "Activity logs purged"})
	}
}

// messageFor maps flow errors to the human-readable message shown on the
// error page. Anything outside the known taxonomy gets a generic message so
// internals never leak into the browser.
func messageFor(err error) string {
	for _, known := range []error{
		domain.ErrMissingOAuthParams,
		domain.ErrSignatureMismatch,
		domain.ErrInvalidState,
		domain.ErrMissingAccessToken,
		domain.ErrInvalidShopData,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "Failed to complete installation"
}

// stageFor labels a flow error with the stage it failed in, for metrics.
func stageFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingOAuthParams):
		return "validation"
	case errors.Is(err, domain.ErrSignatureMismatch), errors.Is(err, domain.ErrInvalidState):
		return "verifying"
	case errors.Is(err, domain.ErrMissingAccessToken), errors.Is(err, domain.ErrInvalidShopData):
		return "exchanging"
	default:
		return "persisting"
	}
}

// redirectWithError sends the browser to the error page with a URL-encoded
// message (spaces as +).
func redirectWithError(w http.ResponseWriter, r *http.Request, errorURL string, message string) {
	query := url.Values{"message": {message}}
	http.Redirect(w, r, errorURL+"?"+query.Encode(), http.StatusFound)
}

// queryEscape matches the escaping the post-install page expects: full
// percent-encoding with %20 for spaces rather than +.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// flattenQuery keeps the first value of each query parameter, which is what
// the HMAC signature covers.
func flattenQuery(values url.Values) map[string]string {
	params := make(map[string]string, len(values))
	for key := range values {
		params[key] = values.Get(key)
	}
	return params
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
