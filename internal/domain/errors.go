package domain

import "errors"

// Flow errors surfaced to the installing merchant. The message text is what
// ends up in the error-page redirect, so it stays human-readable.
var (
	ErrMissingShopParam   = errors.New("Missing required shop parameter")
	ErrMissingOAuthParams = errors.New("Missing required OAuth parameters")
	ErrSignatureMismatch  = errors.New("HMAC verification failed")
	ErrInvalidState       = errors.New("Invalid or expired OAuth state parameter")
	ErrMissingAccessToken = errors.New("Missing access token")
	ErrInvalidShopData    = errors.New("Invalid shop data received")
)

// Webhook errors, mapped to machine-readable HTTP statuses by the handler.
var (
	ErrMissingWebhookFields = errors.New("missing required webhook parameters")
	ErrShopNotAuthenticated = errors.New("merchant shop not authenticated")
)
