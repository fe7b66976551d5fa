package ports

// SignatureVerifier checks HMAC signatures on inbound Shopify requests.
// Implementations are pure: a failed check is a false return, never an error.
type SignatureVerifier interface {
	// VerifyQuery checks the hmac parameter of an OAuth request against the
	// remaining query parameters.
	VerifyQuery(params map[string]string) bool

	// VerifyBody checks a base64 digest against the raw webhook body.
	VerifyBody(body []byte, providedB64 string) bool
}
