package payment

import "context"

// Gateway creates payment intents against the external processor and
// verifies completed-payment callbacks locally. Intent creation is the
// only live call; signature verification needs no network round trip.
type Gateway interface {
	// Enabled reports whether gateway credentials are configured.
	Enabled() bool

	// CreateIntent reserves amountMinor (smallest currency unit) with the
	// gateway and returns the external order id. Fails with
	// apperr.ErrGatewayUnavailable when no credentials are configured.
	CreateIntent(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (string, error)

	// VerifySignature recomputes the callback HMAC and compares it in
	// constant time. A mismatch returns false, never an error.
	VerifySignature(externalOrderID, externalPaymentID, signature string) bool
}
