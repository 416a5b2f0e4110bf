// Package provider contains payment gateway integrations. Each gateway
// implements intent creation on the outbound side and webhook verification
// plus parsing on the inbound side, so the payment service never touches
// provider-specific wire formats.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// idempotencyKeyHeader carries the merchant-side reference on intent
// creation so provider-side retries deduplicate instead of double-charging.
const idempotencyKeyHeader = "X-Idempotency-Key"

// Provider errors.
var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrGatewayError     = errors.New("gateway request failed")
)

// Intent is an opened payment attempt at a gateway. ProviderRef is the value
// the gateway will echo back in its webhook; it must be persisted before the
// checkout surface is shown to the customer.
type Intent struct {
	ProviderRef string `json:"provider_ref"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	QRPayload   string `json:"qr_payload,omitempty"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
}

// Event is a verified, normalized inbound gateway notification.
type Event struct {
	Type       string          // provider-native event type
	GatewayRef string          // matches Transaction.GatewayRef
	Amount     int64           // centavos as reported by the gateway
	Paid       bool            // whether this event reports a completed payment
	Raw        json.RawMessage // original payload, persisted for audit
}

// Gateway is implemented once per payment provider.
type Gateway interface {
	// Name returns the provider identifier used in routes, config and logs.
	Name() string

	// OpenIntent creates a payment attempt for the given amount.
	// externalRef is our merchant-side reference; depending on the provider
	// either it or a provider-issued id becomes the Intent's ProviderRef.
	OpenIntent(ctx context.Context, amount int64, currency, externalRef string) (*Intent, error)

	// VerifyWebhook authenticates an inbound notification against the raw
	// request body and headers, and parses it into a normalized Event.
	// Returns ErrInvalidSignature when authentication fails and
	// ErrMalformedPayload when the body cannot be parsed.
	VerifyWebhook(body []byte, header http.Header) (*Event, error)
}
