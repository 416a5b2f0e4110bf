package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

const (
	payMongoSignatureHeader = "Paymongo-Signature"
	eventSourceChargeable   = "source.chargeable"
)

// PayMongoConfig configures the PayMongo gateway.
type PayMongoConfig struct {
	BaseURL       string
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	FailedURL     string
	LiveMode      bool
}

// PayMongo implements hosted-checkout e-wallet payments through PayMongo
// sources. The webhook reference is the provider-issued source id.
type PayMongo struct {
	cfg    PayMongoConfig
	client *Client
	logger *zap.Logger
}

// NewPayMongo creates the PayMongo gateway.
func NewPayMongo(cfg PayMongoConfig, client *Client, logger *zap.Logger) *PayMongo {
	return &PayMongo{cfg: cfg, client: client, logger: logger}
}

// Name returns the provider identifier.
func (p *PayMongo) Name() string {
	return "paymongo"
}

type payMongoSourceRequest struct {
	Data struct {
		Attributes struct {
			Type     string `json:"type"`
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Redirect struct {
				Success string `json:"success"`
				Failed  string `json:"failed"`
			} `json:"redirect"`
		} `json:"attributes"`
	} `json:"data"`
}

type payMongoSourceResponse struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Redirect struct {
				CheckoutURL string `json:"checkout_url"`
			} `json:"redirect"`
		} `json:"attributes"`
	} `json:"data"`
}

// OpenIntent creates a GCash source and returns the checkout URL. The source
// id is the reference PayMongo will echo back in source.chargeable. The
// external reference rides along as the idempotency key so a retried
// creation call cannot open a second charge.
func (p *PayMongo) OpenIntent(ctx context.Context, amount int64, currency, externalRef string) (*Intent, error) {
	var req payMongoSourceRequest
	req.Data.Attributes.Type = "gcash"
	req.Data.Attributes.Amount = amount
	req.Data.Attributes.Currency = currency
	req.Data.Attributes.Redirect.Success = p.cfg.SuccessURL
	req.Data.Attributes.Redirect.Failed = p.cfg.FailedURL

	headers := p.authHeaders()
	headers[idempotencyKeyHeader] = externalRef

	var resp payMongoSourceResponse
	status, err := p.client.PostJSON(ctx, p.cfg.BaseURL+"/v1/sources", headers, req, &resp)
	if err != nil {
		return nil, err
	}
	if status >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: paymongo rejected source creation with %d", ErrGatewayError, status)
	}
	if resp.Data.ID == "" {
		return nil, fmt.Errorf("%w: paymongo response missing source id", ErrGatewayError)
	}

	return &Intent{
		ProviderRef: resp.Data.ID,
		CheckoutURL: resp.Data.Attributes.Redirect.CheckoutURL,
		Amount:      resp.Data.Attributes.Amount,
		Currency:    resp.Data.Attributes.Currency,
	}, nil
}

func (p *PayMongo) authHeaders() map[string]string {
	token := base64.StdEncoding.EncodeToString([]byte(p.cfg.SecretKey + ":"))
	return map[string]string{"Authorization": "Basic " + token}
}

type payMongoWebhookPayload struct {
	Data struct {
		Attributes struct {
			Type string `json:"type"`
			Data struct {
				ID         string `json:"id"`
				Attributes struct {
					Amount   int64  `json:"amount"`
					Currency string `json:"currency"`
				} `json:"attributes"`
			} `json:"data"`
		} `json:"attributes"`
	} `json:"data"`
}

// VerifyWebhook authenticates the Paymongo-Signature header and parses the
// event. The header carries a timestamp and per-mode signatures over
// "{timestamp}.{body}"; the mode in use selects which signature to check.
func (p *PayMongo) VerifyWebhook(body []byte, header http.Header) (*Event, error) {
	sig, err := ParseSignatureHeader(header.Get(payMongoSignatureHeader))
	if err != nil {
		return nil, err
	}

	provided := sig.TestSig
	if p.cfg.LiveMode {
		provided = sig.LiveSig
	}
	if !VerifySignature(p.cfg.WebhookSecret, sig.Timestamp, body, provided) {
		return nil, ErrInvalidSignature
	}

	var payload payMongoWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	eventType := payload.Data.Attributes.Type
	sourceID := payload.Data.Attributes.Data.ID
	if eventType == "" || sourceID == "" {
		return nil, fmt.Errorf("%w: missing event type or source id", ErrMalformedPayload)
	}

	return &Event{
		Type:       eventType,
		GatewayRef: sourceID,
		Amount:     payload.Data.Attributes.Data.Attributes.Amount,
		Paid:       eventType == eventSourceChargeable,
		Raw:        json.RawMessage(body),
	}, nil
}
