package payment

import (
	"github.com/google/uuid"
)

// CheckoutRequest opens an e-wallet payment attempt against a provider.
type CheckoutRequest struct {
	Provider string `json:"provider" binding:"required"`
}

// CheckoutResponse is the payment surface handed to the kiosk.
type CheckoutResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	OrderNo       string    `json:"order_no"`
	Provider      string    `json:"provider"`
	GatewayRef    string    `json:"gateway_ref"`
	CheckoutURL   string    `json:"checkout_url,omitempty"`
	QRPayload     string    `json:"qr_payload,omitempty"`
	AmountDue     int64     `json:"amount_due"`
	Currency      string    `json:"currency"`
}

// CashSettlementRequest records a cash payment taken at the counter.
type CashSettlementRequest struct {
	Tendered int64 `json:"tendered" binding:"required,min=1"`
}

// CashSettlementResponse reports the settled amounts and computed change.
type CashSettlementResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	OrderNo       string    `json:"order_no"`
	AmountDue     int64     `json:"amount_due"`
	Tendered      int64     `json:"tendered"`
	Change        int64     `json:"change"`
}
