package payment

import (
	"time"

	"github.com/google/uuid"
)

// Settlement paths. Each names the actor that observed the payment.
const (
	PathWebhook = "webhook"
	PathPoller  = "poller"
	PathCashier = "cashier"
)

// PaymentRecord is the append-only audit trail of settlements. Exactly one
// record exists per settled transaction; the conditional status update
// guarantees only the winning writer appends it.
type PaymentRecord struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransactionID uuid.UUID `json:"transaction_id" gorm:"type:uuid;not null;index"`
	Method        string    `json:"method" gorm:"not null"`
	Path          string    `json:"path" gorm:"not null"`
	Provider      string    `json:"provider,omitempty"`
	GatewayRef    string    `json:"gateway_ref,omitempty"`
	Amount        int64     `json:"amount"`
	Tendered      *int64    `json:"tendered,omitempty"`
	Change        *int64    `json:"change,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (PaymentRecord) TableName() string {
	return "payment_records"
}

// GatewayEvent is the audit log of every inbound webhook delivery, including
// duplicates and rejects. It is written best-effort and never consulted for
// idempotency decisions.
type GatewayEvent struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Provider   string    `json:"provider" gorm:"not null;index"`
	EventType  string    `json:"event_type" gorm:"not null"`
	GatewayRef string    `json:"gateway_ref" gorm:"index"`
	Outcome    string    `json:"outcome" gorm:"not null"`
	Payload    []byte    `json:"payload,omitempty" gorm:"type:jsonb"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (GatewayEvent) TableName() string {
	return "gateway_events"
}
