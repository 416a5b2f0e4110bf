package transaction

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the payment state of a transaction.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// PaymentMethod represents how a transaction is paid.
type PaymentMethod string

const (
	MethodCash    PaymentMethod = "cash"
	MethodEWallet PaymentMethod = "e_wallet"
)

// IsValid reports whether the method is a known payment method.
func (m PaymentMethod) IsValid() bool {
	return m == MethodCash || m == MethodEWallet
}

// FulfillmentStatus is the kitchen-facing progress axis. It is independent of
// payment status: operators overwrite it freely among the three legal values.
type FulfillmentStatus string

const (
	FulfillmentWaiting    FulfillmentStatus = "waiting"
	FulfillmentInProgress FulfillmentStatus = "in_progress"
	FulfillmentDone       FulfillmentStatus = "done"
)

// IsValid reports whether the fulfillment status is a legal value.
func (f FulfillmentStatus) IsValid() bool {
	return f == FulfillmentWaiting || f == FulfillmentInProgress || f == FulfillmentDone
}

// Transaction represents one customer order and its payment state.
//
// AmountDue is fixed at creation from the menu price snapshot and never
// recomputed. GatewayRef is assigned once when a payment intent is opened;
// its unique index is what makes inbound webhook matching and duplicate
// detection work.
type Transaction struct {
	ID                uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNo           string            `json:"order_no" gorm:"uniqueIndex;not null"`
	Method            PaymentMethod     `json:"method" gorm:"not null"`
	PaymentStatus     PaymentStatus     `json:"payment_status" gorm:"not null;default:pending;index"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillment_status" gorm:"not null;default:waiting"`
	GatewayRef        *string           `json:"gateway_ref,omitempty" gorm:"uniqueIndex"`
	AmountDue         int64             `json:"amount_due" gorm:"not null"` // In centavos
	AmountPaid        int64             `json:"amount_paid" gorm:"default:0"`
	Currency          string            `json:"currency" gorm:"default:PHP"`
	PaidAt            *time.Time        `json:"paid_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`

	// Relations
	Items []TransactionItem `json:"items,omitempty" gorm:"foreignKey:TransactionID"`
}

// TableName returns the database table name.
func (Transaction) TableName() string {
	return "transactions"
}

// IsPending returns true if the transaction awaits payment.
func (t *Transaction) IsPending() bool {
	return t.PaymentStatus == PaymentStatusPending
}

// IsPaid returns true if the transaction has been settled.
func (t *Transaction) IsPaid() bool {
	return t.PaymentStatus == PaymentStatusPaid
}

// TransactionItem is a line item with its price snapshot taken at order time.
// Items are immutable after the transaction is created.
type TransactionItem struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransactionID uuid.UUID `json:"transaction_id" gorm:"type:uuid;not null;index"`
	MenuItemID    uuid.UUID `json:"menu_item_id" gorm:"type:uuid;not null"`
	Name          string    `json:"name" gorm:"not null"`
	UnitPrice     int64     `json:"unit_price"` // In centavos, snapshot at order time
	Quantity      int       `json:"quantity" gorm:"default:1"`
	Note          string    `json:"note,omitempty"`
	Amount        int64     `json:"amount"` // (unit_price * quantity) + addon amounts

	Addons []ItemAddon `json:"addons,omitempty" gorm:"foreignKey:ItemID"`
}

// TableName returns the database table name.
func (TransactionItem) TableName() string {
	return "transaction_items"
}

// ItemAddon is an optional extra attached to a line item, with its own
// price/quantity snapshot.
type ItemAddon struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ItemID     uuid.UUID `json:"item_id" gorm:"type:uuid;not null;index"`
	MenuItemID uuid.UUID `json:"menu_item_id" gorm:"type:uuid;not null"`
	Name       string    `json:"name" gorm:"not null"`
	UnitPrice  int64     `json:"unit_price"`
	Quantity   int       `json:"quantity" gorm:"default:1"`
	Amount     int64     `json:"amount"`
}

// TableName returns the database table name.
func (ItemAddon) TableName() string {
	return "transaction_item_addons"
}
