package transaction

import (
	"time"

	"github.com/google/uuid"
)

// AddonInput selects an addon menu item for a line item.
type AddonInput struct {
	MenuItemID uuid.UUID `json:"menu_item_id" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,min=1"`
}

// ItemInput is one cart line from the kiosk.
type ItemInput struct {
	MenuItemID uuid.UUID    `json:"menu_item_id" binding:"required"`
	Quantity   int          `json:"quantity" binding:"required,min=1"`
	Note       string       `json:"note"`
	Addons     []AddonInput `json:"addons"`
}

// CreateTransactionRequest is the kiosk order submission payload.
type CreateTransactionRequest struct {
	Method PaymentMethod `json:"method" binding:"required"`
	Items  []ItemInput   `json:"items" binding:"required,min=1,dive"`
}

// UpdateFulfillmentRequest moves a transaction along the kitchen queue.
type UpdateFulfillmentRequest struct {
	Status FulfillmentStatus `json:"status" binding:"required"`
}

// StatusResponse is the poller-facing payment status view.
type StatusResponse struct {
	ID            uuid.UUID     `json:"id"`
	OrderNo       string        `json:"order_no"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	AmountDue     int64         `json:"amount_due"`
	AmountPaid    int64         `json:"amount_paid"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
}

// ToStatusResponse projects a transaction onto the status view.
func ToStatusResponse(t *Transaction) StatusResponse {
	return StatusResponse{
		ID:            t.ID,
		OrderNo:       t.OrderNo,
		PaymentStatus: t.PaymentStatus,
		AmountDue:     t.AmountDue,
		AmountPaid:    t.AmountPaid,
		PaidAt:        t.PaidAt,
	}
}
