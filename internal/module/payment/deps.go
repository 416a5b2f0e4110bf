package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/kiosko/server/internal/module/transaction"
)

// TransactionStore is the slice of the transaction module the payment
// lifecycle depends on. The conditional status update is the only write path
// for payment status, which is what keeps webhook, poller and cashier
// settlement from double-applying.
type TransactionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	GetByGatewayRef(ctx context.Context, ref string) (*transaction.Transaction, error)
	SetGatewayRef(ctx context.Context, id uuid.UUID, ref string) error
	CompareAndSetPaymentStatus(ctx context.Context, id uuid.UUID, expected, next transaction.PaymentStatus, amountPaid int64) (bool, error)
}
