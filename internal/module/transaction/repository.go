package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines transaction persistence operations.
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetByOrderNo(ctx context.Context, orderNo string) (*Transaction, error)
	GetByGatewayRef(ctx context.Context, ref string) (*Transaction, error)
	SetGatewayRef(ctx context.Context, id uuid.UUID, ref string) error
	CompareAndSetPaymentStatus(ctx context.Context, id uuid.UUID, expected, next PaymentStatus, amountPaid int64) (bool, error)
	SetFulfillmentStatus(ctx context.Context, id uuid.UUID, status FulfillmentStatus) error
	ListOpen(ctx context.Context) ([]*Transaction, error)
	ListByDate(ctx context.Context, day time.Time) ([]*Transaction, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed transaction repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create persists a transaction with its items and addons in one insert.
func (r *gormRepository) Create(ctx context.Context, txn *Transaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction with its items.
func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	var txn Transaction
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Addons").
		First(&txn, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &txn, nil
}

// GetByOrderNo retrieves a transaction by its human-facing order number.
func (r *gormRepository) GetByOrderNo(ctx context.Context, orderNo string) (*Transaction, error) {
	var txn Transaction
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Addons").
		First(&txn, "order_no = ?", orderNo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction by order no: %w", err)
	}
	return &txn, nil
}

// GetByGatewayRef retrieves a transaction by the gateway reference recorded
// when its payment intent was opened. This is the webhook matching path.
func (r *gormRepository) GetByGatewayRef(ctx context.Context, ref string) (*Transaction, error) {
	var txn Transaction
	err := r.db.WithContext(ctx).First(&txn, "gateway_ref = ?", ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction by gateway ref: %w", err)
	}
	return &txn, nil
}

// SetGatewayRef assigns the gateway reference exactly once. The conditional
// on NULL makes a second checkout attempt against the same transaction fail
// instead of silently re-pointing the webhook match.
func (r *gormRepository) SetGatewayRef(ctx context.Context, id uuid.UUID, ref string) error {
	res := r.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("id = ? AND gateway_ref IS NULL", id).
		Update("gateway_ref", ref)
	if res.Error != nil {
		return fmt.Errorf("set gateway ref: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrGatewayRefAssigned
	}
	return nil
}

// CompareAndSetPaymentStatus transitions payment status only if the row still
// holds the expected status. The WHERE clause carries the expectation, so
// concurrent writers (webhook, poller, cashier) race on a single UPDATE and
// exactly one of them observes RowsAffected == 1.
func (r *gormRepository) CompareAndSetPaymentStatus(ctx context.Context, id uuid.UUID, expected, next PaymentStatus, amountPaid int64) (bool, error) {
	updates := map[string]interface{}{
		"payment_status": next,
		"amount_paid":    amountPaid,
	}
	if next == PaymentStatusPaid {
		updates["paid_at"] = time.Now()
	}

	res := r.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("id = ? AND payment_status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("compare and set payment status: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// SetFulfillmentStatus overwrites the fulfillment status.
func (r *gormRepository) SetFulfillmentStatus(ctx context.Context, id uuid.UUID, status FulfillmentStatus) error {
	res := r.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("id = ?", id).
		Update("fulfillment_status", status)
	if res.Error != nil {
		return fmt.Errorf("set fulfillment status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// ListOpen returns paid transactions that are not yet done, oldest first.
// This is the kitchen queue.
func (r *gormRepository) ListOpen(ctx context.Context) ([]*Transaction, error) {
	var txns []*Transaction
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Addons").
		Where("payment_status = ? AND fulfillment_status <> ?", PaymentStatusPaid, FulfillmentDone).
		Order("created_at ASC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("list open transactions: %w", err)
	}
	return txns, nil
}

// ListByDate returns all transactions created on the given calendar day.
func (r *gormRepository) ListByDate(ctx context.Context, day time.Time) ([]*Transaction, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var txns []*Transaction
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions by date: %w", err)
	}
	return txns, nil
}
