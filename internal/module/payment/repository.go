package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines payment audit persistence.
type Repository interface {
	CreatePaymentRecord(ctx context.Context, rec *PaymentRecord) error
	ListPaymentRecords(ctx context.Context, transactionID uuid.UUID) ([]*PaymentRecord, error)
	CreateGatewayEvent(ctx context.Context, event *GatewayEvent) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed payment repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreatePaymentRecord(ctx context.Context, rec *PaymentRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create payment record: %w", err)
	}
	return nil
}

func (r *gormRepository) ListPaymentRecords(ctx context.Context, transactionID uuid.UUID) ([]*PaymentRecord, error) {
	var recs []*PaymentRecord
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list payment records: %w", err)
	}
	return recs, nil
}

func (r *gormRepository) CreateGatewayEvent(ctx context.Context, event *GatewayEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create gateway event: %w", err)
	}
	return nil
}
