package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kiosko/server/internal/module/catalog"
)

// CatalogReader is the slice of the catalog module the transaction service
// needs for price snapshots.
type CatalogReader interface {
	GetItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.MenuItem, error)
}

// Service implements transaction lifecycle operations.
type Service struct {
	repo     Repository
	catalog  CatalogReader
	orderNos OrderNumberSource
	sm       *StateMachine
	currency string
	logger   *zap.Logger
}

// NewService creates a new transaction service.
func NewService(repo Repository, cat CatalogReader, orderNos OrderNumberSource, currency string, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		catalog:  cat,
		orderNos: orderNos,
		sm:       NewStateMachine(),
		currency: currency,
		logger:   logger,
	}
}

// Create builds a transaction from a kiosk cart. Every price and name is
// snapshot from the catalog at this moment; later menu edits never change
// what this order owes.
func (s *Service) Create(ctx context.Context, req *CreateTransactionRequest) (*Transaction, error) {
	if !req.Method.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMethod, req.Method)
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	ids := collectMenuItemIDs(req.Items)
	menu, err := s.catalog.GetItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	txn := &Transaction{
		ID:                uuid.New(),
		Method:            req.Method,
		PaymentStatus:     PaymentStatusPending,
		FulfillmentStatus: FulfillmentWaiting,
		Currency:          s.currency,
	}

	var total int64
	for _, in := range req.Items {
		mi := menu[in.MenuItemID]
		item := TransactionItem{
			ID:            uuid.New(),
			TransactionID: txn.ID,
			MenuItemID:    mi.ID,
			Name:          mi.Name,
			UnitPrice:     mi.Price,
			Quantity:      in.Quantity,
			Note:          in.Note,
		}
		lineTotal := mi.Price * int64(in.Quantity)

		for _, ain := range in.Addons {
			am := menu[ain.MenuItemID]
			addonAmount := am.Price * int64(ain.Quantity)
			item.Addons = append(item.Addons, ItemAddon{
				ID:         uuid.New(),
				ItemID:     item.ID,
				MenuItemID: am.ID,
				Name:       am.Name,
				UnitPrice:  am.Price,
				Quantity:   ain.Quantity,
				Amount:     addonAmount,
			})
			lineTotal += addonAmount
		}

		item.Amount = lineTotal
		total += lineTotal
		txn.Items = append(txn.Items, item)
	}
	txn.AmountDue = total

	orderNo, err := s.orderNos.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate order number: %w", err)
	}
	txn.OrderNo = orderNo

	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, err
	}

	s.logger.Info("transaction created",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("order_no", txn.OrderNo),
		zap.String("method", string(txn.Method)),
		zap.Int64("amount_due", txn.AmountDue))
	return txn, nil
}

func collectMenuItemIDs(items []ItemInput) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, it := range items {
		add(it.MenuItemID)
		for _, a := range it.Addons {
			add(a.MenuItemID)
		}
	}
	return ids
}

// GetByID returns a transaction with its items.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByOrderNo returns a transaction by order number.
func (s *Service) GetByOrderNo(ctx context.Context, orderNo string) (*Transaction, error) {
	return s.repo.GetByOrderNo(ctx, orderNo)
}

// GetByGatewayRef returns a transaction by gateway reference.
func (s *Service) GetByGatewayRef(ctx context.Context, ref string) (*Transaction, error) {
	return s.repo.GetByGatewayRef(ctx, ref)
}

// SetGatewayRef records the gateway reference for a transaction. It may only
// be assigned once.
func (s *Service) SetGatewayRef(ctx context.Context, id uuid.UUID, ref string) error {
	return s.repo.SetGatewayRef(ctx, id, ref)
}

// CompareAndSetPaymentStatus applies a payment status transition if and only
// if the transaction still holds the expected status. Returns false without
// error when another writer got there first.
func (s *Service) CompareAndSetPaymentStatus(ctx context.Context, id uuid.UUID, expected, next PaymentStatus, amountPaid int64) (bool, error) {
	if err := s.sm.Validate(expected, next); err != nil {
		return false, err
	}
	return s.repo.CompareAndSetPaymentStatus(ctx, id, expected, next, amountPaid)
}

// SetFulfillment overwrites the fulfillment status with any legal value.
func (s *Service) SetFulfillment(ctx context.Context, id uuid.UUID, status FulfillmentStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidFulfillment, status)
	}
	if err := s.repo.SetFulfillmentStatus(ctx, id, status); err != nil {
		return err
	}
	s.logger.Info("fulfillment updated",
		zap.String("transaction_id", id.String()),
		zap.String("status", string(status)))
	return nil
}

// ListOpen returns the kitchen queue of paid, unfinished transactions.
func (s *Service) ListOpen(ctx context.Context) ([]*Transaction, error) {
	return s.repo.ListOpen(ctx)
}

// ListByDate returns all transactions for the given day.
func (s *Service) ListByDate(ctx context.Context, day time.Time) ([]*Transaction, error) {
	return s.repo.ListByDate(ctx, day)
}
