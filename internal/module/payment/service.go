package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kiosko/server/internal/module/payment/provider"
	"github.com/kiosko/server/internal/module/transaction"
	apperrors "github.com/kiosko/server/internal/shared/errors"
	"github.com/kiosko/server/internal/utils/metrics"
	"github.com/kiosko/server/internal/utils/random"
)

// Webhook processing outcomes. Every delivery lands in exactly one bucket.
const (
	OutcomeApplied    = "applied"
	OutcomeDuplicate  = "duplicate"
	OutcomeUnknownRef = "unknown_ref"
	OutcomeIgnored    = "ignored"
	OutcomeError      = "error"
)

// Service implements the payment lifecycle: opening gateway checkouts,
// absorbing webhook deliveries, and settling cash at the counter.
type Service struct {
	repo     Repository
	store    TransactionStore
	registry *Registry
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewService creates a new payment service.
func NewService(repo Repository, store TransactionStore, registry *Registry, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		store:    store,
		registry: registry,
		metrics:  m,
		logger:   logger,
	}
}

// OpenCheckout opens a payment intent at the named provider for a pending
// e-wallet transaction. The gateway reference is persisted before the
// checkout surface is returned, so a webhook arriving immediately after the
// customer pays always finds its transaction.
func (s *Service) OpenCheckout(ctx context.Context, transactionID uuid.UUID, providerName string) (*CheckoutResponse, error) {
	txn, err := s.store.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Method != transaction.MethodEWallet {
		return nil, fmt.Errorf("%w: %s transaction cannot open a gateway checkout", ErrWrongMethod, txn.Method)
	}
	if txn.IsPaid() {
		return nil, apperrors.ErrAlreadySettled
	}
	if txn.AmountDue <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNonPositiveAmount, txn.AmountDue)
	}

	gw, err := s.registry.Get(providerName)
	if err != nil {
		return nil, err
	}

	externalRef := fmt.Sprintf("TXN-%s", random.UpperAlphaNum(10))
	intent, err := gw.OpenIntent(ctx, txn.AmountDue, txn.Currency, externalRef)
	if err != nil {
		s.logger.Error("gateway refused intent creation",
			zap.String("provider", providerName),
			zap.String("transaction_id", txn.ID.String()),
			zap.Error(err))
		return nil, apperrors.GatewayRejected("", err)
	}

	if err := s.store.SetGatewayRef(ctx, txn.ID, intent.ProviderRef); err != nil {
		if errors.Is(err, transaction.ErrGatewayRefAssigned) {
			return nil, apperrors.Conflict("checkout already opened for this transaction")
		}
		return nil, apperrors.TransientStore(err)
	}

	s.logger.Info("checkout opened",
		zap.String("provider", providerName),
		zap.String("transaction_id", txn.ID.String()),
		zap.String("gateway_ref", intent.ProviderRef),
		zap.Int64("amount_due", txn.AmountDue))

	return &CheckoutResponse{
		TransactionID: txn.ID,
		OrderNo:       txn.OrderNo,
		Provider:      providerName,
		GatewayRef:    intent.ProviderRef,
		CheckoutURL:   intent.CheckoutURL,
		QRPayload:     intent.QRPayload,
		AmountDue:     txn.AmountDue,
		Currency:      txn.Currency,
	}, nil
}

// ProcessWebhook authenticates and applies one inbound gateway delivery.
// Benign conditions (duplicates, unknown references, non-payment events)
// return nil so the edge acknowledges and the provider stops redelivering.
// Only storage failures propagate as retryable errors.
func (s *Service) ProcessWebhook(ctx context.Context, providerName string, body []byte, header http.Header) error {
	gw, err := s.registry.Get(providerName)
	if err != nil {
		return apperrors.NotFound("provider")
	}

	event, err := gw.VerifyWebhook(body, header)
	if err != nil {
		s.countWebhook(providerName, "unverified", "rejected")
		if errors.Is(err, provider.ErrInvalidSignature) {
			return apperrors.Unauthenticated("webhook signature verification failed")
		}
		return apperrors.BadRequest(err.Error())
	}

	outcome, applyErr := s.applyEvent(ctx, providerName, event)
	s.countWebhook(providerName, event.Type, outcome)
	s.auditEvent(ctx, providerName, event, outcome)

	if applyErr != nil {
		s.logger.Error("webhook processing failed",
			zap.String("provider", providerName),
			zap.String("gateway_ref", event.GatewayRef),
			zap.Error(applyErr))
		return applyErr
	}
	return nil
}

// applyEvent is the idempotent core. The conditional status update decides
// the race between concurrent deliveries: the winner appends the one payment
// record, every loser observes a duplicate.
func (s *Service) applyEvent(ctx context.Context, providerName string, event *provider.Event) (string, error) {
	if !event.Paid {
		return OutcomeIgnored, nil
	}

	txn, err := s.store.GetByGatewayRef(ctx, event.GatewayRef)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound) {
			// A reference we never issued, or an environment mismatch.
			// Acknowledge so the gateway stops retrying something we can
			// never apply.
			s.logger.Warn("webhook for unknown gateway ref",
				zap.String("provider", providerName),
				zap.String("gateway_ref", event.GatewayRef))
			return OutcomeUnknownRef, nil
		}
		return OutcomeError, apperrors.TransientStore(err)
	}

	if txn.IsPaid() {
		return OutcomeDuplicate, nil
	}

	if event.Amount != 0 && event.Amount != txn.AmountDue {
		// The local amount due stays authoritative; the mismatch is
		// surfaced for reconciliation instead of blocking settlement.
		s.logger.Warn("gateway amount differs from amount due",
			zap.String("provider", providerName),
			zap.String("gateway_ref", event.GatewayRef),
			zap.Int64("gateway_amount", event.Amount),
			zap.Int64("amount_due", txn.AmountDue))
		if s.metrics != nil {
			s.metrics.AmountMismatchTotal.WithLabelValues(providerName).Inc()
		}
	}

	won, err := s.store.CompareAndSetPaymentStatus(ctx, txn.ID,
		transaction.PaymentStatusPending, transaction.PaymentStatusPaid, txn.AmountDue)
	if err != nil {
		return OutcomeError, apperrors.TransientStore(err)
	}
	if !won {
		return OutcomeDuplicate, nil
	}

	rec := &PaymentRecord{
		ID:            uuid.New(),
		TransactionID: txn.ID,
		Method:        string(transaction.MethodEWallet),
		Path:          PathWebhook,
		Provider:      providerName,
		GatewayRef:    event.GatewayRef,
		Amount:        txn.AmountDue,
	}
	if err := s.repo.CreatePaymentRecord(ctx, rec); err != nil {
		// The settlement already happened; losing the audit row is logged,
		// not retried, because a retry would re-deliver an applied event.
		s.logger.Error("payment record write failed after settlement",
			zap.String("transaction_id", txn.ID.String()),
			zap.Error(err))
	}

	if s.metrics != nil {
		s.metrics.SettlementsTotal.WithLabelValues(string(transaction.MethodEWallet), PathWebhook).Inc()
	}
	s.logger.Info("payment settled via webhook",
		zap.String("provider", providerName),
		zap.String("transaction_id", txn.ID.String()),
		zap.String("order_no", txn.OrderNo),
		zap.String("gateway_ref", event.GatewayRef),
		zap.Int64("amount", txn.AmountDue))
	return OutcomeApplied, nil
}

// SettleCash marks a pending cash transaction paid and computes change.
// Tender below the amount due is refused without touching the transaction.
func (s *Service) SettleCash(ctx context.Context, transactionID uuid.UUID, tendered int64) (*CashSettlementResponse, error) {
	txn, err := s.store.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Method != transaction.MethodCash {
		return nil, fmt.Errorf("%w: %s transaction cannot be settled in cash", ErrWrongMethod, txn.Method)
	}
	if txn.IsPaid() {
		return nil, apperrors.ErrAlreadySettled
	}
	if tendered < txn.AmountDue {
		return nil, fmt.Errorf("%w: tendered %d, due %d", ErrInsufficientTender, tendered, txn.AmountDue)
	}

	won, err := s.store.CompareAndSetPaymentStatus(ctx, txn.ID,
		transaction.PaymentStatusPending, transaction.PaymentStatusPaid, txn.AmountDue)
	if err != nil {
		return nil, apperrors.TransientStore(err)
	}
	if !won {
		return nil, apperrors.ErrAlreadySettled
	}

	change := tendered - txn.AmountDue
	rec := &PaymentRecord{
		ID:            uuid.New(),
		TransactionID: txn.ID,
		Method:        string(transaction.MethodCash),
		Path:          PathCashier,
		Amount:        txn.AmountDue,
		Tendered:      &tendered,
		Change:        &change,
	}
	if err := s.repo.CreatePaymentRecord(ctx, rec); err != nil {
		s.logger.Error("payment record write failed after cash settlement",
			zap.String("transaction_id", txn.ID.String()),
			zap.Error(err))
	}

	if s.metrics != nil {
		s.metrics.SettlementsTotal.WithLabelValues(string(transaction.MethodCash), PathCashier).Inc()
	}
	s.logger.Info("payment settled in cash",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("order_no", txn.OrderNo),
		zap.Int64("amount", txn.AmountDue),
		zap.Int64("tendered", tendered),
		zap.Int64("change", change))

	return &CashSettlementResponse{
		TransactionID: txn.ID,
		OrderNo:       txn.OrderNo,
		AmountDue:     txn.AmountDue,
		Tendered:      tendered,
		Change:        change,
	}, nil
}

// ListRecords returns the settlement audit trail for a transaction.
func (s *Service) ListRecords(ctx context.Context, transactionID uuid.UUID) ([]*PaymentRecord, error) {
	return s.repo.ListPaymentRecords(ctx, transactionID)
}

func (s *Service) countWebhook(provider, eventType, outcome string) {
	if s.metrics != nil {
		s.metrics.WebhookEventsTotal.WithLabelValues(provider, eventType, outcome).Inc()
	}
}

// auditEvent records the delivery best-effort; an audit write failure never
// changes the webhook response.
func (s *Service) auditEvent(ctx context.Context, providerName string, event *provider.Event, outcome string) {
	err := s.repo.CreateGatewayEvent(ctx, &GatewayEvent{
		ID:         uuid.New(),
		Provider:   providerName,
		EventType:  event.Type,
		GatewayRef: event.GatewayRef,
		Outcome:    outcome,
		Payload:    event.Raw,
	})
	if err != nil {
		s.logger.Warn("gateway event audit write failed", zap.Error(err))
	}
}
