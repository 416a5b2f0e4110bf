package payment

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kiosko/server/internal/module/transaction"
	"github.com/kiosko/server/internal/utils/metrics"
)

// Poller is the reconciliation loop the kiosk relies on when a webhook is
// delayed or lost. It reads payment status on a fixed interval until the
// transaction settles, the wait budget runs out, or the context is canceled.
// Transient read failures are tolerated; the next tick simply retries.
type Poller struct {
	store    TransactionStore
	interval time.Duration
	maxWait  time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewPoller creates a reconciliation poller.
func NewPoller(store TransactionStore, interval, maxWait time.Duration, m *metrics.Metrics, logger *zap.Logger) *Poller {
	return &Poller{
		store:    store,
		interval: interval,
		maxWait:  maxWait,
		metrics:  m,
		logger:   logger,
	}
}

// MaxWait returns the overall wait budget for one poll.
func (p *Poller) MaxWait() time.Duration {
	return p.maxWait
}

// WaitForPayment blocks until the transaction behind the gateway reference
// is paid. It checks immediately, then on every interval tick. Returns
// ErrPollTimeout when the wait budget elapses and ctx.Err() on cancellation.
func (p *Poller) WaitForPayment(ctx context.Context, gatewayRef string) (*transaction.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, p.maxWait)
	defer cancel()

	if txn, done := p.check(ctx, gatewayRef); done {
		return txn, nil
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				p.observe("timeout")
				return nil, ErrPollTimeout
			}
			return nil, ctx.Err()
		case <-ticker.C:
			if txn, done := p.check(ctx, gatewayRef); done {
				return txn, nil
			}
		}
	}
}

// check reads current status once. Any read failure is treated as transient:
// the webhook path may still settle the transaction while the store recovers.
func (p *Poller) check(ctx context.Context, gatewayRef string) (*transaction.Transaction, bool) {
	txn, err := p.store.GetByGatewayRef(ctx, gatewayRef)
	if err != nil {
		p.observe("error")
		p.logger.Warn("poller read failed",
			zap.String("gateway_ref", gatewayRef),
			zap.Error(err))
		return nil, false
	}
	if txn.IsPaid() {
		p.observe("paid")
		return txn, true
	}
	p.observe("pending")
	return nil, false
}

func (p *Poller) observe(result string) {
	if p.metrics != nil {
		p.metrics.PollerObservationsTotal.WithLabelValues(result).Inc()
	}
}
