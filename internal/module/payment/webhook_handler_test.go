package payment

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/kiosko/server/internal/module/payment/provider"
	"github.com/kiosko/server/internal/module/transaction"
)

func newWebhookRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewWebhookHandler(svc, zap.NewNop()).RegisterRoutes(r)
	return r
}

func postWebhook(r *gin.Engine, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookHandler(t *testing.T) {
	t.Run("applied event acknowledges with received", func(t *testing.T) {
		store := new(MockTransactionStore)
		repo := new(MockRepository)
		txn := pendingEWalletTxn(39600, "TXN-420")
		gw := &fakeGateway{name: "xendit", event: paidEvent("TXN-420", 39600)}
		svc := newTestService(store, repo, gw)

		store.On("GetByGatewayRef", mock.Anything, "TXN-420").Return(txn, nil)
		store.On("CompareAndSetPaymentStatus", mock.Anything, txn.ID,
			transaction.PaymentStatusPending, transaction.PaymentStatusPaid, int64(39600)).Return(true, nil)
		repo.On("CreatePaymentRecord", mock.Anything, mock.Anything).Return(nil)
		repo.On("CreateGatewayEvent", mock.Anything, mock.Anything).Return(nil)

		w := postWebhook(newWebhookRouter(svc), "/webhooks/xendit", []byte(`{}`))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
	})

	t.Run("duplicate still acknowledges", func(t *testing.T) {
		store := new(MockTransactionStore)
		repo := new(MockRepository)
		txn := pendingEWalletTxn(39600, "TXN-420")
		txn.PaymentStatus = transaction.PaymentStatusPaid
		gw := &fakeGateway{name: "xendit", event: paidEvent("TXN-420", 39600)}
		svc := newTestService(store, repo, gw)

		store.On("GetByGatewayRef", mock.Anything, "TXN-420").Return(txn, nil)
		repo.On("CreateGatewayEvent", mock.Anything, mock.Anything).Return(nil)

		w := postWebhook(newWebhookRouter(svc), "/webhooks/xendit", []byte(`{}`))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid signature answers 401", func(t *testing.T) {
		svc := newTestService(new(MockTransactionStore), new(MockRepository),
			&fakeGateway{name: "xendit", webhookErr: provider.ErrInvalidSignature})

		w := postWebhook(newWebhookRouter(svc), "/webhooks/xendit", []byte(`{}`))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed payload answers 400", func(t *testing.T) {
		svc := newTestService(new(MockTransactionStore), new(MockRepository),
			&fakeGateway{name: "xendit", webhookErr: provider.ErrMalformedPayload})

		w := postWebhook(newWebhookRouter(svc), "/webhooks/xendit", []byte(`{}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store outage answers 503 so the gateway redelivers", func(t *testing.T) {
		store := new(MockTransactionStore)
		repo := new(MockRepository)
		gw := &fakeGateway{name: "xendit", event: paidEvent("TXN-420", 39600)}
		svc := newTestService(store, repo, gw)

		store.On("GetByGatewayRef", mock.Anything, "TXN-420").
			Return(nil, fmt.Errorf("connection refused"))
		repo.On("CreateGatewayEvent", mock.Anything, mock.Anything).Return(nil)

		w := postWebhook(newWebhookRouter(svc), "/webhooks/xendit", []byte(`{}`))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("unknown provider answers 404", func(t *testing.T) {
		svc := newTestService(new(MockTransactionStore), new(MockRepository), &fakeGateway{name: "xendit"})

		w := postWebhook(newWebhookRouter(svc), "/webhooks/paymaya", []byte(`{}`))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
