package payment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kiosko/server/internal/module/transaction"
)

// The wait endpoint blocks longer than the server's write timeout; the
// handler must extend the connection deadline or the settled status can
// never be written back.
func TestWaitForPaymentOutlivesWriteTimeout(t *testing.T) {
	pending := pendingEWalletTxn(39600, "TXN-420")
	paid := pendingEWalletTxn(39600, "TXN-420")
	paid.PaymentStatus = transaction.PaymentStatusPaid

	store := &scriptedStore{results: []scriptedRead{
		{txn: pending},
		{txn: pending},
		{txn: pending},
		{txn: pending},
		{txn: paid},
	}}
	poller := NewPoller(store, 20*time.Millisecond, time.Second, nil, zap.NewNop())
	svc := newTestService(new(MockTransactionStore), new(MockRepository), &fakeGateway{name: "paymongo"})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc, poller).RegisterRoutes(r.Group("/api/v1"))

	srv := httptest.NewUnstartedServer(r)
	// Settlement lands around the fourth tick, well past this deadline.
	srv.Config.WriteTimeout = 40 * time.Millisecond
	srv.Start()
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/api/v1/payments/wait?gateway_ref=TXN-420")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status transaction.StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, transaction.PaymentStatusPaid, status.PaymentStatus)
	assert.Equal(t, "ORD-20260830-0042", status.OrderNo)
}

func TestWaitForPaymentRequiresGatewayRef(t *testing.T) {
	poller := NewPoller(&scriptedStore{results: []scriptedRead{{txn: pendingEWalletTxn(100, "TXN-1")}}}, time.Second, time.Second, nil, zap.NewNop())
	svc := newTestService(new(MockTransactionStore), new(MockRepository), &fakeGateway{name: "paymongo"})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc, poller).RegisterRoutes(r.Group("/api/v1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments/wait", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
