package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newXendit(t *testing.T, baseURL string) *Xendit {
	t.Helper()
	cfg := XenditConfig{
		BaseURL:       baseURL,
		APIKey:        "xnd_development_abc",
		CallbackToken: "cb_token_secret",
		CallbackURL:   "https://kiosk.example/webhooks/xendit",
	}
	client := NewClient("xendit", 5*time.Second, nil, zap.NewNop())
	return NewXendit(cfg, client, zap.NewNop())
}

func TestXenditOpenIntent(t *testing.T) {
	t.Run("creates dynamic qr keyed by external id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/qr_codes", r.URL.Path)
			assert.Contains(t, r.Header.Get("Authorization"), "Basic ")
			assert.Equal(t, "TXN-420", r.Header.Get("X-Idempotency-Key"))

			var req xenditQRRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "TXN-420", req.ExternalID)
			assert.Equal(t, "DYNAMIC", req.Type)
			assert.Equal(t, int64(39600), req.Amount)

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"qr_1","external_id":"TXN-420","qr_string":"00020101021226...","amount":39600,"currency":"PHP","status":"ACTIVE"}`)
		}))
		defer srv.Close()

		gw := newXendit(t, srv.URL)
		intent, err := gw.OpenIntent(context.Background(), 39600, "PHP", "TXN-420")
		require.NoError(t, err)

		// The merchant reference is the webhook matching key, not the
		// provider-issued qr id.
		assert.Equal(t, "TXN-420", intent.ProviderRef)
		assert.Equal(t, "00020101021226...", intent.QRPayload)
		assert.Equal(t, int64(39600), intent.Amount)
	})

	t.Run("rejection surfaces as gateway error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error_code":"DUPLICATE_QR_CODE"}`)
		}))
		defer srv.Close()

		gw := newXendit(t, srv.URL)
		_, err := gw.OpenIntent(context.Background(), 39600, "PHP", "TXN-420")
		assert.ErrorIs(t, err, ErrGatewayError)
	})
}

func TestXenditVerifyWebhook(t *testing.T) {
	gw := newXendit(t, "http://unused")
	body := []byte(`{"event":"qr.payment","status":"SUCCEEDED","amount":39600,"qr_code":{"id":"qr_1","external_id":"TXN-420"}}`)

	tokenHeader := func(token string) http.Header {
		h := http.Header{}
		h.Set("X-Callback-Token", token)
		return h
	}

	t.Run("valid succeeded callback", func(t *testing.T) {
		event, err := gw.VerifyWebhook(body, tokenHeader("cb_token_secret"))
		require.NoError(t, err)

		assert.Equal(t, "qr.payment", event.Type)
		assert.Equal(t, "TXN-420", event.GatewayRef)
		assert.Equal(t, int64(39600), event.Amount)
		assert.True(t, event.Paid)
	})

	t.Run("wrong token", func(t *testing.T) {
		_, err := gw.VerifyWebhook(body, tokenHeader("wrong"))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("missing token header", func(t *testing.T) {
		_, err := gw.VerifyWebhook(body, http.Header{})
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("top-level external id fallback", func(t *testing.T) {
		flat := []byte(`{"status":"COMPLETED","amount":25000,"external_id":"TXN-77"}`)
		event, err := gw.VerifyWebhook(flat, tokenHeader("cb_token_secret"))
		require.NoError(t, err)
		assert.Equal(t, "TXN-77", event.GatewayRef)
		assert.True(t, event.Paid)
	})

	t.Run("non-success status is not paid", func(t *testing.T) {
		failed := []byte(`{"status":"FAILED","amount":39600,"qr_code":{"external_id":"TXN-420"}}`)
		event, err := gw.VerifyWebhook(failed, tokenHeader("cb_token_secret"))
		require.NoError(t, err)
		assert.False(t, event.Paid)
	})

	t.Run("missing external id", func(t *testing.T) {
		_, err := gw.VerifyWebhook([]byte(`{"status":"SUCCEEDED"}`), tokenHeader("cb_token_secret"))
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})
}
