package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kiosko/server/internal/utils/metrics"
)

// response carries what the breaker lets through.
type response struct {
	status int
	body   []byte
}

// Client is the outbound HTTP client shared by gateway implementations. A
// circuit breaker per provider keeps a flapping gateway from tying up kiosk
// checkouts in slow timeouts.
type Client struct {
	provider string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[response]
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewClient creates an outbound client for one provider.
func NewClient(provider string, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *Client {
	settings := gobreaker.Settings{
		Name:    provider,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("gateway circuit state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Client{
		provider: provider,
		http:     &http.Client{Timeout: timeout},
		breaker:  gobreaker.NewCircuitBreaker[response](settings),
		metrics:  m,
		logger:   logger,
	}
}

// PostJSON sends a JSON payload and decodes a JSON response. Server errors
// and transport failures count against the breaker; 4xx responses do not,
// they are the gateway answering clearly.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, payload, out any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	start := time.Now()
	resp, err := c.breaker.Execute(func() (response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return response{}, err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		res, err := c.http.Do(req)
		if err != nil {
			return response{}, fmt.Errorf("%w: %v", ErrGatewayError, err)
		}
		defer res.Body.Close()

		data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
		if err != nil {
			return response{}, fmt.Errorf("%w: read response: %v", ErrGatewayError, err)
		}
		if res.StatusCode >= http.StatusInternalServerError {
			return response{}, fmt.Errorf("%w: %s returned %d", ErrGatewayError, c.provider, res.StatusCode)
		}
		return response{status: res.StatusCode, body: data}, nil
	})

	status := "error"
	if err == nil {
		status = fmt.Sprintf("%d", resp.status)
	}
	if c.metrics != nil {
		c.metrics.RecordGatewayRequest(c.provider, status, time.Since(start))
	}
	if err != nil {
		return 0, err
	}

	if out != nil && len(resp.body) > 0 {
		if err := json.Unmarshal(resp.body, out); err != nil {
			return resp.status, fmt.Errorf("%w: decode response: %v", ErrGatewayError, err)
		}
	}
	return resp.status, nil
}
