package payment

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/kiosko/server/internal/shared/errors"
)

// maxWebhookBody caps inbound webhook payloads at 1 MiB.
const maxWebhookBody = 1 << 20

// WebhookHandler is the inbound edge for gateway notifications. It hands the
// raw body to the service untouched; signature schemes sign the exact bytes
// on the wire, so any re-serialization here would break verification.
type WebhookHandler struct {
	service *Service
	logger  *zap.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service *Service, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, logger: logger}
}

// RegisterRoutes registers the webhook routes. Webhooks live outside the
// versioned API group; their paths are registered with the providers and
// must stay stable.
func (h *WebhookHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/webhooks/:provider", h.Handle)
}

// Handle processes one webhook delivery. The response code is the retry
// contract: 2xx stops redelivery, 5xx asks for it, 4xx means the delivery
// itself is unacceptable.
func (h *WebhookHandler) Handle(c *gin.Context) {
	providerName := c.Param("provider")

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest("unreadable request body").ToResponse())
		return
	}

	if err := h.service.ProcessWebhook(c.Request.Context(), providerName, body, c.Request.Header); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			c.JSON(appErr.StatusCode, appErr.ToResponse())
			return
		}
		c.JSON(apperrors.GetStatusCode(err), apperrors.BadRequest("webhook rejected").ToResponse())
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
