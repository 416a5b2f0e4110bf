package payment

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kiosko/server/internal/module/transaction"
	apperrors "github.com/kiosko/server/internal/shared/errors"
)

// Handler exposes checkout and settlement HTTP endpoints.
type Handler struct {
	service *Service
	poller  *Poller
}

// NewHandler creates a new payment handler.
func NewHandler(service *Service, poller *Poller) *Handler {
	return &Handler{service: service, poller: poller}
}

// RegisterRoutes registers payment routes under the transactions resource.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	txns := r.Group("/transactions")
	{
		txns.POST("/:id/checkout", h.OpenCheckout)
		txns.POST("/:id/settle-cash", h.SettleCash)
		txns.GET("/:id/payments", h.ListRecords)
	}
	r.GET("/payments/wait", h.WaitForPayment)
}

// OpenCheckout opens an e-wallet payment attempt for a pending transaction.
func (h *Handler) OpenCheckout(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest("invalid transaction id").ToResponse())
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest(err.Error()).ToResponse())
		return
	}

	resp, err := h.service.OpenCheckout(c.Request.Context(), id, req.Provider)
	if err != nil {
		h.writeError(c, err, "open checkout")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SettleCash records a cash payment taken at the counter.
func (h *Handler) SettleCash(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest("invalid transaction id").ToResponse())
		return
	}

	var req CashSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest(err.Error()).ToResponse())
		return
	}

	resp, err := h.service.SettleCash(c.Request.Context(), id, req.Tendered)
	if err != nil {
		h.writeError(c, err, "settle cash")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListRecords returns the settlement audit trail for a transaction.
func (h *Handler) ListRecords(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest("invalid transaction id").ToResponse())
		return
	}

	recs, err := h.service.ListRecords(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apperrors.Internal("list payment records", err).ToResponse())
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

// WaitForPayment blocks until the referenced transaction settles or the
// polling window closes. Kiosk clients without webhook-push connectivity
// use this instead of hammering the status endpoint themselves.
func (h *Handler) WaitForPayment(c *gin.Context) {
	ref := c.Query("gateway_ref")
	if ref == "" {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest("gateway_ref is required").ToResponse())
		return
	}

	// The wait can outlive the server's write timeout. Push the connection
	// deadline past the polling window so the observed status can still be
	// written back to the client.
	deadline := time.Now().Add(h.poller.MaxWait() + 10*time.Second)
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(deadline)

	txn, err := h.poller.WaitForPayment(c.Request.Context(), ref)
	if err != nil {
		if errors.Is(err, ErrPollTimeout) {
			c.JSON(http.StatusRequestTimeout, apperrors.ErrorResponse{
				Error: apperrors.ErrorDetail{Code: "POLL_TIMEOUT", Message: "payment not confirmed in time"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, apperrors.Internal("wait for payment", err).ToResponse())
		return
	}
	c.JSON(http.StatusOK, transaction.ToStatusResponse(txn))
}

func (h *Handler) writeError(c *gin.Context, err error, op string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode, appErr.ToResponse())
		return
	}

	switch {
	case errors.Is(err, transaction.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, apperrors.NotFound("transaction").ToResponse())
	case errors.Is(err, apperrors.ErrAlreadySettled):
		c.JSON(http.StatusConflict, apperrors.Conflict("transaction already settled").ToResponse())
	case errors.Is(err, ErrInsufficientTender), errors.Is(err, ErrWrongMethod),
		errors.Is(err, ErrUnknownProvider), errors.Is(err, ErrNonPositiveAmount):
		c.JSON(http.StatusBadRequest, apperrors.BadRequest(err.Error()).ToResponse())
	default:
		c.JSON(http.StatusInternalServerError, apperrors.Internal(op, err).ToResponse())
	}
}
