package transaction

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kiosko/server/internal/module/catalog"
	apperrors "github.com/kiosko/server/internal/shared/errors"
)

// Handler exposes transaction HTTP endpoints for the kiosk, the kiosk
// client's status poller, and the kitchen display.
type Handler struct {
	service *Service
}

// NewHandler creates a new transaction handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the transaction routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	txns := r.Group("/transactions")
	{
		txns.POST("", h.Create)
		txns.GET("", h.ListOpen)
		txns.GET("/status", h.StatusByGatewayRef)
		txns.GET("/:id", h.Get)
		txns.PUT("/:id/fulfillment", h.UpdateFulfillment)
	}
}

// Create handles a kiosk order submission.
func (h *Handler) Create(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest(err.Error()).ToResponse())
		return
	}

	txn, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidMethod), errors.Is(err, ErrEmptyCart),
			errors.Is(err, catalog.ErrMenuItemNotFound), errors.Is(err, catalog.ErrMenuItemUnavailable):
			c.JSON(http.StatusBadRequest, apperrors.BadRequest(err.Error()).ToResponse())
		default:
			c.JSON(http.StatusInternalServerError, apperrors.Internal("create transaction", err).ToResponse())
		}
		return
	}
	c.JSON(http.StatusCreated, txn)
}

// Get returns one transaction with its items.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest("invalid transaction id").ToResponse())
		return
	}

	txn, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, apperrors.NotFound("transaction").ToResponse())
			return
		}
		c.JSON(http.StatusInternalServerError, apperrors.Internal("get transaction", err).ToResponse())
		return
	}
	c.JSON(http.StatusOK, txn)
}

// StatusByGatewayRef is the read the kiosk client's reconciliation poller
// hits between webhook deliveries.
func (h *Handler) StatusByGatewayRef(c *gin.Context) {
	ref := c.Query("gateway_ref")
	if ref == "" {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest("gateway_ref is required").ToResponse())
		return
	}

	txn, err := h.service.GetByGatewayRef(c.Request.Context(), ref)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, apperrors.NotFound("transaction").ToResponse())
			return
		}
		c.JSON(http.StatusInternalServerError, apperrors.Internal("get transaction status", err).ToResponse())
		return
	}
	c.JSON(http.StatusOK, ToStatusResponse(txn))
}

// UpdateFulfillment moves a transaction along the kitchen queue.
func (h *Handler) UpdateFulfillment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest("invalid transaction id").ToResponse())
		return
	}

	var req UpdateFulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest(err.Error()).ToResponse())
		return
	}

	if err := h.service.SetFulfillment(c.Request.Context(), id, req.Status); err != nil {
		switch {
		case errors.Is(err, ErrInvalidFulfillment):
			c.JSON(http.StatusBadRequest, apperrors.BadRequest(err.Error()).ToResponse())
		case errors.Is(err, ErrTransactionNotFound):
			c.JSON(http.StatusNotFound, apperrors.NotFound("transaction").ToResponse())
		default:
			c.JSON(http.StatusInternalServerError, apperrors.Internal("update fulfillment", err).ToResponse())
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// ListOpen returns the kitchen queue.
func (h *Handler) ListOpen(c *gin.Context) {
	txns, err := h.service.ListOpen(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apperrors.Internal("list open transactions", err).ToResponse())
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns, "count": len(txns), "as_of": time.Now().UTC()})
}
