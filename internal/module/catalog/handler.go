package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/kiosko/server/internal/shared/errors"
)

// Handler exposes menu HTTP endpoints for the admin back office and kiosk.
type Handler struct {
	service *Service
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the menu routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	menu := r.Group("/menu")
	{
		menu.GET("", h.List)
		menu.POST("", h.Create)
		menu.GET("/:id", h.Get)
		menu.PUT("/:id", h.Update)
		menu.DELETE("/:id", h.Delete)
	}
}

type menuItemRequest struct {
	Name      string `json:"name" binding:"required"`
	Price     int64  `json:"price" binding:"required,min=1"`
	Category  string `json:"category"`
	ImageURL  string `json:"image_url"`
	Available *bool  `json:"available"`
}

// List returns menu items, optionally filtered by category.
func (h *Handler) List(c *gin.Context) {
	items, err := h.service.ListItems(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apperrors.Internal("list menu", err).ToResponse())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Create adds a new menu item.
func (h *Handler) Create(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest(err.Error()).ToResponse())
		return
	}

	item, err := h.service.CreateItem(c.Request.Context(), req.Name, req.Price, req.Category, req.ImageURL)
	if err != nil {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest(err.Error()).ToResponse())
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Get returns a single menu item.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest("invalid menu item id").ToResponse())
		return
	}

	item, err := h.service.GetItem(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrMenuItemNotFound) {
			c.JSON(http.StatusNotFound, apperrors.NotFound("menu item").ToResponse())
			return
		}
		c.JSON(http.StatusInternalServerError, apperrors.Internal("get menu item", err).ToResponse())
		return
	}
	c.JSON(http.StatusOK, item)
}

// Update modifies a menu item.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest("invalid menu item id").ToResponse())
		return
	}

	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest(err.Error()).ToResponse())
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	item, err := h.service.UpdateItem(c.Request.Context(), id, req.Name, req.Price, req.Category, req.ImageURL, available)
	if err != nil {
		if errors.Is(err, ErrMenuItemNotFound) {
			c.JSON(http.StatusNotFound, apperrors.NotFound("menu item").ToResponse())
			return
		}
		c.JSON(http.StatusInternalServerError, apperrors.Internal("update menu item", err).ToResponse())
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete removes a menu item.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperrors.BadRequest("invalid menu item id").ToResponse())
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrMenuItemNotFound) {
			c.JSON(http.StatusNotFound, apperrors.NotFound("menu item").ToResponse())
			return
		}
		c.JSON(http.StatusInternalServerError, apperrors.Internal("delete menu item", err).ToResponse())
		return
	}
	c.Status(http.StatusNoContent)
}
