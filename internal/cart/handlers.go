package cart

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/auth"
)

type AddLineRequest struct {
	ProductID int64 `json:"idProducto" binding:"required"`
	Quantity  int   `json:"cantidad" binding:"required"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// AddLine adds a product to the caller's cart.
// POST /api/carrito/agregar (Cliente)
func (h *Handler) AddLine(c *gin.Context) {
	var req AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": err.Error()})
		return
	}

	if err := h.service.AddLine(c.Request.Context(), auth.UserID(c), req.ProductID, req.Quantity); err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok"})
}

// ListItems lists the caller's cart.
// GET /api/carrito/mis-items (Cliente)
func (h *Handler) ListItems(c *gin.Context) {
	items, err := h.service.ListItems(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok", "response": items})
}

// RemoveLine deletes one owned cart line.
// DELETE /api/carrito/eliminar/:idDetalle (Cliente)
func (h *Handler) RemoveLine(c *gin.Context) {
	lineID, err := strconv.ParseInt(c.Param("idDetalle"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": "id de detalle inválido"})
		return
	}

	if err := h.service.RemoveLine(c.Request.Context(), auth.UserID(c), lineID); err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok"})
}

// Clear empties the caller's cart.
// DELETE /api/carrito/vaciar (Cliente)
func (h *Handler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), auth.UserID(c)); err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok"})
}
