package inventory

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/auth"
)

// UpdateStockRequest carries exactly one of the two admin edit modes.
type UpdateStockRequest struct {
	AbsoluteQuantity *int `json:"cantidadAbsoluta"`
	AdjustBy         *int `json:"cantidadAjuste"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetStock returns quantity and derived status for a product.
// GET /api/producto/:id/stock
func (h *Handler) GetStock(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": "id de producto inválido"})
		return
	}

	rec, err := h.service.repo.GetByProduct(c.Request.Context(), h.service.db, productID)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok", "response": rec})
}

// UpdateStock applies a manual admin edit, absolute or relative.
// PUT /api/producto/:id/stock (Admin)
func (h *Handler) UpdateStock(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": "id de producto inválido"})
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": err.Error()})
		return
	}
	if (req.AbsoluteQuantity == nil) == (req.AdjustBy == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": "indicar cantidadAbsoluta o cantidadAjuste, no ambas"})
		return
	}

	adminID := auth.UserID(c)

	var rec *StockRecord
	if req.AbsoluteQuantity != nil {
		rec, err = h.service.SetAbsolute(c.Request.Context(), adminID, productID, *req.AbsoluteQuantity)
	} else {
		rec, err = h.service.AdjustBy(c.Request.Context(), adminID, productID, *req.AdjustBy)
	}
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok", "response": rec})
}
