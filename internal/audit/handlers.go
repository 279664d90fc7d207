package audit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
)

type Handler struct {
	recorder *Recorder
}

func NewHandler(recorder *Recorder) *Handler {
	return &Handler{recorder: recorder}
}

// List returns the audit trail for one table, newest first.
// GET /api/auditoria?tabla=pedidos&limite=100 (Admin)
func (h *Handler) List(c *gin.Context) {
	entity := c.Query("tabla")
	if entity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": "indicar el parámetro tabla"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limite", "100"))

	records, err := h.recorder.ListByEntity(c.Request.Context(), entity, limit)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok", "response": records})
}
