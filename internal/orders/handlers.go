package orders

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
	"github.com/mrdaaxel/tienda-api/internal/auth"
)

type Handler struct {
	service *Service
	tracer  trace.Tracer
}

func NewHandler(service *Service, tracer trace.Tracer) *Handler {
	return &Handler{service: service, tracer: tracer}
}

// PlaceOrder converts the caller's cart into an order.
// POST /api/pedido/crear (Cliente)
func (h *Handler) PlaceOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "place_order")
	defer span.End()

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": err.Error()})
		return
	}

	userID := auth.UserID(c)
	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("address_id", req.AddressID),
	)

	order, lines, err := h.service.PlaceOrder(ctx, userID, req, c.GetHeader("Idempotency-Key"))
	if err != nil {
		span.RecordError(err)
		apperrors.WriteJSON(c, err)
		return
	}

	span.SetAttributes(attribute.Int64("order_id", order.ID))
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok", "response": gin.H{
		"idPedido": order.ID,
		"total":    order.Total,
		"detalles": lines,
	}})
}

// GetOrder returns one order; clients only see their own.
// GET /api/pedido/:id
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": "id de pedido inválido"})
		return
	}

	order, lines, err := h.service.GetOrder(c.Request.Context(), auth.UserID(c), auth.Role(c), orderID)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok", "response": gin.H{
		"pedido":   order,
		"detalles": lines,
	}})
}

// ListMyOrders lists the caller's orders, newest first.
// GET /api/pedido/mis-pedidos (Cliente)
func (h *Handler) ListMyOrders(c *gin.Context) {
	views, err := h.service.ListMyOrders(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok", "response": views})
}

// ListAllOrders is the admin listing with buyer summaries.
// GET /api/pedido/todos (Admin)
func (h *Handler) ListAllOrders(c *gin.Context) {
	views, err := h.service.ListAllOrders(c.Request.Context())
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok", "response": views})
}

// CancelOrder cancels one of the caller's orders and restocks its lines.
// POST /api/pedido/:id/cancelar (Cliente)
func (h *Handler) CancelOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "cancel_order")
	defer span.End()

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": "id de pedido inválido"})
		return
	}
	span.SetAttributes(attribute.Int64("order_id", orderID))

	if err := h.service.CancelOrder(ctx, auth.UserID(c), orderID); err != nil {
		span.RecordError(err)
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok"})
}

// SetStatus is the admin transition on either status axis.
// PUT /api/pedido/:id/estado (Admin)
func (h *Handler) SetStatus(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_set_order_status")
	defer span.End()

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": "id de pedido inválido"})
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": err.Error()})
		return
	}
	span.SetAttributes(attribute.Int64("order_id", orderID))

	order, err := h.service.AdminSetStatus(ctx, auth.UserID(c), orderID, req)
	if err != nil {
		span.RecordError(err)
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok", "response": order})
}
