package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": "id inválido"})
		return 0, false
	}
	return id, true
}

// ListProducts returns a catalog page.
// GET /api/producto/lista
func (h *Handler) ListProducts(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": err.Error()})
		return
	}

	result, err := h.service.Search(c.Request.Context(), req)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok", "response": result})
}

// GetProduct returns product detail with gallery and stock.
// GET /api/producto/:id
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok", "response": detail})
}

// CreateProduct creates a product with its initial stock.
// POST /api/producto (Admin)
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": err.Error()})
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), req)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok", "id": product.ID})
}

// UpdateProduct edits the provided fields.
// PUT /api/producto/:id (Admin)
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": err.Error()})
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok", "response": product})
}

// DeleteProduct removes a product.
// DELETE /api/producto/:id (Admin)
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok"})
}

// GET /api/categoria
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok", "response": categories})
}

type categoryRequest struct {
	Description string `json:"descripcion" binding:"required"`
}

// POST /api/categoria (Admin)
func (h *Handler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": err.Error()})
		return
	}
	category, err := h.service.CreateCategory(c.Request.Context(), req.Description)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok", "response": category})
}

// PUT /api/categoria/:id (Admin)
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": err.Error()})
		return
	}
	if err := h.service.UpdateCategory(c.Request.Context(), id, req.Description); err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok"})
}

// DELETE /api/categoria/:id (Admin)
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok"})
}

// GET /api/producto/:id/imagenes
func (h *Handler) ListImages(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	images, err := h.service.ListImages(c.Request.Context(), id)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok", "response": images})
}

type imageRequest struct {
	URL       string `json:"urlImagen" binding:"required"`
	IsPrimary bool   `json:"esPrincipal"`
	Order     int    `json:"orden"`
}

// POST /api/producto/:id/imagenes (Admin)
func (h *Handler) AddImages(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var reqs []imageRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": err.Error()})
		return
	}

	images := make([]ProductImage, 0, len(reqs))
	for _, r := range reqs {
		images = append(images, ProductImage{URL: r.URL, IsPrimary: r.IsPrimary, Order: r.Order})
	}
	if err := h.service.AddImages(c.Request.Context(), id, images); err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok"})
}

// PUT /api/producto/:id/imagenes/:idImagen/principal (Admin)
func (h *Handler) SetPrimaryImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(c, "idImagen")
	if !ok {
		return
	}
	if err := h.service.SetPrimaryImage(c.Request.Context(), id, imageID); err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok"})
}

// DELETE /api/producto/:id/imagenes/:idImagen (Admin)
func (h *Handler) DeleteImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(c, "idImagen")
	if !ok {
		return
	}
	if err := h.service.DeleteImage(c.Request.Context(), id, imageID); err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "ok"})
}
