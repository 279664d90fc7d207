package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrdaaxel/tienda-api/internal/apperrors"
)

type RegisterRequest struct {
	Name     string  `json:"nombre" binding:"required,min=2"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6"`
	Phone    *string `json:"telefono"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterAdminRequest struct {
	Name       string  `json:"nombre" binding:"required"`
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required"`
	Phone      *string `json:"telefono"`
	SecretCode string  `json:"codigoSecreto" binding:"required"`
}

type Handler struct {
	repo            Repository
	jwt             *JWTService
	adminSecretCode string
}

func NewHandler(repo Repository, jwt *JWTService, adminSecretCode string) *Handler {
	return &Handler{repo: repo, jwt: jwt, adminSecretCode: adminSecretCode}
}

// Register creates a Cliente account.
// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": err.Error()})
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := h.repo.EmailExists(ctx, email)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": "el email ya está registrado"})
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}

	user, err := h.repo.CreateUser(ctx, strings.TrimSpace(req.Name), email, hash, req.Phone, RoleCliente)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mensaje": "usuario registrado", "user": user})
}

// Login verifies credentials and issues a token.
// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": err.Error()})
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !CheckPassword(user.PasswordHash, req.Password) {
		// Same message for unknown email and wrong password.
		c.JSON(http.StatusUnauthorized, gin.H{"mensaje": "credenciales inválidas"})
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// RegisterAdmin creates an Admin account, gated by the deployment's secret
// code and a stricter password rule.
// POST /api/auth/register/admin
func (h *Handler) RegisterAdmin(c *gin.Context) {
	var req RegisterAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": err.Error()})
		return
	}

	if h.adminSecretCode == "" || req.SecretCode != h.adminSecretCode {
		c.JSON(http.StatusUnauthorized, gin.H{"mensaje": "código de autorización inválido"})
		return
	}
	if len(strings.TrimSpace(req.Name)) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": "el nombre debe tener al menos 2 caracteres"})
		return
	}
	if !IsStrongPassword(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": "la contraseña debe contener al menos una mayúscula, una minúscula, un número y un carácter especial"})
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := h.repo.EmailExists(ctx, email)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": "el email ya está registrado"})
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}

	user, err := h.repo.CreateUser(ctx, strings.TrimSpace(req.Name), email, hash, req.Phone, RoleAdmin)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		apperrors.WriteJSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mensaje": "administrador registrado", "token": token, "user": user})
}
