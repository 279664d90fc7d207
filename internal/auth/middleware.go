package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "auth.userID"
	ctxRole   = "auth.role"
)

// RequireAuth validates the bearer token and stores user id and role in the
// gin context. Missing or invalid tokens abort with 401 before any handler
// runs.
func RequireAuth(jwt *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"mensaje": "token ausente"})
			return
		}

		userID, role, err := jwt.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"mensaje": "token inválido"})
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxRole, role)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated role matches.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Role(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"mensaje": "rol sin permiso"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, 0 when unauthenticated.
func UserID(c *gin.Context) int64 {
	id, _ := c.Get(ctxUserID)
	userID, _ := id.(int64)
	return userID
}

// Role returns the authenticated role, empty when unauthenticated.
func Role(c *gin.Context) string {
	r, _ := c.Get(ctxRole)
	role, _ := r.(string)
	return role
}
