package apperrors

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// WriteJSON maps an error to its HTTP status and writes the standard
// {"mensaje": ...} envelope. Unknown errors become 500 and are logged; the
// client only sees a generic message.
func WriteJSON(c *gin.Context, err error) {
	var (
		invalidArg *InvalidArgument
		invalidOrd *InvalidOrder
		shortage   *InsufficientStock
		transition *InvalidTransition
	)

	switch {
	case errors.Is(err, ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"mensaje": err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"mensaje": err.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"mensaje": err.Error()})
	case errors.Is(err, ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"mensaje": err.Error()})
	case errors.As(err, &invalidArg):
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": invalidArg.Reason})
	case errors.As(err, &invalidOrd):
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": invalidOrd.Reason})
	case errors.As(err, &shortage):
		c.JSON(http.StatusBadRequest, gin.H{
			"mensaje":   shortage.Error(),
			"faltantes": shortage.Shortfalls,
		})
	case errors.As(err, &transition):
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": transition.Error()})
	default:
		log.Printf("unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"mensaje": "error interno"})
	}
}
