package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/maxwelmichira/timberflow/internal/service"
	"github.com/maxwelmichira/timberflow/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError translates service errors to HTTP responses. Stock conflicts
// surface as 409 so clients can distinguish them from plain validation
// failures.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrBatchNotOpen),
		errors.Is(err, service.ErrBatchEmpty):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case strings.HasPrefix(err.Error(), "invalid "):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}

func currentUserID(c *gin.Context) string {
	if id, ok := c.Get("userID"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
