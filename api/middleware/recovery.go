package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagegrab/models"
)

// InternalErrorDetail is the only thing callers learn about an unhandled
// failure.
const InternalErrorDetail = "internal server error"

// Recovery turns a panic in any handler into a generic 500. The panic value
// is logged, never returned.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("panic while serving request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", RequestID(c),
			"panic", recovered,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Detail: InternalErrorDetail})
	})
}
