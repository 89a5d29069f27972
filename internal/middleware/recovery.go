package middleware

import (
	"net/http"
	"runtime/debug"

	"task-manager/internal/config"

	"github.com/gin-gonic/gin"
)

// RecoveryWithLog converts panics into 500 responses and logs the stack.
func RecoveryWithLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				config.Logger.Errorw("panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
