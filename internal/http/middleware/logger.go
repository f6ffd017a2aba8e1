package middleware

import (
	"time"

	"github.com/consensuslabs/extformatter/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the generated request ID back to the client
	RequestIDHeader = "X-Request-ID"

	// LoggerKey is the gin context key of the request-scoped logger
	LoggerKey = "logger"
)

// RequestLoggerMiddleware logs every request with a generated request ID
func RequestLoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		start := time.Now()

		contextLogger := log.WithFields(map[string]interface{}{
			"requestID": requestID,
		})
		c.Set(LoggerKey, contextLogger)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		statusCode := c.Writer.Status()
		fields := map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   statusCode,
			"latency":  time.Since(start),
			"clientIP": c.ClientIP(),
		}

		switch {
		case statusCode >= 500:
			contextLogger.LogWarn("Server error processing request", fields)
		case statusCode >= 400:
			contextLogger.LogWarn("Client error processing request", fields)
		default:
			contextLogger.LogInfo("Request completed", fields)
		}
	}
}
