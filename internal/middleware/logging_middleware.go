package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger returns a gin.HandlerFunc (middleware) that logs requests using zap.
// It logs method, path, status code, latency, client IP, query parameters,
// the signed-in member when known, and any errors collected by handlers.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		panic("RequestLogger requires a non-nil zap.Logger instance")
	}
	return func(c *gin.Context) {
		start := time.Now()

		// Copy path and query before handlers run; they may rewrite the request.
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// Status and latency are only known once the chain has finished.
		c.Next()

		statusCode := c.Writer.Status()
		logFields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status_code", statusCode),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if query != "" {
			logFields = append(logFields, zap.String("query", query))
		}
		// Set by VerifyToken / Optional when a session was presented.
		if uid := c.GetString(ContextUserID); uid != "" {
			logFields = append(logFields, zap.String("user_id", uid))
		}
		if len(c.Errors) > 0 {
			// c.Errors.String() concatenates every error attached to the context.
			logFields = append(logFields, zap.String("gin_errors", c.Errors.String()))
		}

		// Level follows the status class.
		switch {
		case statusCode >= http.StatusInternalServerError: // 500 and above
			logger.Error("Incoming Request", logFields...)
		case statusCode >= http.StatusBadRequest: // 400 to 499
			logger.Warn("Incoming Request", logFields...)
		default:
			logger.Info("Incoming Request", logFields...)
		}
	}
}
