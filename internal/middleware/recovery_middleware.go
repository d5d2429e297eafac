package middleware

import (
	"net/http"
	"runtime/debug" // stack of the panicking goroutine

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware returns a gin.HandlerFunc (middleware) that recovers from
// panics in handlers, logs them with a stack trace and answers with a generic
// 500 so one bad request cannot take the server down.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		panic("RecoveryMiddleware requires a non-nil zap.Logger instance")
	}
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// debug.Stack() is taken here, inside the deferred call, so it still
				// shows the frames that panicked.
				logger.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("stacktrace", string(debug.Stack())),
					zap.String("path", c.Request.URL.Path), // request context for the log line
					zap.String("method", c.Request.Method),
				)

				// Only write if nothing has been sent yet; a second WriteHeader is an error.
				if !c.Writer.Written() {
					c.JSON(http.StatusInternalServerError, ErrorResponse{
						Error:   "Internal Server Error",
						Details: "The server encountered an unexpected condition which prevented it from fulfilling the request.",
					})
				}

				// Stop the remaining handlers in the chain.
				c.Abort()
			}
		}()

		// A panic anywhere downstream is caught by the deferred func above.
		c.Next()
	}
}
