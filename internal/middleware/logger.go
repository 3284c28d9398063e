package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
)

// RequestLogger logs each request and records it in the HTTP metrics
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.ObserveRequest(c.Request.Method, route, strconv.Itoa(status), elapsed)

		event := logging.Info()
		if status >= 500 {
			event = logging.Error()
		} else if status >= 400 {
			event = logging.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", elapsed).
			Uint("user_id", c.GetUint(userIDKey)).
			Msg("request")
	}
}

// InternalErrorMessage is the body text of every 500 response
const InternalErrorMessage = "internal server error"

// Recovery turns a panic into a JSON 500 and logs it
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": InternalErrorMessage})
	})
}
