package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ikkim/maison-backend/pkg/logger"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
	loggerKey       = "logger"
)

// LoggingMiddleware tags every request with an id and a scoped logger, then
// records the outcome once the handler chain has run.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		requestID := requestIDFor(c)

		log := logger.WithContext(map[string]interface{}{
			RequestIDKey: requestID,
			"method":     c.Request.Method,
			"route":      routeOf(c),
			"client_ip":  c.ClientIP(),
		})
		c.Set(loggerKey, log)

		c.Next()

		logOutcome(c, log, time.Since(started))
	}
}

func requestIDFor(c *gin.Context) string {
	id := c.GetHeader(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(RequestIDKey, id)
	c.Header(RequestIDHeader, id)
	return id
}

// routeOf prefers the registered pattern so ids in paths don't explode log cardinality.
func routeOf(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}

func logOutcome(c *gin.Context, log *logger.Logger, elapsed time.Duration) {
	status := c.Writer.Status()
	fields := map[string]interface{}{
		"status":     status,
		"elapsed_ms": elapsed.Milliseconds(),
		"bytes":      c.Writer.Size(),
	}
	if shopper := c.GetString(ShopperIDKey); shopper != "" {
		fields["shopper_id"] = shopper
	}
	if _, ok := c.Get(AdminClaimsKey); ok {
		fields["admin"] = true
	}
	if len(c.Errors) > 0 {
		fields["errors"] = c.Errors.String()
	}

	switch {
	case status >= 500:
		log.Error("request failed", nil, fields)
	case status >= 400:
		log.Warn("request rejected", fields)
	default:
		log.Info("request served", fields)
	}
}

// GetLoggerFromContext returns the request-scoped logger, or the global one
// outside a request.
func GetLoggerFromContext(c *gin.Context) *logger.Logger {
	if l, ok := c.Value(loggerKey).(*logger.Logger); ok {
		return l
	}
	return logger.Get()
}
