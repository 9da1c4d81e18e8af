package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader carries the caller-supplied correlation id
	CorrelationIDHeader = "X-Correlation-ID"

	// CorrelationIDKey is the gin context key the id is stored under
	CorrelationIDKey = "correlation_id"
)

// CorrelationID accepts the caller's correlation id or mints one, echoes it
// on the response, and stores it for handlers and the request logger. Every
// transaction record created by the request inherits this id.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Header(CorrelationIDHeader, correlationID)
		c.Set(CorrelationIDKey, correlationID)

		c.Next()
	}
}

// GetCorrelationID reads the request's correlation id, empty when the
// middleware did not run
func GetCorrelationID(c *gin.Context) string {
	if id, exists := c.Get(CorrelationIDKey); exists {
		if correlationID, ok := id.(string); ok {
			return correlationID
		}
	}
	return ""
}
