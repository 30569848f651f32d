// Package ctxutil bridges gin request state into context.Context.
package ctxutil

import (
	"context"

	"storefront/domain/shared"
	"storefront/infrastructure/persistence"

	"github.com/gin-gonic/gin"
)

const (
	// requestIDKey mirrors response.RequestIDKey; response imports this package
	requestIDKey = "request_id"
	identityKey  = "identity"
)

// WithRequestID request context carrying the request id for logging
func WithRequestID(c *gin.Context) context.Context {
	requestID := c.GetString(requestIDKey)
	return persistence.ContextWithRequestID(c.Request.Context(), requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	return persistence.RequestIDFromContext(ctx)
}

// SetIdentity stores the resolved caller on the gin context
func SetIdentity(c *gin.Context, id shared.Identity) {
	c.Set(identityKey, id)
}

// Identity resolved caller; guest when authentication did not run or failed
func Identity(c *gin.Context) shared.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(shared.Identity); ok {
			return id
		}
	}
	return shared.Guest()
}
