package middleware

import (
	stdErrors "errors"
	"strings"

	"storefront/api/ctxutil"
	"storefront/api/response"
	"storefront/domain/shared"
	"storefront/infrastructure/auth"
	"storefront/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// TokenCookie session cookie set at user login
	TokenCookie = "userToken"
	// AdminTokenCookie session cookie set at admin login
	AdminTokenCookie = "adminToken"
)

// SessionToken cookies first, then Authorization: Bearer
func SessionToken(c *gin.Context) string {
	for _, name := range []string{TokenCookie, AdminTokenCookie} {
		if token, err := c.Cookie(name); err == nil && token != "" {
			return token
		}
	}
	header := c.GetHeader("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// Authenticate resolves the caller when a token is present. Requests
// without a token continue as guests; a bad token is rejected.
func Authenticate(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			ctxutil.SetIdentity(c, shared.Guest())
			c.Next()
			return
		}

		identity, err := authenticator.Authenticate(ctxutil.WithRequestID(c), token)
		if err != nil {
			if !stdErrors.Is(err, shared.ErrUnauthorized) && !stdErrors.Is(err, shared.ErrForbidden) {
				logger.FromContext(ctxutil.WithRequestID(c)).Error("session lookup failed", zap.Error(err))
			}
			response.HandleAppError(c, err)
			return
		}

		ctxutil.SetIdentity(c, identity)
		c.Next()
	}
}

// RequireUser rejects guests
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ctxutil.Identity(c).RequireUser(); err != nil {
			response.HandleAppError(c, shared.NewUnauthorizedError("Access denied. No token provided. Please log in."))
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects guests with 401 and non-admins with 403
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ctxutil.Identity(c).RequireAdmin(); err != nil {
			response.HandleAppError(c, err)
			return
		}
		c.Next()
	}
}

// Guards per-route handler chains placed before the endpoint
type Guards struct {
	User  []gin.HandlerFunc
	Admin []gin.HandlerFunc
}

// NewGuards admin routes also pass through the extra handlers, e.g. a stricter rate limit
func NewGuards(adminExtra ...gin.HandlerFunc) Guards {
	return Guards{
		User:  []gin.HandlerFunc{RequireUser()},
		Admin: append([]gin.HandlerFunc{RequireAdmin()}, adminExtra...),
	}
}

// UserOnly chain for a signed-in endpoint
func (g Guards) UserOnly(h gin.HandlerFunc) []gin.HandlerFunc {
	return chain(g.User, h)
}

// AdminOnly chain for an admin endpoint
func (g Guards) AdminOnly(h gin.HandlerFunc) []gin.HandlerFunc {
	return chain(g.Admin, h)
}

func chain(pre []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(pre)+1)
	out = append(out, pre...)
	return append(out, h)
}
