package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/Sarbjeetmaan/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const identityKey = "identity"

type IdentityResolver interface {
	Resolve(rawToken string) (domain.Identity, error)
}

// RequireAuth resolves the bearer token and stores the caller identity in the gin context.
func RequireAuth(resolver IdentityResolver, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Middleware: Authorization header is missing")
			response.Abort(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warnf("Middleware: Invalid Authorization header format for path %s", c.Request.URL.Path)
			response.Abort(c, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		identity, err := resolver.Resolve(parts[1])
		if err != nil {
			log.Warnf("Middleware: Token rejected for path %s: %v", c.Request.URL.Path, err)
			if errors.Is(err, domain.ErrInvalidCredential) {
				response.Abort(c, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			response.Abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		log.Debugf("Middleware: Authenticated %s (role %s)", identity.Email, identity.Role)
		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(role domain.Role, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CallerFromContext(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "User identification missing")
			return
		}
		if identity.Role != role {
			log.Warnf("Middleware: %s with role %s denied access to %s", identity.Email, identity.Role, c.Request.URL.Path)
			response.Abort(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

func CallerFromContext(c *gin.Context) (domain.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return domain.Identity{}, false
	}
	identity, ok := value.(domain.Identity)
	return identity, ok && identity.Email != ""
}
