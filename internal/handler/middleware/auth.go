package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"booking-reconciler/internal/domain/actor"
	"booking-reconciler/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

type TokenValidator interface {
	ValidateToken(token string) (actor.Actor, error)
}

type AuthMiddleware struct {
	tokenValidator TokenValidator
}

const ctxActorKey = "actor"

var roleHierarchy = map[actor.Role]int{
	actor.RoleGuest:    1,
	actor.RoleSupport:  2,
	actor.RoleOperator: 3,
}

func NewAuthMiddleware(tokenValidator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httperr.Abort(c, http.StatusUnauthorized, httperr.CodeUnauthorized, "Access token required")
			return
		}

		a, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			httperr.Abort(c, http.StatusUnauthorized, httperr.CodeUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ctxActorKey, a)
		c.Next()
	}
}

func (m *AuthMiddleware) RequireRoleAtLeast(minRole actor.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := GetActor(c)
		if !ok {
			// Unexpected error: should be used after RequireAuth()
			httperr.Abort(c, http.StatusInternalServerError, httperr.CodeInternal, "Internal server error")
			return
		}

		if !hasMinimumRole(a.Role, minRole) {
			httperr.Abort(c, http.StatusForbidden, httperr.CodeForbidden, "Insufficient permissions")
			return
		}

		c.Next()
	}
}

func hasMinimumRole(role, minRole actor.Role) bool {
	level, ok := roleHierarchy[role]
	minLevel, minOK := roleHierarchy[minRole]
	return ok && minOK && level >= minLevel
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

// SetActor is used by tests that bypass token validation.
func SetActor(c *gin.Context, a actor.Actor) {
	c.Set(ctxActorKey, a)
}

func GetActor(c *gin.Context) (actor.Actor, bool) {
	v, exists := c.Get(ctxActorKey)
	if !exists {
		return actor.Actor{}, false
	}
	a, ok := v.(actor.Actor)
	return a, ok
}
