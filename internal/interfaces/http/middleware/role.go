package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmanet/backend/internal/domain/identity"
	"github.com/pharmanet/backend/internal/interfaces/http/dto"
)

// RequireRoles allows the request through only when the authenticated
// user's role is one of the given roles. Admins always pass.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles)+1)
	allowed[string(identity.RoleAdmin)] = true
	for _, r := range roles {
		allowed[string(r)] = true
	}

	return func(c *gin.Context) {
		role := c.GetString(ContextRoleKey)
		if role == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "authentication required")
			return
		}
		if !allowed[role] {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "insufficient permissions", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
