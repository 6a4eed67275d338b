package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pharmanet/backend/internal/infrastructure/auth"
	"github.com/pharmanet/backend/internal/interfaces/http/dto"
)

// Context keys set by JWTAuth for downstream handlers
const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextRoleKey     = "role"
	ContextBranchIDKey = "branch_id"
	ContextClaimsKey   = "claims"
)

// JWTAuthConfig holds configuration for the JWT middleware
type JWTAuthConfig struct {
	JWTService *auth.JWTService
	SkipPaths  []string
}

// JWTAuth validates the Bearer token on every request and stores the
// authenticated identity on the gin context. Paths in SkipPaths pass
// through unauthenticated.
func JWTAuth(cfg JWTAuthConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		tokenString, ok := extractBearerToken(c)
		if !ok {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "missing or malformed authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			code := dto.ErrCodeTokenInvalid
			if strings.Contains(err.Error(), "expired") {
				code = dto.ErrCodeTokenExpired
			}
			abortUnauthorized(c, code, "invalid or expired token")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Set(ContextRoleKey, claims.Role)
		if claims.BranchID != "" {
			c.Set(ContextBranchIDKey, claims.BranchID)
		}
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetClaims returns the validated claims stored by JWTAuth
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(ContextClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
