package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmanet/backend/internal/domain/identity"
	"github.com/pharmanet/backend/internal/infrastructure/auth"
	"github.com/pharmanet/backend/internal/infrastructure/config"
)

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "test",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, role string, branchID *uuid.UUID) string {
	t.Helper()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   uuid.New(),
		Username: "tester",
		Role:     role,
		BranchID: branchID,
	})
	require.NoError(t, err)
	return pair.AccessToken
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
		assert.Equal(t, rec.Header().Get(RequestIDHeader), rec.Body.String())
	})

	t.Run("propagates caller's ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "given-id")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, "given-id", rec.Header().Get(RequestIDHeader))
		assert.Equal(t, "given-id", rec.Body.String())
	})
}

func TestJWTAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newJWTService()

	newEngine := func() *gin.Engine {
		engine := gin.New()
		engine.Use(JWTAuth(JWTAuthConfig{
			JWTService: svc,
			SkipPaths:  []string{"/open"},
		}))
		handler := func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"role":      c.GetString(ContextRoleKey),
				"branch_id": c.GetString(ContextBranchIDKey),
			})
		}
		engine.GET("/open", handler)
		engine.GET("/protected", handler)
		return engine
	}

	t.Run("valid token passes and sets context", func(t *testing.T) {
		branchID := uuid.New()
		token := issueToken(t, svc, string(identity.RoleBranchManager), &branchID)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		newEngine().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), string(identity.RoleBranchManager))
		assert.Contains(t, rec.Body.String(), branchID.String())
	})

	t.Run("missing header rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newEngine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		newEngine().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		newEngine().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("skip path passes unauthenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newEngine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("refresh token rejected on access endpoint", func(t *testing.T) {
		pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
			UserID:   uuid.New(),
			Username: "tester",
			Role:     string(identity.RoleAdmin),
		})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
		rec := httptest.NewRecorder()
		newEngine().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newEngine := func(role string) *gin.Engine {
		engine := gin.New()
		engine.Use(func(c *gin.Context) {
			if role != "" {
				c.Set(ContextRoleKey, role)
			}
			c.Next()
		})
		engine.GET("/guarded", RequireRoles(identity.RoleShortageManager), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return engine
	}

	cases := []struct {
		name string
		role string
		want int
	}{
		{"allowed role", string(identity.RoleShortageManager), http.StatusOK},
		{"admin always allowed", string(identity.RoleAdmin), http.StatusOK},
		{"other role forbidden", string(identity.RoleDelivery), http.StatusForbidden},
		{"no role unauthorized", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newEngine(tc.role).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/guarded", nil))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestCORSWithConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://app.example.com"}

	engine := gin.New()
	engine.Use(CORSWithConfig(cfg))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unknown origin gets no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
