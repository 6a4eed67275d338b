package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pharmanet/backend/internal/infrastructure/auth"
	"github.com/pharmanet/backend/internal/infrastructure/config"
	"github.com/pharmanet/backend/internal/infrastructure/logger"
	"github.com/pharmanet/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar registers a handler's routes on a router group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router assembles the gin engine with middleware and versioned routes
type Router struct {
	engine     *gin.Engine
	jwtService *auth.JWTService
	cfg        *config.Config
	logger     *zap.Logger
	registrars []RouteRegistrar
}

// New creates a router
func New(cfg *config.Config, jwtService *auth.JWTService, log *zap.Logger) *Router {
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	return &Router{
		engine:     gin.New(),
		jwtService: jwtService,
		cfg:        cfg,
		logger:     log,
	}
}

// Register adds handlers whose routes are mounted by Setup
func (r *Router) Register(registrars ...RouteRegistrar) {
	r.registrars = append(r.registrars, registrars...)
}

// Setup wires middleware and mounts all registered routes under /api/v1
func (r *Router) Setup() *gin.Engine {
	engine := r.engine

	if len(r.cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(r.cfg.HTTP.TrustedProxies); err != nil {
			r.logger.Warn("invalid trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(r.logger))
	engine.Use(logger.Recovery(r.logger))

	corsCfg := middleware.DefaultCORSConfig()
	if len(r.cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = r.cfg.HTTP.CORSAllowOrigins
	}
	if len(r.cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = r.cfg.HTTP.CORSAllowMethods
	}
	if len(r.cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = r.cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.Use(middleware.JWTAuth(middleware.JWTAuthConfig{
		JWTService: r.jwtService,
		SkipPaths: []string{
			"/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
	}))

	api := engine.Group("/api/v1")
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}

	return engine
}
