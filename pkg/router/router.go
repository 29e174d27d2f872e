package router

import (
	"net/http"
	"strings"
	"time"

	"ice-breakun/backend/internal/api"
	"ice-breakun/backend/pkg/di"
	"ice-breakun/backend/pkg/errors"
	"ice-breakun/backend/pkg/logger"
	"ice-breakun/backend/pkg/middleware"
	"ice-breakun/backend/pkg/observability"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine      *gin.Engine
	Container   *di.Container
	Logger      *logger.Logger
	rateLimiter *middleware.RateLimiter
}

// New creates the engine and installs the middleware chain
func New(container *di.Container) *Router {
	cfg := container.Config

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		container.Logger.Warn("Invalid trusted proxies, trusting none", "error", err.Error())
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(logger.Middleware(container.Logger))
	// Outside the error handler so spans and metrics see the final status
	engine.Use(observability.Middleware(container.Metrics))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())
	engine.Use(corsMiddleware(cfg.Security.AllowedOrigins))

	rateLimiter := middleware.NewRateLimiter(container.Logger, middleware.RateLimiterOptions{
		Limit:          rate.Limit(cfg.Security.RateLimit),
		Burst:          cfg.Security.RateLimitBurst,
		ExpiryDuration: time.Hour,
		Skip:           isProbe,
	})
	engine.Use(rateLimiter.Middleware())

	engine.Use(middleware.BodyLimit(cfg.Security.MaxBodySize))

	return &Router{
		Engine:      engine,
		Container:   container,
		Logger:      container.Logger,
		rateLimiter: rateLimiter,
	}
}

// isProbe exempts health checks and metric scrapes from rate limiting
func isProbe(c *gin.Context) bool {
	path := c.Request.URL.Path
	return strings.HasPrefix(path, "/health") || path == "/metrics"
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	c := r.Container

	healthHandler := api.NewHealthHandler(c.Config.Server.Version)
	userHandler := api.NewUserHandler(c.UserService)
	messageHandler := api.NewMessageHandler(c.MessageService)

	healthHandler.RegisterHealthRoutes(r.Engine)
	r.Engine.GET("/health/ready", gin.WrapF(c.Health.HTTPHandler()))
	if c.Metrics != nil {
		r.Engine.GET("/metrics", gin.WrapH(c.Metrics.Handler()))
	}

	v1 := r.Engine.Group("/api/v1")
	{
		healthHandler.RegisterHealthRoutes(v1)
		userHandler.RegisterRoutesV1(v1)
		messageHandler.RegisterRoutesV1(v1)
		v1.GET("/ws", c.Hub.ServeWs)
	}

	r.Engine.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			_ = ctx.Error(errors.NewNotFoundError("NOT_FOUND", "API endpoint not found"))
			return
		}
		_ = ctx.Error(errors.NewNotFoundError("NOT_FOUND", "Not found"))
	})
}

// Close stops background work owned by the router
func (r *Router) Close() {
	r.rateLimiter.Stop()
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID", "Upgrade", "Connection"},
		ExposeHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:        24 * time.Hour,
	}

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}

	return cors.New(cfg)
}
