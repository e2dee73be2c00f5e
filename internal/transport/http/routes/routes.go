package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/core/port"
	"github.com/prabodhahdev/login-signup/internal/infra/config"
	"github.com/prabodhahdev/login-signup/internal/transport/http/handlers"
	"github.com/prabodhahdev/login-signup/internal/transport/http/middleware"
	"github.com/prabodhahdev/login-signup/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Registration  *usecase.RegistrationService
	Accounts      *usecase.AccountService
	PasswordReset *usecase.PasswordResetService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
	Provider    port.IdentityProvider
	Metrics     *middleware.HTTPMetrics
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Correlate())
	r.Use(middleware.Logger(deps.Logger))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}
	if len(deps.Config.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	loginPath := deps.Config.Links.LoginPath
	requireSession := middleware.RequireSession(deps.Services.Auth, deps.Config.Session.CookieName, loginPath)

	if deps.Provider != nil {
		actionHandler := handlers.NewActionHandler(deps.Provider, deps.Config.Links)
		r.GET("/action", actionHandler.Handle)
	}

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")

		authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Services.Accounts, deps.Config.Session)
		authHandler.RegisterRoutes(authGroup, rateLimitRule(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts, time.Minute)...)
		authGroup.POST("/logout", requireSession, authHandler.Logout)
		authGroup.GET("/session", requireSession, authHandler.CurrentSession)

		if deps.Services.Registration != nil {
			registrationHandler := handlers.NewRegistrationHandler(deps.Services.Registration)
			registrationHandler.RegisterRoutes(authGroup, rateLimitRule(deps, "auth_register_ip", deps.Config.RateLimit.RegisterMaxAttempts, time.Minute)...)
		}

		if deps.Services.PasswordReset != nil {
			passwordHandler := handlers.NewPasswordHandler(deps.Services.PasswordReset)
			resetGroup := api.Group("/password/reset")
			passwordHandler.RegisterRoutes(resetGroup, rateLimitRule(deps, "password_reset_ip", deps.Config.RateLimit.PasswordResetMaxAttempts, time.Hour)...)
		}

		if deps.Services.Accounts != nil {
			adminGroup := api.Group("/admin/accounts")
			adminGroup.Use(requireSession, middleware.RequireRoles(domain.RoleAdmin, domain.RoleSuperAdmin))
			accountsHandler := handlers.NewAdminAccountsHandler(deps.Services.Accounts)
			accountsHandler.RegisterRoutes(adminGroup)
		}
	}

	handlers.RegisterSwagger(r)

	return r
}

func rateLimitRule(deps Dependencies, name string, limit int, fallbackWindow time.Duration) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = fallbackWindow
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
