// Package server wires the domain services and HTTP routes.
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/healthchain/portal/internal/config"
	"github.com/healthchain/portal/internal/domain/alerts"
	"github.com/healthchain/portal/internal/domain/analytics"
	"github.com/healthchain/portal/internal/domain/claims"
	"github.com/healthchain/portal/internal/domain/identity"
	"github.com/healthchain/portal/internal/domain/iot"
	"github.com/healthchain/portal/internal/domain/scoring"
	"github.com/healthchain/portal/internal/platform/apperr"
	"github.com/healthchain/portal/internal/platform/auth"
	"github.com/healthchain/portal/internal/platform/db"
	"github.com/healthchain/portal/internal/platform/kv"
	"github.com/healthchain/portal/internal/platform/metrics"
	"github.com/healthchain/portal/internal/platform/middleware"
)

const (
	ServiceName = "HealthChain.AI API"
	Version     = "1.0.0"
)

// Services bundles the domain services built over one store.
type Services struct {
	Identity  *identity.Service
	Claims    *claims.Service
	Scoring   *scoring.Service
	Alerts    *alerts.Service
	Analytics *analytics.Service
	IoT       *iot.Service
}

// NewStrategy picks the scoring strategy named by SCORING_STRATEGY.
func NewStrategy(cfg *config.Config) scoring.Strategy {
	if cfg.ScoringStrategy == "static" {
		return scoring.DefaultStaticStrategy()
	}
	return scoring.NewRandomStrategy(cfg.ScoringSeed, cfg.ScoringMinScore)
}

// NewServices wires every domain service to store. m may be nil.
func NewServices(cfg *config.Config, store kv.Store, strategy scoring.Strategy, m *metrics.Metrics, logger zerolog.Logger) *Services {
	tokens := auth.NewTokenIssuer(cfg.SigningSecret(), cfg.TokenTTL)
	identitySvc := identity.NewService(identity.NewUserRepoKV(store), tokens, 0)
	alertSvc := alerts.NewService(alerts.NewAlertRepoKV(store), m)
	analyticsSvc := analytics.NewService(analytics.NewCounterRepoKV(store), identitySvc)
	claimSvc := claims.NewService(
		claims.NewClaimRepoKV(store),
		strategy,
		alertSvc,
		analyticsSvc,
		m,
		logger.With().Str("component", "claims").Logger(),
	)
	analyticsSvc.UseSource(claimSvc)

	return &Services{
		Identity:  identitySvc,
		Claims:    claimSvc,
		Scoring:   scoring.NewService(strategy, claimSvc, cfg.ScoringDelay),
		Alerts:    alertSvc,
		Analytics: analyticsSvc,
		IoT:       iot.NewService(iot.NewTelemetryRepoKV(store)),
	}
}

// Options configures New.
type Options struct {
	Config   *config.Config
	Services *Services
	Logger   zerolog.Logger
	// Metrics enables GET /metrics when set.
	Metrics *metrics.Metrics
	// DB enables GET /health/db when set.
	DB db.Pinger
}

// New builds the echo instance with middleware and every route registered.
func New(opts Options) *echo.Echo {
	cfg := opts.Config
	svcs := opts.Services

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(opts.Logger)

	e.Use(middleware.RequestID())
	e.Use(opts.Metrics.Middleware())
	e.Use(middleware.Logger(opts.Logger))
	e.Use(middleware.Recovery(opts.Logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader},
	}))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	limits := middleware.DefaultRateLimitConfig()
	limits.RequestsPerSecond = cfg.RateLimitRPS
	limits.BurstSize = cfg.RateLimitBurst
	e.Use(middleware.RateLimit(limits))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	prefix := strings.TrimRight(cfg.APIPrefix, "/")
	api := e.Group(prefix, auth.JWTMiddleware(auth.JWTConfig{
		SigningKey: cfg.SigningSecret(),
		Skipper:    auth.NewSkipper(prefix),
		Accounts:   svcs.Identity,
	}))

	api.GET("", rootHandler)
	api.GET("/", rootHandler)
	api.GET("/health", healthHandler)

	identity.NewHandler(svcs.Identity).RegisterRoutes(api)
	claims.NewHandler(svcs.Claims).RegisterRoutes(api)
	scoring.NewHandler(svcs.Scoring).RegisterRoutes(api)
	iot.NewHandler(svcs.IoT).RegisterRoutes(api)
	alerts.NewHandler(svcs.Alerts).RegisterRoutes(api)
	analytics.NewHandler(svcs.Analytics).RegisterRoutes(api)

	if opts.Metrics != nil {
		e.GET("/metrics", opts.Metrics.Handler())
	}
	if opts.DB != nil {
		e.GET("/health/db", db.HealthHandler(opts.DB))
	}
	return e
}

func healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   ServiceName,
		"timestamp": time.Now().UTC(),
		"version":   Version,
	})
}

func rootHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "HealthChain.AI API Server",
		"version": Version,
		"endpoints": map[string]string{
			"auth":      "/auth/signup, /auth/login, /auth/me",
			"claims":    "/claims, /claims/create, /claims/:id, /claims/:id/status, /claims/user/:userId",
			"ai":        "/ai/validate-document, /ai/detect-fraud",
			"iot":       "/iot/queue/:facilityId, /iot/devices/:facilityId, /iot/update-queue",
			"alerts":    "/alerts, /alerts/create, /alerts/:id/read",
			"analytics": "/analytics/dashboard/:role",
		},
	})
}
