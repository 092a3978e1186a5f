package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/firstaid/firstaid/internal/config"
	"github.com/firstaid/firstaid/internal/domain/emergency"
	"github.com/firstaid/firstaid/internal/domain/hospital"
	"github.com/firstaid/firstaid/internal/domain/incident"
	"github.com/firstaid/firstaid/internal/platform/auth"
	"github.com/firstaid/firstaid/internal/platform/cache"
	"github.com/firstaid/firstaid/internal/platform/db"
	"github.com/firstaid/firstaid/internal/platform/middleware"
	"github.com/firstaid/firstaid/internal/platform/openapi"
	"github.com/firstaid/firstaid/internal/platform/places"
	"github.com/firstaid/firstaid/internal/platform/telemetry"
	"github.com/firstaid/firstaid/internal/triage"
)

// deps are the long-lived collaborators the HTTP layer is built from.
// pool and incidents are nil when no database is configured.
type deps struct {
	cfg       *config.Config
	logger    zerolog.Logger
	assessor  *triage.Assessor
	store     cache.Store
	searcher  hospital.Searcher
	pool      *pgxpool.Pool
	incidents *incident.Service
	limiter   *middleware.RateLimiter
	metrics   *telemetry.Metrics
}

func newEcho(d *deps) *echo.Echo {
	cfg := d.cfg

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.HTTPErrorHandler(d.logger)

	// Global middleware
	e.Use(middleware.Recovery(d.logger))
	e.Use(middleware.RequestID())
	if d.metrics != nil {
		e.Use(d.metrics.Middleware())
	}
	e.Use(middleware.Logger(d.logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, middleware.CacheHeader},
	}))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Sanitize(d.logger))
	e.Use(middleware.BodyLimit("1M"))
	if d.limiter != nil {
		e.Use(d.limiter.Middleware())
	}
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	e.GET("/health", healthHandler(d))
	if d.pool != nil {
		e.GET("/health/db", db.HealthHandler(d.pool))
	}
	if d.metrics != nil {
		e.GET("/metrics", d.metrics.Handler())
	}
	openapi.NewGenerator(version, "", d.incidents != nil && cfg.AdminJWTSecret != "").RegisterRoutes(e)

	api := e.Group("/api")

	var emOpts []emergency.Option
	emOpts = append(emOpts, emergency.WithTTL(cfg.ClassifyCacheTTL()), emergency.WithLogger(d.logger))
	if d.incidents != nil {
		emOpts = append(emOpts, emergency.WithRecorder(d.incidents))
	}
	if d.metrics != nil {
		emOpts = append(emOpts, emergency.WithRecorder(d.metrics))
	}
	emergency.NewHandler(emergency.NewService(d.assessor, d.store, emOpts...)).RegisterRoutes(api)

	hospital.NewHandler(hospital.NewService(d.searcher, d.store,
		hospital.WithTTL(cfg.HospitalCacheTTL()),
		hospital.WithRadius(cfg.HospitalSearchRadius),
		hospital.WithLogger(d.logger),
	)).RegisterRoutes(api)

	if d.incidents != nil && cfg.AdminJWTSecret != "" {
		admin := api.Group("/admin", auth.JWTMiddleware(adminJWTConfig(cfg)))
		incident.NewHandler(d.incidents).RegisterRoutes(admin)
	}

	return e
}

func healthHandler(d *deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		cacheStatus := "ok"
		if err := d.store.Ping(ctx); err != nil {
			cacheStatus = "unavailable"
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":     "ok",
			"classifier": d.assessor.ClassifierName(),
			"threshold":  d.assessor.Threshold(),
			"cache":      cacheStatus,
		})
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := &deps{cfg: cfg, logger: logger, metrics: telemetry.New(middleware.CacheHeader)}

	// Classifier
	clf, err := triage.New(cfg.ClassifierBackend, cfg.ModelPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load classifier")
	}
	d.assessor = triage.NewAssessor(clf, cfg.ConfidenceThreshold)
	logger.Info().Str("classifier", clf.Name()).Float64("threshold", d.assessor.Threshold()).Msg("classifier ready")

	// Cache
	if cfg.RedisURL != "" {
		rs, err := cache.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rs.Close()
		d.store = rs
		logger.Info().Msg("connected to redis")
	} else {
		ms := cache.NewMemoryStore()
		ms.StartCleanup(ctx, time.Minute)
		d.store = ms
		logger.Warn().Msg("REDIS_URL not set, using in-process cache")
	}

	// Places
	if cfg.GoogleMapsAPIKey == "" {
		logger.Warn().Msg("GOOGLE_MAPS_API_KEY not set, /api/nearby-hospitals will fail")
	}
	placesOpts := []places.Option{places.WithTimeout(cfg.UpstreamTimeout)}
	if cfg.PlacesBaseURL != "" {
		placesOpts = append(placesOpts, places.WithBaseURL(cfg.PlacesBaseURL))
	}
	d.searcher = places.NewClient(cfg.GoogleMapsAPIKey, placesOpts...)

	// Database
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		d.pool = pool
		d.incidents = incident.NewService(incident.NewRepoPG(pool))
		logger.Info().Msg("connected to database, incident log enabled")
	}
	if cfg.AdminJWTSecret != "" && !cfg.AdminEnabled() {
		logger.Warn().Msg("ADMIN_JWT_SECRET set without DATABASE_URL, admin API disabled")
	}

	// Rate limiting
	if cfg.RateLimitRPS > 0 {
		d.limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			BurstSize:         cfg.RateLimitBurst,
			SkipPrefixes:      []string{"/health", "/metrics"},
		})
		d.limiter.StartCleanup(ctx, time.Minute, 10*time.Minute)
	}

	e := newEcho(d)

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

