package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/tourism-dashboard/internal/api/http"
	"github.com/i474232898/tourism-dashboard/internal/config"
	"github.com/i474232898/tourism-dashboard/internal/scheduler"
	"github.com/i474232898/tourism-dashboard/internal/store"
	"github.com/i474232898/tourism-dashboard/internal/tourism"
	"github.com/i474232898/tourism-dashboard/internal/tourism/sources"
)

const appName = "tourism-dashboard"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Shared HTTP client for outbound backend and weather calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Session store with configured retention.
	var sessionStore tourism.SessionStore
	switch cfg.SessionStore {
	case config.StoreSQLite:
		sqlStore, err := store.OpenSQLiteStore(cfg.SessionDBPath, cfg.SessionMaxAge)
		if err != nil {
			zl.Fatal("failed to open session store", zap.String("path", cfg.SessionDBPath), zap.Error(err))
		}
		defer sqlStore.Close()
		sessionStore = sqlStore
	default:
		sessionStore = store.NewMemoryStore(cfg.SessionMax, cfg.SessionMaxAge)
	}

	// Live backend with resilience (backoff + circuit breaker), and the
	// synthetic source it falls back to.
	live := sources.NewBackend(httpClient, cfg.BackendBaseURL, cfg.BackendMaxRetries, zl.Named("backend"))
	seed := cfg.SyntheticSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	synthetic := sources.NewSynthetic(seed, cfg.Profile.FallbackInterests)

	opts := []tourism.Option{
		tourism.WithProfile(cfg.Profile),
		tourism.WithWeatherCacheTTL(cfg.WeatherCacheTTL),
		tourism.WithLogger(zl.Named("service")),
	}
	var direct []tourism.WeatherSource
	if cfg.OpenWeatherAPIKey != "" {
		direct = append(direct, sources.NewOpenWeather(httpClient, cfg.OpenWeatherAPIKey, sources.DefaultOpenWeatherURL))
	}
	if cfg.WeatherAPIKey != "" {
		direct = append(direct, sources.NewWeatherAPI(httpClient, cfg.WeatherAPIKey, sources.DefaultWeatherAPIURL))
	}
	if len(direct) == 0 {
		zl.Info("no weather API keys set; direct weather fallback disabled")
	}
	opts = append(opts, tourism.WithDirectWeather(direct...))

	// Core service orchestrating sources, fallbacks and sessions.
	service := tourism.NewService(live, synthetic, tourism.NewSessions(sessionStore), opts...)

	// Scheduler that periodically probes the backend.
	sched := scheduler.New(service, cfg.ProbeInterval, zl.Named("scheduler"))
	if err := sched.Start(); err != nil {
		zl.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * cfg.HTTPTimeout,
		ErrorHandler:          httpapi.ErrorHandler(zl.Named("http")),
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, service, appName)

	// Start server with graceful shutdown
	go func() {
		zl.Info("listening", zap.String("port", cfg.Port), zap.String("backend", cfg.BackendBaseURL),
			zap.String("profile", cfg.Profile.Name), zap.String("sessions", cfg.SessionStore))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Warn("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}
}
