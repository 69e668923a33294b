package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"affilink/internal/config"
	"affilink/internal/handlers"
	"affilink/internal/repository"
	"affilink/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func Run(ctx context.Context) error {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Setup Logger
	var handler slog.Handler
	if cfg.AppEnv == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	generated, err := cfg.EnsureSessionSecret()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if generated {
		logger.Warn("SESSION_SECRET not set, using a random key; sessions end on restart")
	}

	// 3. Initialize Database
	db, err := repository.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// 4. Schema
	if strings.HasPrefix(cfg.DatabaseURL, "postgres") {
		logger.Info("Running database migrations...")
		if err := repository.RunMigrations(cfg.DatabaseURL, ""); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	} else if err := repository.AutoMigrate(db); err != nil {
		return err
	}

	// 5. Initialize Redis. The catalog works uncached without it.
	rdb, err := repository.InitRedis(cfg.RedisURL, cfg.RedisPassword, 0)
	if err != nil {
		logger.Warn("Failed to connect to Redis, product cache disabled", "error", err)
		rdb = nil
	}

	// 6. Initialize Services
	telemetry := services.NewTelemetry(prometheus.DefaultRegisterer)
	repo := repository.NewCatalogRepository(db)
	auditService := services.NewAuditService(db, logger)
	geoIPService := services.NewGeoIPService(cfg, logger)
	clickRecorder := services.NewClickRecorder(repo, logger, telemetry, geoIPService)
	catalogService := services.NewCatalogService(repo, rdb, auditService, logger, cfg.DefaultDescription, cfg.ProductsCacheTTL)
	dashboardService := services.NewDashboardService(repo, logger, telemetry)
	authService := services.NewAuthService(db, cfg, auditService, logger)
	qrService := services.NewQRService()
	rateLimiter := services.NewIPRateLimiter(5, 10, 10*time.Minute, logger)

	if cfg.AdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AllowedEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to provision admin: %w", err)
		}
	} else {
		logger.Warn("ADMIN_PASSWORD not set, dashboard login relies on an existing user")
	}

	// 7. Initialize Handler
	h := handlers.NewHandler(cfg, logger, catalogService, dashboardService, clickRecorder, authService, qrService)

	// 8. Setup Router
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := h.SetupRouter(rateLimiter)

	// 9. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var workers sync.WaitGroup
	workers.Add(2)
	go func() {
		defer workers.Done()
		clickRecorder.Start(workerCtx)
	}()
	go func() {
		defer workers.Done()
		auditService.Start(workerCtx)
	}()
	go geoIPService.Init()
	go geoIPService.StartUpdater(workerCtx)
	go rateLimiter.StartCleanup(workerCtx, time.Minute)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// The click recorder drains its queue before Start returns.
	workerCancel()
	workers.Wait()

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Warn("Failed to close Redis client", "error", err)
		}
	}

	logger.Info("Server exiting")
	return nil
}
