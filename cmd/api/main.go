package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clearpaw/vetclinic-platform/internal/api/router"
	"github.com/clearpaw/vetclinic-platform/internal/app/bootstrap"
	appconfig "github.com/clearpaw/vetclinic-platform/internal/config"
	"github.com/clearpaw/vetclinic-platform/internal/directory"
	"github.com/clearpaw/vetclinic-platform/internal/observability/metrics"
	"github.com/clearpaw/vetclinic-platform/internal/waitinglist"
	"github.com/clearpaw/vetclinic-platform/internal/whiteboard"
	"github.com/clearpaw/vetclinic-platform/pkg/logging"
)

func main() {
	// Load .env if present; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting vetclinic-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	boardMetrics := metrics.NewBoardMetrics(registry)

	// Storage. Falls back to the in-memory repository when no database is
	// configured, which keeps local development a single command.
	var (
		repo         waitinglist.Repository
		events       waitinglist.EventRecorder
		patients     directory.PatientLookup
		appointments directory.AppointmentLookup
		dirHandler   *directory.Handler
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		repo = waitinglist.NewPostgresRepository(pool)
		events = waitinglist.NewEventStore(pool)
		patientStore := directory.NewPatientStore(pool)
		patients = patientStore
		appointments = directory.NewAppointmentStore(pool)
		dirHandler = directory.NewHandler(patientStore, logger)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory waiting list")
		repo = waitinglist.NewMemoryRepository()
	}

	// Projection cache is optional; the board is served from the database
	// when Redis is absent or unreachable.
	var cache *whiteboard.Cache
	if rdb := bootstrap.BuildRedisClient(ctx, cfg, logger, true); rdb != nil {
		defer func() { _ = rdb.Close() }()
		cache = whiteboard.NewCache(rdb, cfg.BoardCacheTTL)
		logger.Info("board projection cache enabled", "ttl", cfg.BoardCacheTTL)
	}

	var invalidator waitinglist.Invalidator
	if cache != nil {
		invalidator = cache
	}

	service := waitinglist.NewService(repo, events, invalidator, boardMetrics, logger)
	boardHandler := waitinglist.NewHandler(service, logger)

	projector := whiteboard.NewProjector(repo, patients, appointments, cache, boardMetrics, logger)
	whiteboardHandler := whiteboard.NewHandler(projector, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		BoardHandler:       boardHandler,
		WhiteboardHandler:  whiteboardHandler,
		DirectoryHandler:   dirHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		StaffJWTSecret:     cfg.StaffJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
