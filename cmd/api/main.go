package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/dental-receptionist/cmd/mainconfig"
	"github.com/wolfman30/dental-receptionist/internal/api/router"
	"github.com/wolfman30/dental-receptionist/internal/app/bootstrap"
	"github.com/wolfman30/dental-receptionist/internal/compliance"
	appconfig "github.com/wolfman30/dental-receptionist/internal/config"
	"github.com/wolfman30/dental-receptionist/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/dental-receptionist/internal/http/middleware"
	"github.com/wolfman30/dental-receptionist/internal/observability/metrics"
	"github.com/wolfman30/dental-receptionist/internal/scheduling"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting dental receptionist API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"calendar", cfg.CalendarBackend,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	bizCal, err := cfg.BusinessCalendar()
	if err != nil {
		logger.Error("invalid business calendar", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var awsCfg *aws.Config
	if mainconfig.NeedsAWS(cfg) {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		awsCfg = &loaded
	}

	cal, err := bootstrap.BuildCalendar(ctx, cfg, bizCal, logger)
	if err != nil {
		logger.Error("failed to initialize calendar", "error", err)
		os.Exit(1)
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}

	auditDB, err := bootstrap.BuildAuditDB(ctx, cfg, logger)
	if err != nil {
		// The audit trail is best-effort; bookings proceed without it.
		logger.Warn("audit database unavailable", "error", err)
		auditDB = nil
	}
	if auditDB != nil {
		defer auditDB.Close()
	}

	llm, closeLLM, err := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, logger)
	if err != nil {
		logger.Error("failed to initialize intent model", "error", err)
		os.Exit(1)
	}
	defer closeLLM()

	metricsHandler, schedulingMetrics := setupMetrics()

	svc, err := scheduling.NewService(bizCal, cal, scheduling.Options{
		Logger:   logger,
		Locker:   bootstrap.BuildDayLocker(redisClient, cfg, logger),
		Notifier: bootstrap.BuildNotifier(cfg, awsCfg, logger),
		Auditor:  bootstrap.BuildAuditor(auditDB),
		Metrics:  schedulingMetrics,
		Profile:  cfg.Profile(),
	})
	if err != nil {
		logger.Error("failed to initialize scheduling service", "error", err)
		os.Exit(1)
	}

	analyzer := bootstrap.BuildAnalyzer(llm, cfg, bizCal, logger)
	disclaimer := compliance.NewDisclaimerService(compliance.DefaultDisclaimerConfig())

	var limiter *httpmiddleware.RateLimiter
	if cfg.PublicRateLimit > 0 {
		limiter = httpmiddleware.NewRateLimiter(cfg.PublicRateLimit, cfg.PublicRateBurst)
		go evictIdleClients(ctx, limiter, 10*time.Minute)
	}
	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set; admin appointment routes disabled")
	}

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		Scheduling:         handlers.NewSchedulingHandler(svc, logger),
		Chat:               handlers.NewChatHandler(svc, analyzer, disclaimer, logger),
		AdminAppointments:  handlers.NewAdminAppointmentsHandler(svc, logger),
		Health:             handlers.NewHealthHandler(healthChecks(redisClient, auditDB)),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PublicLimiter:      limiter,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// setupMetrics registers scheduling metrics on a dedicated registry along with
// the Go runtime and process collectors.
func setupMetrics() (http.Handler, *metrics.SchedulingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewSchedulingMetrics(reg)
}

// healthChecks probes the optional dependencies that are enabled.
func healthChecks(redisClient *redis.Client, db *sql.DB) map[string]handlers.HealthCheck {
	checks := map[string]handlers.HealthCheck{}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	return checks
}

func evictIdleClients(ctx context.Context, limiter *httpmiddleware.RateLimiter, idle time.Duration) {
	ticker := time.NewTicker(idle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Evict(idle)
		}
	}
}
