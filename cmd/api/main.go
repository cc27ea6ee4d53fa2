package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matter_intake_backend/internal/archive"
	"matter_intake_backend/internal/credentials"
	"matter_intake_backend/internal/credentials/secrets"
	"matter_intake_backend/internal/events"
	apphttp "matter_intake_backend/internal/http"
	"matter_intake_backend/internal/http/router"
	"matter_intake_backend/internal/intake"
	"matter_intake_backend/internal/intake/service"
	"matter_intake_backend/internal/notification"
	registryclient "matter_intake_backend/internal/registry/client"
	"matter_intake_backend/internal/scheduler"
	"matter_intake_backend/internal/telemetry"
	"matter_intake_backend/platform/config"
	"matter_intake_backend/platform/db"
	"matter_intake_backend/platform/logger"
	"matter_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Registry client and tenant credential provider
	registry := registryclient.New(cfg.GetRegistryBaseURL(), log)
	creds := credentials.New(secrets.NewEnvStore(cfg.GetSecretsEnvPrefix()), registry, log)

	// Telemetry sink (Redis Streams); disabled without REDIS_URL
	reporter := initTelemetry(cfg, log)

	// Submission archive (MinIO); disabled without MINIO_ENDPOINT
	archiver := initArchive(ctx, cfg, log)

	// Notification dispatch, queued through asynq when Redis is available
	enqueuer, closeScheduler := initNotificationScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}
	notification.NewModule(cfg, eventBus, enqueuer, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	intakeModule := intake.NewModule(pool, registry, creds, eventBus, reporter, archiver, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: pool,
		Modules: []apphttp.Module{
			intakeModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initTelemetry(cfg *config.Config, log *logger.Logger) service.Telemetry {
	if !cfg.IsTelemetryEnabled() {
		log.Warn("REDIS_URL not configured; pipeline telemetry disabled")
		return telemetry.Noop{}
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL; pipeline telemetry disabled", "error", err)
		return telemetry.Noop{}
	}

	return telemetry.NewStreamReporter(redis.NewClient(opt), cfg.GetTelemetryStream(), log)
}

func initArchive(ctx context.Context, cfg *config.Config, log *logger.Logger) service.SubmissionArchiver {
	if !cfg.IsArchiveEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; submission archive disabled")
		return nil
	}

	store, err := archive.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize submission archive", "error", err)
		return nil
	}
	return store
}

func initNotificationScheduler(cfg config.SchedulerConfig, log *logger.Logger) (notification.Enqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; notifications dispatch inline")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
