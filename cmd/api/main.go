package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inspection_portal/internal/adapters/storage"
	"inspection_portal/internal/audit"
	"inspection_portal/internal/auth"
	"inspection_portal/internal/catalog"
	"inspection_portal/internal/email"
	"inspection_portal/internal/events"
	apphttp "inspection_portal/internal/http"
	"inspection_portal/internal/http/router"
	"inspection_portal/internal/leads"
	"inspection_portal/internal/notification"
	"inspection_portal/internal/quotes"
	"inspection_portal/internal/reports"
	"inspection_portal/internal/scheduler"
	"inspection_portal/migrations"
	"inspection_portal/platform/cache"
	"inspection_portal/platform/config"
	"inspection_portal/platform/db"
	"inspection_portal/platform/logger"
	"inspection_portal/platform/phone"
	"inspection_portal/platform/validator"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	snapshotCachePrefix = "inspection:"
	shutdownTimeout     = 10 * time.Second
	sentryFlushTimeout  = 2 * time.Second
)

const storageBucketEnsureErrPrefix = "failed to ensure storage bucket exists: "
const storageBucketEnsureErrMsg = "failed to ensure storage bucket exists"

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error(storageBucketEnsureErrMsg, "error", err, "bucket", bucket)
		panic(storageBucketEnsureErrPrefix + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	flushSentry := initSentry(cfg, log)
	defer flushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
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

	eventBus := events.NewInMemoryBus(log)

	snapshotCache, closeCache := initSnapshotCache(ctx, cfg, log)
	defer closeCache()

	sender, closeSender := initEmailSender(cfg, log)
	defer closeSender()

	storageSvc := initStorage(ctx, cfg, log)

	val := validator.New()
	phones := phone.NewNormalizer(cfg.GetPhoneDefaultRegion())

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	notification.New(sender, cfg, log).RegisterHandlers(eventBus)

	auditModule := audit.NewModule(pool, val, log)
	authModule, err := auth.NewModule(pool, cfg, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize auth module", "error", err)
		panic("failed to initialize auth module: " + err.Error())
	}
	catalogModule := catalog.NewModule(pool, snapshotCache, cfg.GetSnapshotCacheTTL(), auditModule.Recorder(), val, log)
	leadsModule := leads.NewModule(pool, auditModule.Recorder(), val, log)
	quotesModule := quotes.NewModule(catalogModule.Service(), leadsModule.Service(), phones, eventBus, val, log)
	reportsModule := reports.NewModule(pool, storageSvc, cfg, phones, eventBus, auditModule.Recorder(), val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		Sessions: authModule.Sessions(),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			catalogModule,
			quotesModule,
			leadsModule,
			reportsModule,
			auditModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initSentry(cfg *config.Config, log *logger.Logger) func() {
	if cfg.GetSentryDSN() == "" {
		return func() {}
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.GetSentryDSN(),
		Environment:      cfg.GetEnv(),
		AttachStacktrace: true,
	}); err != nil {
		log.Warn("sentry disabled", "error", err)
		return func() {}
	}
	log.Info("sentry error reporting enabled")
	return func() { sentry.Flush(sentryFlushTimeout) }
}

// initSnapshotCache returns the Redis snapshot cache, or a no-op cache when
// Redis is not configured or unreachable.
func initSnapshotCache(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) (cache.Cache, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; config snapshot cache disabled")
		return cache.Noop{}, func() {}
	}

	redisCache, err := cache.NewRedisCache(cfg, snapshotCachePrefix)
	if err != nil {
		log.Error("failed to initialize snapshot cache", "error", err)
		return cache.Noop{}, func() {}
	}
	if err := redisCache.Ping(ctx); err != nil {
		log.Warn("redis unreachable; config snapshot cache disabled", "error", err)
		_ = redisCache.Close()
		return cache.Noop{}, func() {}
	}

	return redisCache, func() { _ = redisCache.Close() }
}

// initEmailSender queues emails through asynq when Redis is configured and
// sends them inline otherwise.
func initEmailSender(cfg *config.Config, log *logger.Logger) (email.Sender, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; emails are sent inline")
		return email.NewSender(cfg), func() {}
	}

	queueClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize email queue; sending inline", "error", err)
		return email.NewSender(cfg), func() {}
	}

	return queueClient, func() {
		_ = queueClient.Close()
	}
}

func initStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) storage.StorageService {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MinIO not configured; sample report served from SAMPLE_REPORT_URL")
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	ensureBucket(ctx, log, storageSvc, "reports", cfg.GetMinioBucketReports())
	log.Info("storage service initialized", "reportsBucket", cfg.GetMinioBucketReports())
	return storageSvc
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
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)

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
