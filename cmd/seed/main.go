package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"inspection_portal/internal/adapters/storage"
	"inspection_portal/internal/auth/password"
	authvalidator "inspection_portal/internal/auth/validator"
	"inspection_portal/migrations"
	"inspection_portal/platform/config"
	"inspection_portal/platform/db"
	"inspection_portal/platform/logger"

	"github.com/jackc/pgx/v5"
)

const sampleReportContentType = "application/pdf"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting seed", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed, err := parseSeed(defaultSeed)
	if err != nil {
		log.Error("invalid seed file", "error", err)
		os.Exit(1)
	}
	if email := strings.TrimSpace(os.Getenv("SEED_ADMIN_EMAIL")); email != "" {
		seed.Admin.Email = email
	}

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if !authvalidator.IsStrongPassword(adminPassword) {
		log.Error("SEED_ADMIN_PASSWORD must be set and satisfy the password policy", "policy", authvalidator.PasswordPolicy)
		os.Exit(1)
	}
	hash, err := password.Hash(adminPassword)
	if err != nil {
		log.Error("failed to hash admin password", "error", err)
		os.Exit(1)
	}

	if err := db.RunMigrations(ctx, cfg, migrations.FS); err != nil {
		log.Error("failed to run database migrations", "error", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var stats seedStats
	if err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		var applyErr error
		stats, applyErr = seed.apply(ctx, tx, hash)
		return applyErr
	}); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
	log.Info("seed applied", "usersCreated", stats.Users, "rowsCreated", stats.Rows)

	if path := strings.TrimSpace(os.Getenv("SEED_SAMPLE_REPORT_PATH")); path != "" {
		if err := uploadSampleReport(ctx, cfg, path); err != nil {
			log.Error("sample report upload failed", "error", err, "path", path)
			os.Exit(1)
		}
		log.Info("sample report uploaded", "bucket", cfg.GetMinioBucketReports(), "key", cfg.GetSampleReportKey())
	}
}

func uploadSampleReport(ctx context.Context, cfg *config.Config, path string) error {
	store, err := storage.NewMinIOService(cfg)
	if err != nil {
		return err
	}
	if err := store.EnsureBucketExists(ctx, cfg.GetMinioBucketReports()); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	return store.UploadFile(ctx, cfg.GetMinioBucketReports(), cfg.GetSampleReportKey(), sampleReportContentType, f, info.Size())
}
