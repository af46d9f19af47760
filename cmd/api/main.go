package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asafe-api/internal/config"
	"asafe-api/internal/jwtsigner"
	"asafe-api/internal/mailer"
	"asafe-api/internal/objectstore"
	"asafe-api/internal/observability/errtrack"
	"asafe-api/internal/observability/logging"
	"asafe-api/internal/observability/metrics"
	"asafe-api/internal/realtime"
	impl "asafe-api/internal/service/impl"
	"asafe-api/internal/store"
	httpx "asafe-api/internal/transport/http"
	"asafe-api/internal/upload"
	"asafe-api/pkg/db"

	"github.com/joho/godotenv"
)

const serviceName = "asafe-api"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env", "error", err)
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}
	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: env,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	if err := run(); err != nil {
		logger.Error("service stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	metrics.MustRegister(serviceName)

	reporter := errtrack.New(errtrack.Config{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     serviceName,
	})
	defer reporter.Flush(2 * time.Second)

	// 1) Storage
	gdb, sqlDB, err := db.Open(db.Config{
		DSN:             cfg.DatabaseURL,
		LogSQL:          cfg.LogSQL,
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Warn("db close", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := sqlDB.PingContext(ctx); err != nil {
		cancel()
		return err
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, sqlDB); err != nil {
			cancel()
			return err
		}
	}
	cancel()

	st := store.New(gdb)

	// 2) Collaborators
	codec, err := jwtsigner.New([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return err
	}
	mail := mailer.New(mailer.Config{
		APIURL:   cfg.Mail.APIURL,
		APIKey:   cfg.Mail.APIKey,
		From:     cfg.Mail.From,
		FromName: cfg.Mail.FromName,
	})
	hub := realtime.NewHub(cfg.AllowedOrigins)
	defer hub.Close()

	archiver, err := objectstore.New(objectstore.Config{
		Endpoint:  cfg.Minio.Endpoint,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		Bucket:    cfg.Minio.Bucket,
		UseSSL:    cfg.Minio.UseSSL,
	})
	if err != nil {
		return err
	}
	if err := archiver.EnsureBucket(context.Background()); err != nil {
		slog.Warn("object store unavailable, uploads will not be archived", "error", err)
	}

	if err := os.MkdirAll(cfg.Upload.ScratchDir, 0o700); err != nil {
		return err
	}
	relay := upload.NewRelay(
		upload.Config{ScratchDir: cfg.Upload.ScratchDir, MaxBytes: cfg.Upload.MaxBytes},
		upload.NewClient(cfg.Upload.APIURL, cfg.Upload.APIKey, cfg.Upload.Timeout),
		archiver,
	)

	// 3) Services
	passwords := impl.NewPasswordServiceBcrypt()
	accounts := impl.NewAccountServiceImpl(st, passwords, codec, mail, reporter, cfg.AppURL)
	posts := impl.NewPostServiceImpl(st)
	notifications := impl.NewNotificationServiceImpl(st, hub, mail, reporter)

	// 4) HTTP
	router := httpx.NewRouter(httpx.Config{
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, httpx.Deps{
		Accounts:      accounts,
		Posts:         posts,
		Notifications: notifications,
		Relay:         relay,
		Realtime:      hub,
		Verifier:      codec,
		Reporter:      reporter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sig)

	select {
	case err := <-errCh:
		return err
	case s := <-sig:
		slog.Info("shutting down", "signal", s.String())
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
		return err
	}
	slog.Info("shutdown complete")
	return nil
}
