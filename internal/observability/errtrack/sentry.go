package errtrack

import (
	"context"
	"log/slog"
	"time"

	"asafe-api/internal/observability/middleware"

	"github.com/getsentry/sentry-go"
)

type Config struct {
	DSN         string
	Environment string
	Release     string
}

// Reporter forwards errors to Sentry. A Reporter built without a DSN is a
// no-op, as is a nil *Reporter.
type Reporter struct {
	initialized bool
}

func New(cfg Config) *Reporter {
	if cfg.DSN == "" {
		slog.Info("SENTRY_DSN not set, error tracking disabled")
		return &Reporter{}
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
	})
	if err != nil {
		slog.Warn("sentry initialization failed", "error", err)
		return &Reporter{}
	}

	slog.Info("sentry initialized", "environment", cfg.Environment)
	return &Reporter{initialized: true}
}

func (r *Reporter) Enabled() bool { return r != nil && r.initialized }

// Capture sends err with request correlation tags taken from ctx.
func (r *Reporter) Capture(ctx context.Context, err error, tags map[string]string) {
	if !r.Enabled() || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		if id := middleware.RequestIDFromContext(ctx); id != "" {
			scope.SetTag("request_id", id)
		}
		if id := middleware.TraceIDFromContext(ctx); id != "" {
			scope.SetTag("trace_id", id)
		}
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Flush waits for buffered events; true means everything was sent.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if !r.Enabled() {
		return true
	}
	return sentry.Flush(timeout)
}
