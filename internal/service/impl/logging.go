package impl

import (
	"context"
	"log/slog"

	"asafe-api/internal/observability/middleware"
)

func logInfo(ctx context.Context, msg string, args ...any) {
	args = append(args, "request_id", middleware.RequestIDFromContext(ctx), "trace_id", middleware.TraceIDFromContext(ctx))
	slog.InfoContext(ctx, msg, args...)
}

func logError(ctx context.Context, msg string, err error, args ...any) {
	args = append(args, "error", err, "request_id", middleware.RequestIDFromContext(ctx), "trace_id", middleware.TraceIDFromContext(ctx))
	slog.ErrorContext(ctx, msg, args...)
}
