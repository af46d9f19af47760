package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"asafe-api/internal/domain"
	"asafe-api/internal/httpx"
	"asafe-api/internal/jwtsigner"
	obsmw "asafe-api/internal/observability/middleware"
	"asafe-api/internal/upload"
)

const MsgInternal = "An unexpected error occurred"

type errorResponse struct {
	Error   string              `json:"error"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// classify maps err onto the response status and body. Unclassified errors
// become a 500 without the underlying cause.
func classify(err error) (int, errorResponse) {
	var (
		validation *domain.ValidationError
		uploadErr  *domain.UploadError
		notFound   *domain.NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, errorResponse{Error: "Validation error", Details: validation.Details}
	case errors.Is(err, upload.ErrNoFileUploaded):
		return http.StatusBadRequest, errorResponse{Error: upload.ErrNoFileUploaded.Error()}
	case errors.Is(err, upload.ErrFileTooLarge):
		return http.StatusBadRequest, errorResponse{Error: upload.ErrFileTooLarge.Error()}
	case errors.As(err, &uploadErr):
		status := uploadErr.Status
		if status < 400 || status > 599 {
			status = http.StatusInternalServerError
		}
		return status, errorResponse{Error: uploadErr.Message}
	case errors.Is(err, domain.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, errorResponse{Error: "Unsupported Media Type"}
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, jwtsigner.ErrInvalidToken):
		return http.StatusUnauthorized, errorResponse{Error: "Unauthorized"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "Forbidden"}
	case errors.As(err, &notFound):
		return http.StatusNotFound, errorResponse{Error: notFound.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "Not Found"}
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, errorResponse{Error: "Email already exists"}
	default:
		return http.StatusInternalServerError, errorResponse{Error: MsgInternal}
	}
}

// writeError logs err, forwards it to error tracking and writes the
// translated response.
func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	ctx := r.Context()

	attrs := []any{
		"status", status,
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
		"request_id", obsmw.RequestIDFromContext(ctx),
		"trace_id", obsmw.TraceIDFromContext(ctx),
	}
	if status == http.StatusUnsupportedMediaType {
		attrs = append(attrs, "content_type", r.Header.Get("Content-Type"))
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", attrs...)
	} else {
		slog.WarnContext(ctx, "request rejected", attrs...)
	}

	if h.reporter != nil {
		h.reporter.Capture(ctx, err, map[string]string{
			"status": strconv.Itoa(status),
			"route":  r.URL.Path,
		})
	}

	httpx.WriteJSON(w, status, body)
}

func (h *handler) writeMessageError(w http.ResponseWriter, status int, msg string) {
	httpx.WriteJSON(w, status, errorResponse{Error: msg})
}
