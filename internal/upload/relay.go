// Package upload accepts multipart uploads, stages them on local scratch
// storage and forwards them to an external image host.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"asafe-api/internal/domain"
	"asafe-api/internal/netutil"
	"asafe-api/internal/observability/metrics"
	"asafe-api/internal/observability/middleware"

	"github.com/google/uuid"
)

const (
	DefaultMaxBytes = 10 << 20
	maxFieldBytes   = 4 << 10
	SuccessMessage  = "File uploaded successfully"
)

var (
	ErrNoFileUploaded = errors.New("No file uploaded")
	ErrFileTooLarge   = errors.New("File size exceeds the maximum limit")
)

type Uploader interface {
	Upload(ctx context.Context, path, filename string, opts Options) (json.RawMessage, error)
}

// Archiver keeps a copy of a relayed file.
type Archiver interface {
	Archive(ctx context.Context, key, path, contentType string) error
}

type Config struct {
	ScratchDir string
	MaxBytes   int64
}

type Result struct {
	Message  string          `json:"message"`
	Response json.RawMessage `json:"response"`
}

type Relay struct {
	cfg      Config
	uploader Uploader
	archiver Archiver
	now      func() time.Time
}

// NewRelay builds a relay; archiver may be nil.
func NewRelay(cfg Config, uploader Uploader, archiver Archiver) *Relay {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = os.TempDir()
	}
	return &Relay{cfg: cfg, uploader: uploader, archiver: archiver, now: time.Now}
}

// MaxBytes is the largest accepted file.
func (r *Relay) MaxBytes() int64 { return r.cfg.MaxBytes }

type staged struct {
	path     string
	name     string
	filename string
	ctype    string
}

// Handle reads the multipart body of req. The first file part is staged and
// relayed; later file parts are discarded. The scratch file is removed
// before Handle returns.
func (r *Relay) Handle(ctx context.Context, req *http.Request, ownerID string) (res *Result, err error) {
	result := "success"
	defer func() {
		if err != nil {
			result = outcome(err)
		}
		metrics.UploadsRelayedTotal.WithLabelValues(result).Inc()
	}()

	mr, err := req.MultipartReader()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedMediaType, req.Header.Get("Content-Type"))
		}
		v := &domain.ValidationError{}
		v.Add("body", "Malformed multipart body")
		return nil, v
	}

	var file *staged
	defer func() {
		if file != nil {
			if rmErr := os.Remove(file.path); rmErr != nil && !os.IsNotExist(rmErr) {
				slog.Warn("scratch file cleanup failed", "path", file.path, "error", rmErr)
			}
		}
	}()

	opts := Options{Format: "json"}
	for {
		part, perr := mr.NextPart()
		if perr == io.EOF {
			break
		}
		if perr != nil {
			return nil, r.readError(perr)
		}
		if part.FileName() == "" {
			value, ferr := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			_ = part.Close()
			if ferr != nil {
				return nil, r.readError(ferr)
			}
			opts.Set(part.FormName(), strings.TrimSpace(string(value)))
			continue
		}
		if file != nil {
			_, _ = io.Copy(io.Discard, part)
			_ = part.Close()
			continue
		}
		file, err = r.stage(part)
		_ = part.Close()
		if err != nil {
			return nil, err
		}
	}
	if file == nil {
		return nil, ErrNoFileUploaded
	}

	reply, err := r.uploader.Upload(ctx, file.path, file.filename, opts)
	if err != nil {
		return nil, err
	}

	if r.archiver != nil {
		key := "uploads/" + ownerID + "/" + file.name
		if aerr := r.archiver.Archive(ctx, key, file.path, file.ctype); aerr != nil {
			slog.WarnContext(ctx, "upload archive failed", "key", key, "error", aerr,
				"request_id", middleware.RequestIDFromContext(ctx))
		}
	}
	slog.InfoContext(ctx, "upload relayed", "owner_id", ownerID, "file", file.filename,
		"request_id", middleware.RequestIDFromContext(ctx))
	return &Result{Message: SuccessMessage, Response: reply}, nil
}

// stage copies part into a uniquely named scratch file. The file is removed
// again when the copy fails or exceeds the size cap.
func (r *Relay) stage(part *multipart.Part) (*staged, error) {
	filename := netutil.SafeFilename(part.FileName())
	name := fmt.Sprintf("%d-%s-%s", r.now().UnixMilli(), uuid.NewString()[:8], filename)
	path := filepath.Join(r.cfg.ScratchDir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create scratch file: %w", err)
	}
	s := &staged{path: path, name: name, filename: filename, ctype: partType(part, filename)}

	n, err := io.Copy(f, io.LimitReader(part, r.cfg.MaxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, r.readError(err)
	}
	if n > r.cfg.MaxBytes {
		_ = os.Remove(path)
		return nil, ErrFileTooLarge
	}
	return s, nil
}

func (r *Relay) readError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrFileTooLarge
	}
	return fmt.Errorf("read upload: %w", err)
}

func partType(part *multipart.Part, filename string) string {
	if ct := part.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			return mt
		}
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func outcome(err error) string {
	var ue *domain.UploadError
	switch {
	case errors.Is(err, ErrNoFileUploaded):
		return "no_file"
	case errors.Is(err, ErrFileTooLarge):
		return "too_large"
	case errors.As(err, &ue):
		return "upstream_error"
	default:
		return "failure"
	}
}
