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
	"net"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"asafe-api/internal/domain"
	"asafe-api/internal/observability/middleware"
)

const (
	DefaultTimeout = 2 * time.Minute
	apiKeyPrefix   = "chv_"
	maxReplyBytes  = 1 << 20
)

// Options are the optional fields forwarded to the image host.
type Options struct {
	Title       string
	Description string
	AlbumID     string
	CategoryID  string
	Width       string
	Expiration  string
	NSFW        string
	Format      string
}

// Set assigns a form field by its wire name and reports whether it is known.
func (o *Options) Set(name, value string) bool {
	switch name {
	case "title":
		o.Title = value
	case "description":
		o.Description = value
	case "album_id":
		o.AlbumID = value
	case "category_id":
		o.CategoryID = value
	case "width":
		o.Width = value
	case "expiration":
		o.Expiration = value
	case "nsfw":
		o.NSFW = value
	case "format":
		o.Format = value
	default:
		return false
	}
	return true
}

func (o Options) fields() [][2]string {
	all := [][2]string{
		{"title", o.Title},
		{"description", o.Description},
		{"album_id", o.AlbumID},
		{"category_id", o.CategoryID},
		{"width", o.Width},
		{"expiration", o.Expiration},
		{"nsfw", o.NSFW},
		{"format", o.Format},
	}
	out := all[:0]
	for _, f := range all {
		if f[1] != "" {
			out = append(out, f)
		}
	}
	return out
}

// hostReply is the envelope returned by the image host.
type hostReply struct {
	StatusCode int    `json:"status_code"`
	StatusTxt  string `json:"status_txt"`
	Error      *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client posts files to the image host API.
type Client struct {
	url    string
	apiKey string
	hc     *http.Client
}

func NewClient(url, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:    url,
		apiKey: apiKey,
		hc: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// Upload sends the file at path as the "source" part and returns the host's
// JSON reply. Failures are *domain.UploadError carrying the status to relay.
func (c *Client) Upload(ctx context.Context, path, filename string, opts Options) (json.RawMessage, error) {
	if !strings.HasPrefix(c.apiKey, apiKeyPrefix) {
		return nil, &domain.UploadError{
			Status:  http.StatusInternalServerError,
			Message: "API key configuration error. Please contact the administrator.",
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.UploadError{Status: http.StatusInternalServerError, Message: "Upload error", Err: err}
	}
	defer f.Close()

	pr, pw := io.Pipe()
	defer func() {
		_ = pr.Close()
	}()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(mw, f, filename, opts))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, pr)
	if err != nil {
		return nil, &domain.UploadError{Status: http.StatusInternalServerError, Message: "Request setup error", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if rid := middleware.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &domain.UploadError{Status: http.StatusGatewayTimeout, Message: "Upload to image host timed out", Err: err}
		}
		return nil, &domain.UploadError{Status: http.StatusInternalServerError, Message: "No response received from image host", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		if isTimeout(err) {
			return nil, &domain.UploadError{Status: http.StatusGatewayTimeout, Message: "Upload to image host timed out", Err: err}
		}
		return nil, &domain.UploadError{Status: http.StatusInternalServerError, Message: "Upload error", Err: err}
	}
	slog.InfoContext(ctx, "image host replied", "status", resp.StatusCode, "duration", time.Since(start),
		"request_id", middleware.RequestIDFromContext(ctx))

	var reply hostReply
	parseErr := json.Unmarshal(body, &reply)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		if parseErr == nil && reply.Error != nil && reply.Error.Message != "" {
			msg = reply.Error.Message
		}
		return nil, &domain.UploadError{Status: relayStatus(resp.StatusCode), Message: "Upload error: " + msg}
	}
	if parseErr != nil {
		return nil, &domain.UploadError{Status: http.StatusBadGateway, Message: "Invalid response from image host", Err: parseErr}
	}
	if reply.StatusCode != http.StatusOK {
		return nil, &domain.UploadError{Status: relayStatus(reply.StatusCode), Message: "Upload failed: " + reply.StatusTxt}
	}
	return json.RawMessage(body), nil
}

func writeForm(mw *multipart.Writer, f io.Reader, filename string, opts Options) error {
	ctype := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="source"; filename=%q`, filename))
	h.Set("Content-Type", ctype)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	for _, kv := range opts.fields() {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return mw.Close()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// relayStatus keeps client and server error codes and maps anything else to 502.
func relayStatus(code int) int {
	if code >= 400 && code <= 599 {
		return code
	}
	return http.StatusBadGateway
}
