// Package mailer sends transactional email through an HTTP JSON mail API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"time"

	"asafe-api/internal/observability/middleware"
)

const (
	SubjectVerification  = "Verify your email"
	SubjectPasswordReset = "Reset your password"
)

type Config struct {
	APIURL   string
	APIKey   string
	From     string
	FromName string
	Timeout  time.Duration
}

type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Message is the JSON payload accepted by the mail API.
type Message struct {
	From     Recipient   `json:"from"`
	To       []Recipient `json:"to"`
	Subject  string      `json:"subject"`
	HTML     string      `json:"html,omitempty"`
	Text     string      `json:"text,omitempty"`
	Category string      `json:"category,omitempty"`
}

type transport interface {
	send(ctx context.Context, msg Message) error
}

// Mailer renders messages and hands them to a transport.
type Mailer struct {
	from Recipient
	t    transport
}

// New returns a Mailer posting to cfg.APIURL, or one that only logs when no
// URL is configured.
func New(cfg Config) *Mailer {
	from := Recipient{Email: cfg.From, Name: cfg.FromName}
	if cfg.APIURL == "" {
		slog.Info("MAIL_API_URL not set, emails will be logged only")
		return &Mailer{from: from, t: logTransport{}}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Mailer{from: from, t: &httpTransport{
		url:    cfg.APIURL,
		apiKey: cfg.APIKey,
		hc:     &http.Client{Timeout: timeout},
	}}
}

func (m *Mailer) SendVerification(ctx context.Context, to, link string) error {
	return m.send(ctx, to, SubjectVerification, "email_verification",
		"Please verify your email by visiting: "+link,
		fmt.Sprintf(`<p>Please verify your email by clicking <a href="%s">here</a>.</p>`, html.EscapeString(link)))
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, link string) error {
	return m.send(ctx, to, SubjectPasswordReset, "password_reset",
		"Reset your password by visiting: "+link,
		fmt.Sprintf(`<p>Reset your password by clicking <a href="%s">here</a>.</p>`, html.EscapeString(link)))
}

func (m *Mailer) SendNotification(ctx context.Context, to, subject, message string) error {
	return m.send(ctx, to, subject, "notification", message, "<p>"+html.EscapeString(message)+"</p>")
}

func (m *Mailer) send(ctx context.Context, to, subject, category, text, htmlBody string) error {
	return m.t.send(ctx, Message{
		From:     m.from,
		To:       []Recipient{{Email: to}},
		Subject:  subject,
		HTML:     htmlBody,
		Text:     text,
		Category: category,
	})
}

type httpTransport struct {
	url    string
	apiKey string
	hc     *http.Client
}

func (t *httpTransport) send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := t.hc.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}
	return nil
}

type logTransport struct{}

func (logTransport) send(ctx context.Context, msg Message) error {
	to := ""
	if len(msg.To) > 0 {
		to = msg.To[0].Email
	}
	slog.InfoContext(ctx, "email (not sent)", "to", to, "subject", msg.Subject, "category", msg.Category,
		"request_id", middleware.RequestIDFromContext(ctx))
	return nil
}
