package http

import (
	"context"
	"net/http"
	"time"

	"asafe-api/internal/authz"
	"asafe-api/internal/domain"
	"asafe-api/internal/httpx"
	obsmw "asafe-api/internal/observability/middleware"
	"asafe-api/internal/service"
	"asafe-api/internal/upload"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DefaultRequestTimeout = 30 * time.Second

// UploadRelay stages and forwards a multipart upload.
type UploadRelay interface {
	Handle(ctx context.Context, r *http.Request, ownerID string) (*upload.Result, error)
	MaxBytes() int64
}

// RealtimeServer upgrades a request to a websocket joined to the user's room.
type RealtimeServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID domain.UserID)
}

type ErrorReporter interface {
	Capture(ctx context.Context, err error, tags map[string]string)
}

type Config struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
	RequestTimeout     time.Duration
}

type Deps struct {
	Accounts      service.AccountService
	Posts         service.PostService
	Notifications service.NotificationService
	Relay         UploadRelay
	Realtime      RealtimeServer
	Verifier      authz.Verifier
	Reporter      ErrorReporter
	// Metrics defaults to the default prometheus registry handler.
	Metrics http.Handler
}

func NewRouter(cfg Config, d Deps) http.Handler {
	h := &handler{
		accounts:      d.Accounts,
		posts:         d.Posts,
		notifications: d.Notifications,
		relay:         d.Relay,
		realtime:      d.Realtime,
		reporter:      d.Reporter,
	}
	gate := authz.NewGate(d.Verifier, h.writeError)

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	metricsHandler := d.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(chimw.Recoverer)
	r.Use(httpx.SecureHeaders)
	if origins := originsIfSet(cfg.AllowedOrigins); len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id", "X-Trace-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	}
	r.Use(obsmw.WithMetrics)
	// Uploads and websockets carry their own deadlines.
	r.Use(httpx.Except(chimw.Timeout(timeout), "/upload", "/ws"))

	r.NotFound(h.notFound)
	r.MethodNotAllowed(h.methodNotAllowed)

	r.Get("/", h.root)
	r.Get("/health", h.health)
	r.Handle("/metrics", metricsHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/reset-password", h.resetPassword)
		r.Post("/reset-password/confirm", h.confirmPasswordReset)
		r.Get("/verify-email/{token}", h.verifyEmail)
		r.Route("/users", h.userRoutes(gate))
	})
	r.Route("/users", h.userRoutes(gate))

	r.Group(func(r chi.Router) {
		r.Use(gate.Authenticate)

		r.Route("/posts", func(r chi.Router) {
			r.Post("/", h.createPost)
			r.Get("/", h.listPosts)
			r.Get("/{id}", h.getPost)
		})

		r.Post("/upload", h.upload)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.With(gate.Authorize(domain.RoleAdmin)).Post("/", h.notify)
		r.Group(func(r chi.Router) {
			r.Use(gate.Authenticate)
			r.Get("/", h.listNotifications)
			r.Put("/preferences", h.setNotificationPreferences)
			r.Patch("/{id}/read", h.markNotificationRead)
			r.Delete("/{id}", h.deleteNotification)
		})
	})

	r.With(gate.AuthenticateUpgrade).Get("/ws", h.serveWS)

	return r
}

func (h *handler) userRoutes(gate *authz.Gate) func(chi.Router) {
	return func(r chi.Router) {
		r.With(gate.Authorize(domain.RoleAdmin)).Get("/", h.listUsers)
		r.Group(func(r chi.Router) {
			r.Use(gate.Authorize(domain.RoleUser, domain.RoleAdmin))
			r.Get("/{id}", h.getUser)
			r.Put("/{id}", h.updateUser)
		})
		r.With(gate.Authorize(domain.RoleAdmin)).Delete("/{id}", h.deleteUser)
	}
}

// originsIfSet drops blank entries. An empty result leaves CORS unmounted,
// so browsers only reach the API from its own origin.
func originsIfSet(in []string) []string {
	out := []string{}
	for _, o := range in {
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
