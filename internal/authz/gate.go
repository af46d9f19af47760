package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"asafe-api/internal/domain"
	"asafe-api/internal/jwtsigner"
	"asafe-api/internal/observability/metrics"
	obsmw "asafe-api/internal/observability/middleware"

	"github.com/google/uuid"
)

// Verifier decodes a bearer token into its claim.
type Verifier interface {
	Verify(token string) (jwtsigner.Claim, error)
}

// ErrorWriter renders a failure produced by the gate.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Gate authenticates bearer tokens and enforces role whitelists.
type Gate struct {
	verifier Verifier
	writeErr ErrorWriter
}

func NewGate(v Verifier, writeErr ErrorWriter) *Gate {
	if writeErr == nil {
		writeErr = plainError
	}
	return &Gate{verifier: v, writeErr: writeErr}
}

// Authenticate requires a valid "Authorization: Bearer <token>" header.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return g.guard(false, nil, next)
}

// AuthenticateUpgrade also accepts the token from the "token" query
// parameter, for websocket handshakes where browsers cannot set headers.
func (g *Gate) AuthenticateUpgrade(next http.Handler) http.Handler {
	return g.guard(true, nil, next)
}

// Authorize authenticates, then rejects callers whose role is not listed.
func (g *Gate) Authorize(roles ...domain.Role) func(http.Handler) http.Handler {
	policy := RoleIn(roles...)
	return func(next http.Handler) http.Handler {
		return g.guard(false, policy, next)
	}
}

func (g *Gate) guard(allowQuery bool, policy Policy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reqID := obsmw.RequestIDFromContext(ctx)
		traceID := obsmw.TraceIDFromContext(ctx)

		p, err := g.principal(r, allowQuery)
		if err == nil && policy != nil {
			err = policy(p)
		}
		if err != nil {
			result := decision(err)
			metrics.AuthorizationDecisionsTotal.WithLabelValues(result).Inc()
			slog.Warn("authorization rejected", "result", result, "path", r.URL.Path, "error", err, "request_id", reqID, "trace_id", traceID)
			g.writeErr(w, r, err)
			return
		}
		metrics.AuthorizationDecisionsTotal.WithLabelValues("allow").Inc()
		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, p)))
	})
}

func (g *Gate) principal(r *http.Request, allowQuery bool) (Principal, error) {
	raw, ok := bearer(r.Header.Get("Authorization"))
	if !ok && allowQuery {
		raw = strings.TrimSpace(r.URL.Query().Get("token"))
		ok = raw != ""
	}
	if !ok {
		return Principal{}, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthenticated)
	}
	claim, err := g.verifier.Verify(raw)
	if err != nil {
		if errors.Is(err, jwtsigner.ErrInvalidToken) {
			return Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
		}
		return Principal{}, fmt.Errorf("verify token: %w", err)
	}
	id, err := uuid.Parse(claim.ID)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: malformed subject", domain.ErrUnauthenticated)
	}
	return Principal{ID: id, Email: claim.Email, Role: claim.Role}, nil
}

func bearer(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}

func decision(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}

func plainError(w http.ResponseWriter, _ *http.Request, err error) {
	switch decision(err) {
	case "unauthenticated":
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
	case "forbidden":
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the identity attached by the gate.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
