// Package http exposes the account, post, notification and upload services
// over a chi router.
package http

import (
	"net/http"

	"asafe-api/internal/authz"
	"asafe-api/internal/domain"
	"asafe-api/internal/dto"
	"asafe-api/internal/httpx"
	"asafe-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type handler struct {
	accounts      service.AccountService
	posts         service.PostService
	notifications service.NotificationService
	relay         UploadRelay
	realtime      RealtimeServer
	reporter      ErrorReporter
}

func (h *handler) root(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Welcome to the a-safe API"})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (h *handler) notFound(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusNotFound, map[string]string{
		"error":   "Not Found",
		"message": "The requested resource does not exist. Please check the URL and try again.",
	})
}

func (h *handler) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	h.writeMessageError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

// principal returns the caller attached by the gate. Handlers behind the
// gate always have one; a miss is reported as unauthenticated.
func principal(r *http.Request) (authz.Principal, error) {
	p, ok := authz.PrincipalFrom(r.Context())
	if !ok {
		return authz.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return dto.ParseID("id", chi.URLParam(r, "id"))
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		h.writeError(w, r, err)
		return false
	}
	return true
}
