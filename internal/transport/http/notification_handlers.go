package http

import (
	"net/http"
	"strconv"

	"asafe-api/internal/domain"
	"asafe-api/internal/dto"
	"asafe-api/internal/httpx"
)

func (h *handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	v := &domain.ValidationError{}
	page := queryInt(r, "page", 1, v)
	size := queryInt(r, "pageSize", dto.DefaultPageSize, v)
	if err := v.Err(); err != nil {
		h.writeError(w, r, err)
		return
	}
	page, size = dto.NormalizePage(page, size)

	items, err := h.notifications.ListForUser(r.Context(), p.ID, page, size)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Notification{}
	}
	httpx.WriteJSON(w, http.StatusOK, dto.NotificationPage{Page: page, PageSize: size, Notifications: items})
}

func (h *handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.notifications.MarkRead(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Notification marked as read"})
}

func (h *handler) deleteNotification(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.notifications.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Notification deleted"})
}

func (h *handler) setNotificationPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req dto.PreferencesRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.notifications.SetEmailPreference(r.Context(), p.ID, *req.EmailEnabled); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"emailEnabled": *req.EmailEnabled})
}

// notify sends a directed notification when userId is present and a
// broadcast otherwise.
func (h *handler) notify(w http.ResponseWriter, r *http.Request) {
	var req dto.NotifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}

	var (
		n   *domain.Notification
		err error
	)
	if req.UserID != nil {
		id, perr := dto.ParseID("userId", *req.UserID)
		if perr != nil {
			h.writeError(w, r, perr)
			return
		}
		n, err = h.notifications.NotifyUser(r.Context(), id, req.Message, req.Email)
	} else {
		n, err = h.notifications.NotifyAll(r.Context(), req.Message, req.Email)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusAccepted, n)
}

func queryInt(r *http.Request, key string, def int, v *domain.ValidationError) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.Add(key, "Expected an integer")
		return def
	}
	return n
}
