package http

import (
	"net/http"

	"asafe-api/internal/authz"
	"asafe-api/internal/dto"
	"asafe-api/internal/httpx"
)

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.GetAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if users == nil {
		users = []dto.UserProjection{}
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := principal(r)
	if err == nil {
		err = authz.Check(p, authz.SelfOrAdmin(id))
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	user, err := h.accounts.GetOne(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if user == nil {
		h.writeMessageError(w, http.StatusNotFound, "User not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

func (h *handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := principal(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var patch dto.UpdateUserRequest
	if !h.decode(w, r, &patch) {
		return
	}
	user, err := h.accounts.Update(r.Context(), id, patch, p.ID, p.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

func (h *handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := principal(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.accounts.Delete(r.Context(), id, p.Role); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "User deleted successfully"})
}
