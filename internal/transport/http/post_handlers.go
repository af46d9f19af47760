package http

import (
	"net/http"

	"asafe-api/internal/domain"
	"asafe-api/internal/dto"
	"asafe-api/internal/httpx"
)

func (h *handler) createPost(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req dto.CreatePostRequest
	if !h.decode(w, r, &req) {
		return
	}
	post, err := h.posts.Create(r.Context(), p.ID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, post)
}

func (h *handler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	httpx.WriteJSON(w, http.StatusOK, posts)
}

func (h *handler) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if post == nil {
		h.writeError(w, r, domain.ErrPostNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, post)
}
