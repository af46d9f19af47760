package http

import (
	"net/http"

	"asafe-api/internal/httpx"
)

// multipartOverhead leaves room for boundaries and option fields on top of
// the file size cap.
const multipartOverhead = 1 << 20

func (h *handler) upload(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.relay.MaxBytes()+multipartOverhead)

	res, err := h.relay.Handle(r.Context(), r, p.ID.String())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *handler) serveWS(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.realtime.ServeWS(w, r, p.ID)
}
