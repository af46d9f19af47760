package http

import (
	"net/http"

	"asafe-api/internal/dto"
	"asafe-api/internal/httpx"

	"github.com/go-chi/chi/v5"
)

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, user)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !res.OK() {
		h.writeMessageError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.accounts.ResetPassword(r.Context(), req.Email); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Password reset email sent"})
}

func (h *handler) confirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmResetRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	ok, err := h.accounts.ConfirmPasswordReset(r.Context(), req.Token, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !ok {
		h.writeMessageError(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Password has been reset"})
}

func (h *handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	token, err := dto.ParseID("token", chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok, err := h.accounts.VerifyEmail(r.Context(), token.String())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !ok {
		h.writeMessageError(w, http.StatusBadRequest, "Invalid or expired verification token")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Email verified successfully"})
}
