package http

import (
	"net/http"
)

func (h *Handler) passwordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "password_reset_request", err)
		return
	}
	// The token is delivered out of band; the response never reveals
	// whether the email exists.
	if _, err := h.service.RequestPasswordReset(r.Context(), req.Email, clientMeta(r)); err != nil {
		writeMappedError(r.Context(), w, "password_reset_request", err)
		return
	}
	writeMessage(w, http.StatusOK, "If the email exists, a password reset link has been sent")
}

func (h *Handler) passwordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "password_reset", err)
		return
	}
	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword, clientMeta(r)); err != nil {
		writeMappedError(r.Context(), w, "password_reset", err)
		return
	}
	writeMessage(w, http.StatusOK, "Password reset successful. You can now login with your new password.")
}
