package http

import (
	"net/http"

	"github.com/aussiebroadwan/bartab/internal/auth/service"
	"github.com/aussiebroadwan/bartab/pkg/httpx"
)

// VerifyTwoFactorHandler serves POST /verify-2fa.
type VerifyTwoFactorHandler struct {
	Login  *service.LoginService
	Tokens *service.TokenService
}

func (h *VerifyTwoFactorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyTwoFactorRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}

	token, err := h.Login.VerifyTwoFactor(r.Context(), req.Email, req.LoginAttemptID, req.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	http.SetCookie(w, h.Tokens.Cookie(token))
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Login successful"})
}
