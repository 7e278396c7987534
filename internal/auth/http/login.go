package http

import (
	"net/http"

	"github.com/aussiebroadwan/bartab/internal/auth/service"
	"github.com/aussiebroadwan/bartab/pkg/httpx"
)

// LoginHandler serves POST /login. Users without two-factor get the session
// cookie straight away (200); the rest get 206 with a login attempt id and
// an emailed code.
type LoginHandler struct {
	Login  *service.LoginService
	Tokens *service.TokenService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.Login.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if res.TwoFactorRequired() {
		httpx.WriteJSON(w, http.StatusPartialContent, TwoFactorResponse{
			Message:        "2FA required",
			LoginAttemptID: res.ChallengeID.String(),
		})
		return
	}

	http.SetCookie(w, h.Tokens.Cookie(res.Token))
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Login successful"})
}
