package http

import (
	"net/http"

	"github.com/aussiebroadwan/bartab/internal/auth/service"
	"github.com/aussiebroadwan/bartab/pkg/httpx"
)

// LogoutHandler serves POST /logout. The token comes from the session cookie;
// a missing cookie is a 400, an unusable token a 401.
type LogoutHandler struct {
	Login  *service.LoginService
	Tokens *service.TokenService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := h.Tokens.TokenFromRequest(r)
	if token == "" {
		httpx.ErrMissingToken.WriteError(w)
		return
	}

	if err := h.Login.Logout(r.Context(), token); err != nil {
		writeServiceError(w, err)
		return
	}

	http.SetCookie(w, h.Tokens.ClearCookie())
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}
