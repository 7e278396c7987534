package http

import (
	"net/http"

	"github.com/aussiebroadwan/bartab/internal/auth/service"
	"github.com/aussiebroadwan/bartab/pkg/httpx"
)

// VerifyTokenHandler serves POST /verify-token for other services that need
// to check a session token.
type VerifyTokenHandler struct {
	Tokens *service.TokenService
}

func (h *VerifyTokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyTokenRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Token == "" {
		httpx.ErrMissingToken.WriteError(w)
		return
	}

	if _, err := h.Tokens.Validate(r.Context(), req.Token); err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Token has been validated!"})
}
