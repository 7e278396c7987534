package http

import (
	"net/http"

	"github.com/aussiebroadwan/bartab/internal/auth/service"
	"github.com/aussiebroadwan/bartab/pkg/httpx"
)

// SignupHandler serves POST /signup.
type SignupHandler struct {
	Users *service.UserService
}

func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.ErrInvalidRequest.WriteError(w)
		return
	}

	if _, err := h.Users.Signup(r.Context(), req.Email, req.Password, req.RequiresTwoFactor); err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, MessageResponse{Message: "User created successfully!"})
}
