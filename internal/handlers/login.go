package handlers

import (
	"encoding/json"
	"net/http"

	"mailwatch/internal/auth"
	"mailwatch/internal/logger"
)

// LoginHandler exchanges dashboard credentials for a bearer token.
type LoginHandler struct {
	Auth *auth.Service
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Email and password are required."})
		return
	}

	log := logger.WithComponent("auth")

	token, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		log.Warn().Str("email", req.Email).Msg("failed login attempt")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	log.Info().Str("email", req.Email).Msg("user logged in")
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"token":   token,
	})
}
