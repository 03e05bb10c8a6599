package handlers

import (
	"net/http"
	"time"
)

// HealthHandler reports liveness and which AI providers are usable.
// Served without authentication.
type HealthHandler struct {
	Started       time.Time
	GeminiEnabled bool
	OllamaURL     string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.Started).Seconds(),
		"ai": map[string]any{
			"gemini": h.GeminiEnabled,
			"ollama": h.OllamaURL,
		},
	})
}
