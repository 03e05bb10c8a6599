package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"mailwatch/internal/logger"
	"mailwatch/internal/postconf"
)

// NetworksHandler reads and updates the mynetworks directive in the
// Postfix main.cf.
type NetworksHandler struct {
	ConfigPath string
}

func (h *NetworksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost:
		h.post(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *NetworksHandler) get(w http.ResponseWriter, _ *http.Request) {
	networks, err := postconf.ReadAllowedNetworks(h.ConfigPath)
	if err != nil {
		log := logger.WithComponent("networks")
		log.Error().Err(err).Str("file", h.ConfigPath).Msg("cannot read postfix config")
		writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("Could not read Postfix config file at %s", h.ConfigPath))
		return
	}
	writeJSON(w, http.StatusOK, networks)
}

type networksRequest struct {
	Networks []string `json:"networks"`
}

func (h *NetworksHandler) post(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	var req networksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Networks == nil {
		writeError(w, http.StatusBadRequest, "Networks must be an array")
		return
	}

	log := logger.WithComponent("networks")

	written, err := postconf.WriteAllowedNetworks(h.ConfigPath, req.Networks)
	switch {
	case errors.Is(err, postconf.ErrNoValidNetworks):
		writeError(w, http.StatusBadRequest, "No valid networks provided")
		return
	case errors.Is(err, os.ErrPermission):
		log.Error().Err(err).Str("file", h.ConfigPath).Msg("permission denied writing postfix config")
		writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("Permission denied. The server needs write access to %s", h.ConfigPath))
		return
	case errors.Is(err, os.ErrNotExist):
		writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("Postfix config file not found at %s", h.ConfigPath))
		return
	case err != nil:
		log.Error().Err(err).Str("file", h.ConfigPath).Msg("cannot update postfix config")
		writeError(w, http.StatusInternalServerError, "Failed to update allowed networks")
		return
	}

	log.Info().Strs("networks", written).Msg("mynetworks updated")
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Allowed networks updated successfully. Reload Postfix to apply changes.",
		"networks": written,
	})
}
