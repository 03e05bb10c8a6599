package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"mailwatch/internal/ai"
	"mailwatch/internal/logger"
	"mailwatch/internal/metrics"
)

// AnalyzeHandler runs a batch of raw log lines through an AI provider
// and returns the structured analysis.
type AnalyzeHandler struct {
	Gemini          *ai.Gemini
	Ollama          *ai.Ollama
	DefaultProvider string
	MaxLogLines     int
}

type analyzeRequest struct {
	Logs      string `json:"logs"`
	Provider  string `json:"provider"`
	OllamaURL string `json:"ollamaUrl"`
}

func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 10<<20) // raw log batches can be large

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Logs == "" {
		writeError(w, http.StatusBadRequest, "Log data is required.")
		return
	}

	provider := req.Provider
	if provider == "" {
		provider = h.DefaultProvider
	}

	var analyzer ai.Analyzer
	switch provider {
	case "gemini":
		if h.Gemini == nil || !h.Gemini.Configured() {
			writeError(w, http.StatusBadRequest,
				"Gemini API key is not configured on the server. Please set GEMINI_API_KEY in the .env file.")
			return
		}
		analyzer = h.Gemini
	case "ollama":
		analyzer = h.Ollama.WithBaseURL(req.OllamaURL)
	default:
		writeError(w, http.StatusBadRequest, "Unknown AI provider: "+provider)
		return
	}

	logs := capLines(req.Logs, h.MaxLogLines)
	log := logger.WithComponent("analyze")
	log.Info().Str("provider", analyzer.Name()).Int("bytes", len(logs)).Msg("starting log analysis")

	analysis, err := analyzer.Analyze(r.Context(), logs)
	if err != nil {
		metrics.AnalysisRequests.WithLabelValues(analyzer.Name(), "failed").Inc()
		log.Error().Err(err).Str("provider", analyzer.Name()).Msg("log analysis failed")
		writeError(w, http.StatusInternalServerError, "Failed to analyze logs: "+err.Error())
		return
	}

	metrics.AnalysisRequests.WithLabelValues(analyzer.Name(), "success").Inc()
	writeJSON(w, http.StatusOK, analysis)
}

// capLines keeps the newest max lines of the submitted batch. Providers
// have context limits and the tail of the log is the interesting part.
func capLines(logs string, max int) string {
	if max <= 0 {
		return logs
	}
	lines := strings.Split(strings.TrimRight(logs, "\n"), "\n")
	if len(lines) <= max {
		return logs
	}
	return strings.Join(lines[len(lines)-max:], "\n")
}
