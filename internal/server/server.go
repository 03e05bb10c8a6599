// Package server wires the log pipeline, auth, and HTTP API together
// and runs them until the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mailwatch/internal/ai"
	"mailwatch/internal/auth"
	"mailwatch/internal/config"
	"mailwatch/internal/forward"
	"mailwatch/internal/handlers"
	"mailwatch/internal/logger"
	"mailwatch/internal/logsource"
	"mailwatch/internal/middleware"
	"mailwatch/internal/store"
)

// Server is the high-level coordinator for the dashboard backend.
type Server struct {
	cfg        *config.Config
	store      *store.Store
	forwarder  *forward.Forwarder
	auth       *auth.Service
	httpServer *http.Server
	started    time.Time
	wg         sync.WaitGroup
}

// New constructs a Server with the given config.
func New(cfg *config.Config) *Server {
	return &Server{cfg: cfg, started: time.Now()}
}

// Run starts background goroutines and blocks until context cancelled.
func (s *Server) Run(ctx context.Context) error {
	log := logger.WithComponent("server")
	log.Info().Msg("server starting")

	s.initPipeline()
	s.forwarder.Start()
	defer s.forwarder.Stop()

	s.auth = auth.New(
		s.cfg.Auth.TokenSecret,
		s.cfg.Auth.TokenExpiry,
		s.cfg.Auth.DashboardUser,
		s.cfg.Auth.DashboardPassword,
	)

	s.initHTTPServer()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info().Str("addr", s.httpServer.Addr).Msg("starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.refreshLoop(ctx)
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	return s.shutdown()
}

// initPipeline builds the log reader, cache, and optional Kafka export.
func (s *Server) initPipeline() {
	log := logger.WithComponent("server")

	reader := logsource.New(s.cfg.Postfix.LogDir, s.cfg.Postfix.LogPrefix)
	s.store = store.New(reader, s.cfg.Postfix.LogPath)

	s.forwarder = forward.New(s.cfg.Forward)
	if s.forwarder != nil {
		s.store.OnRebuild(s.forwarder.Publish)
	}

	log.Info().
		Str("log_path", s.cfg.Postfix.LogPath).
		Str("config_path", s.cfg.Postfix.ConfigPath).
		Bool("forwarding", s.forwarder != nil).
		Msg("log pipeline initialized")
}

func (s *Server) initHTTPServer() {
	mux := http.NewServeMux()

	dashboard := handlers.NewDashboard(s.store)

	analyze := &handlers.AnalyzeHandler{
		Gemini:          ai.NewGemini(s.cfg.AI.Gemini.APIKey, s.cfg.AI.Gemini.Model, s.cfg.AI.Timeout),
		Ollama:          ai.NewOllama(s.cfg.AI.Ollama.BaseURL, s.cfg.AI.Ollama.Model, s.cfg.AI.Timeout),
		DefaultProvider: s.cfg.AI.Provider,
		MaxLogLines:     s.cfg.AI.MaxLogs,
	}

	mux.Handle("/api/login", s.public(&handlers.LoginHandler{Auth: s.auth}))

	mux.Handle("/api/logs", s.protected(http.HandlerFunc(dashboard.Logs)))
	mux.Handle("/api/stats", s.protected(http.HandlerFunc(dashboard.Stats)))
	mux.Handle("/api/volume-trends", s.protected(http.HandlerFunc(dashboard.VolumeTrends)))
	mux.Handle("/api/recent-activity", s.protected(http.HandlerFunc(dashboard.RecentActivity)))

	mux.Handle("/api/analytics/top-senders", s.protected(http.HandlerFunc(dashboard.TopSenders)))
	mux.Handle("/api/analytics/top-recipients", s.protected(http.HandlerFunc(dashboard.TopRecipients)))
	mux.Handle("/api/analytics/connected-ips", s.protected(http.HandlerFunc(dashboard.ConnectedIPs)))
	mux.Handle("/api/analytics/summary", s.protected(http.HandlerFunc(dashboard.Summary)))

	mux.Handle("/api/allowed-networks", s.protected(&handlers.NetworksHandler{
		ConfigPath: s.cfg.Postfix.ConfigPath,
	}))
	mux.Handle("/api/analyze-logs", s.protected(analyze))

	mux.Handle("/api/health", s.public(&handlers.HealthHandler{
		Started:       s.started,
		GeminiEnabled: analyze.Gemini.Configured(),
		OllamaURL:     s.cfg.AI.Ollama.BaseURL,
	}))

	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute, // AI analysis can run long
		IdleTimeout:  60 * time.Second,
	}
}

func (s *Server) public(h http.Handler) http.Handler {
	if s.cfg.Server.EnableRequestLogging {
		return middleware.Chain(h, middleware.Recovery, middleware.Logging)
	}
	return middleware.Chain(h, middleware.Recovery)
}

func (s *Server) protected(h http.Handler) http.Handler {
	if s.cfg.Server.EnableRequestLogging {
		return middleware.Chain(h, middleware.Recovery, middleware.Logging, middleware.Auth(s.auth))
	}
	return middleware.Chain(h, middleware.Recovery, middleware.Auth(s.auth))
}

// refreshLoop re-checks the log file periodically so the cache and the
// Kafka export stay current even when no dashboard is open.
func (s *Server) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			txs := s.store.Get()
			log := logger.WithComponent("server")
			log.Debug().
				Int("transactions", len(txs)).
				Msg("cache refresh tick")
		}
	}
}

func (s *Server) shutdown() error {
	log := logger.WithComponent("server")
	log.Info().Msg("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("stopping HTTP server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	s.wg.Wait()

	log.Info().Msg("server stopped gracefully")
	return nil
}
