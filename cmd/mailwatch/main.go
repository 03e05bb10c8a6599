package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mailwatch/internal/config"
	"mailwatch/internal/logger"
	"mailwatch/internal/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	logger.Init(cfg.Server.LogLevel)

	log := logger.WithComponent("main")
	log.Info().
		Int("port", cfg.Server.Port).
		Str("log_path", cfg.Postfix.LogPath).
		Str("ai_provider", cfg.AI.Provider).
		Dur("token_expiry", cfg.Auth.TokenExpiry).
		Msg("mailwatch starting")

	srv := server.New(cfg)

	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("server exited")
			cancel()
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
		log.Info().Msg("shutting down")
		cancel()
	case <-ctx.Done():
	}

	// give graceful shutdown some time
	time.Sleep(500 * time.Millisecond)
	log.Info().Msg("exited")
}
