package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the full runtime configuration, loaded from the
// environment with an optional .env file.
type Config struct {
	Server  ServerConfig
	Postfix PostfixConfig
	Auth    AuthConfig
	AI      AIConfig
	Forward ForwardConfig
}

type ServerConfig struct {
	Port                 int
	LogLevel             string
	EnableRequestLogging bool
}

// PostfixConfig locates the mail log and the Postfix main.cf. LogDir and
// LogPrefix are derived from LogPath and select which rotated siblings
// (mail.log.1, mail.log.2.gz, ...) belong to the same log stream.
type PostfixConfig struct {
	LogPath    string
	ConfigPath string
	LogDir     string
	LogPrefix  string
}

type AuthConfig struct {
	TokenSecret       string
	TokenExpiry       time.Duration
	DashboardUser     string
	DashboardPassword string
}

type AIConfig struct {
	Provider string
	Gemini   GeminiConfig
	Ollama   OllamaConfig
	MaxLogs  int
	Timeout  time.Duration
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

// ForwardConfig configures the optional Kafka delivery event export.
// Forwarding is disabled when Brokers is empty.
type ForwardConfig struct {
	Brokers      []string
	Topic        string
	QueueSize    int
	BatchSize    int
	BatchTimeout time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in when present.
func Load() *Config {
	_ = godotenv.Load()

	logPath := envStr("POSTFIX_LOG_PATH", "/var/log/mail.log")

	cfg := &Config{
		Server: ServerConfig{
			Port:                 envInt("PORT", 3001),
			LogLevel:             envStr("LOG_LEVEL", "info"),
			EnableRequestLogging: envBool("ENABLE_REQUEST_LOGGING", false),
		},
		Postfix: PostfixConfig{
			LogPath:    logPath,
			ConfigPath: envStr("POSTFIX_CONFIG_PATH", "/etc/postfix/main.cf"),
			LogDir:     filepath.Dir(logPath),
			LogPrefix:  filepath.Base(logPath),
		},
		Auth: AuthConfig{
			TokenSecret:       envStr("TOKEN_SECRET", ""),
			TokenExpiry:       time.Duration(envInt("TOKEN_EXPIRY_HOURS", 24)) * time.Hour,
			DashboardUser:     os.Getenv("DASHBOARD_USER"),
			DashboardPassword: os.Getenv("DASHBOARD_PASSWORD"),
		},
		AI: AIConfig{
			Provider: envStr("AI_PROVIDER", "ollama"),
			Gemini: GeminiConfig{
				APIKey: envStr("GEMINI_API_KEY", os.Getenv("API_KEY")),
				Model:  envStr("GEMINI_MODEL", "gemini-2.0-flash-exp"),
			},
			Ollama: OllamaConfig{
				BaseURL: envStr("OLLAMA_API_BASE_URL", "http://localhost:11434"),
				Model:   envStr("OLLAMA_MODEL", "llama3.2:latest"),
			},
			MaxLogs: envInt("AI_ANALYSIS_MAX_LOGS", 200),
			Timeout: time.Duration(envInt("AI_ANALYSIS_TIMEOUT", 60000)) * time.Millisecond,
		},
		Forward: ForwardConfig{
			Brokers:      envList("KAFKA_BROKERS"),
			Topic:        envStr("KAFKA_TOPIC", "mailwatch.deliveries"),
			QueueSize:    envInt("KAFKA_QUEUE_SIZE", 1000),
			BatchSize:    envInt("KAFKA_BATCH_SIZE", 100),
			BatchTimeout: time.Duration(envInt("KAFKA_BATCH_TIMEOUT_MS", 200)) * time.Millisecond,
		},
	}

	// Tokens signed with an ephemeral secret do not survive a restart;
	// acceptable for a single-instance dashboard.
	if cfg.Auth.TokenSecret == "" {
		cfg.Auth.TokenSecret = randomSecret()
	}

	return cfg
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "true" || v == "1"
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
