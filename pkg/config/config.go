// Package config loads client configuration from the environment, with a
// .env file picked up when present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is everything a binary needs to construct the client stack.
type Config struct {
	// APIBaseURL is the backend's base URL, scheme included.
	APIBaseURL string
	// APITimeout bounds each HTTP request.
	APITimeout time.Duration
	// AuthStrategy selects the auth store behavior: token, session or
	// policy.
	AuthStrategy string
	// AppNamespace isolates persisted credentials per application.
	AppNamespace string
	// CredentialDir is where the file credential store writes. Empty
	// keeps credentials in memory only.
	CredentialDir string
	// Locale selects the message catalog, e.g. "en" or "es".
	Locale string
	// LogLevel is the minimum log level name.
	LogLevel string
	// ElasticsearchURL, when set, ships logs to that cluster.
	ElasticsearchURL string
}

// Load reads configuration from the environment. A .env file in the
// current directory is loaded first when present; real environment
// variables win over file entries either way.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Msg("No .env file found, assuming environment variables are set")
	}

	return Config{
		APIBaseURL:       getEnvOrDefault("LUMINA_API_URL", "http://localhost:8080"),
		APITimeout:       getDurationOrDefault("LUMINA_API_TIMEOUT", 30*time.Second),
		AuthStrategy:     getEnvOrDefault("LUMINA_AUTH_STRATEGY", "token"),
		AppNamespace:     getEnvOrDefault("LUMINA_APP_NAMESPACE", "lumina"),
		CredentialDir:    os.Getenv("LUMINA_CREDENTIAL_DIR"),
		Locale:           getEnvOrDefault("LUMINA_LOCALE", "en"),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),
	}
}

// Helper function to get environment variable with default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Warn().Str("key", key).Str("value", raw).Msg("Unparseable duration, using default")
	return defaultValue
}
