package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"luminahealth.io/client-go/internal/metrics"
	"luminahealth.io/client-go/internal/mockehr"
	"luminahealth.io/client-go/pkg/config"
	"luminahealth.io/client-go/pkg/logging"
)

func main() {
	cfg := config.Load()

	if err := logging.Setup(logging.Options{
		App:              "mockehr",
		Level:            cfg.LogLevel,
		ElasticsearchURL: cfg.ElasticsearchURL,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logging")
	}

	log.Info().Msg("Starting mockehr service")

	metrics.StartSystemMetrics(30 * time.Second)

	port := getEnvOrDefault("MOCKEHR_PORT", "8080")
	server := mockehr.NewServer(os.Getenv("MOCKEHR_SIGNING_SECRET"))

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: server.Routes(),
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().
		Str("port", port).
		Msg("Server starting")

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().
			Err(err).
			Msg("Failed to start server")
	}

	log.Info().Msg("mockehr stopped")
}

// Helper function to get environment variable with default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
