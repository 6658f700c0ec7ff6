package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.APIBaseURL != "http://localhost:8080" {
		t.Errorf("APIBaseURL = %s", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 30*time.Second {
		t.Errorf("APITimeout = %s", cfg.APITimeout)
	}
	if cfg.AuthStrategy != "token" {
		t.Errorf("AuthStrategy = %s", cfg.AuthStrategy)
	}
	if cfg.AppNamespace != "lumina" {
		t.Errorf("AppNamespace = %s", cfg.AppNamespace)
	}
	if cfg.Locale != "en" {
		t.Errorf("Locale = %s", cfg.Locale)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s", cfg.LogLevel)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("LUMINA_API_URL", "https://ehr.example.org")
	t.Setenv("LUMINA_AUTH_STRATEGY", "policy")
	t.Setenv("LUMINA_LOCALE", "es")

	cfg := Load()
	if cfg.APIBaseURL != "https://ehr.example.org" {
		t.Errorf("APIBaseURL = %s", cfg.APIBaseURL)
	}
	if cfg.AuthStrategy != "policy" {
		t.Errorf("AuthStrategy = %s", cfg.AuthStrategy)
	}
	if cfg.Locale != "es" {
		t.Errorf("Locale = %s", cfg.Locale)
	}
}

func TestDurationParsing(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"go syntax", "45s", 45 * time.Second},
		{"bare seconds", "10", 10 * time.Second},
		{"garbage falls back", "soon", 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LUMINA_API_TIMEOUT", tt.value)
			if got := Load().APITimeout; got != tt.want {
				t.Errorf("APITimeout = %s, want %s", got, tt.want)
			}
		})
	}
}
