package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("HISTORY_LIMIT", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("expected default openai model, got %s", cfg.OpenAIModel)
	}
	if cfg.HistoryLimit != 10 {
		t.Fatalf("expected default history limit 10, got %d", cfg.HistoryLimit)
	}
	if cfg.UnsplashBaseURL != "https://api.unsplash.com" {
		t.Fatalf("expected default unsplash base url, got %s", cfg.UnsplashBaseURL)
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Fatalf("expected default request timeout, got %s", cfg.RequestTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HISTORY_LIMIT", "25")
	t.Setenv("REQUEST_TIMEOUT", "90s")
	t.Setenv("REDIS_TLS", "true")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.HistoryLimit != 25 {
		t.Fatalf("expected history limit override, got %d", cfg.HistoryLimit)
	}
	if cfg.RequestTimeout != 90*time.Second {
		t.Fatalf("expected request timeout override, got %s", cfg.RequestTimeout)
	}
	if !cfg.RedisTLS {
		t.Fatal("expected redis tls enabled")
	}
}

func TestValidateReportsAllMissing(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for empty config")
	}
	for _, key := range []string{"DATABASE_URL", "TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_FROM_NUMBER", "OPENAI_API_KEY", "UNSPLASH_ACCESS_KEY"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected error to mention %s, got %v", key, err)
		}
	}
}

func TestValidatePassesWhenRequiredSet(t *testing.T) {
	cfg := &Config{
		DatabaseURL:       "postgres://localhost/chatrelay",
		TwilioAccountSID:  "AC123",
		TwilioAuthToken:   "token",
		TwilioFromNumber:  "whatsapp:+15550001111",
		OpenAIAPIKey:      "sk-test",
		UnsplashAccessKey: "unsplash-test",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
