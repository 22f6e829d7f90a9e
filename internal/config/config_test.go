package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("expected development environment, got %q", cfg.Environment)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Server.Port)
	}
	if cfg.RateLimit.RequestsPerMinute != 60 {
		t.Errorf("expected rate limit 60, got %d", cfg.RateLimit.RequestsPerMinute)
	}
	if cfg.Provincial.HeartbeatInterval != 300*time.Second {
		t.Errorf("expected 300s heartbeat, got %s", cfg.Provincial.HeartbeatInterval)
	}
	if cfg.Provincial.Token != "" {
		t.Errorf("sync must be disabled by default, got token %q", cfg.Provincial.Token)
	}
	if cfg.Retention.AuditWindow != 90*24*time.Hour {
		t.Errorf("expected 90-day audit retention, got %s", cfg.Retention.AuditWindow)
	}
	if cfg.Notify.PubSubTopic != "carbon-alerts" {
		t.Errorf("expected default alert topic, got %q", cfg.Notify.PubSubTopic)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("API_RATE_LIMIT", "240")
	t.Setenv("PROVINCIAL_TOKEN", "prov-token-abc")
	t.Setenv("SYNC_FLUSH_INTERVAL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Environment != "production" {
		t.Errorf("expected production environment, got %q", cfg.Environment)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected db.internal host, got %q", cfg.Database.Host)
	}
	if cfg.RateLimit.RequestsPerMinute != 240 {
		t.Errorf("expected rate limit 240, got %d", cfg.RateLimit.RequestsPerMinute)
	}
	if cfg.Provincial.Token != "prov-token-abc" {
		t.Errorf("expected provincial token override, got %q", cfg.Provincial.Token)
	}
	if cfg.Provincial.FlushInterval != 30*time.Second {
		t.Errorf("expected 30s flush interval, got %s", cfg.Provincial.FlushInterval)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero rate limit", "API_RATE_LIMIT", "0"},
		{"negative buffer", "DATA_BUFFER_SIZE", "-1"},
		{"zero error threshold", "SYNC_ERROR_THRESHOLD", "0"},
		{"unparsable duration", "HEARTBEAT_INTERVAL", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected %s=%s to fail", tt.key, tt.value)
			}
		})
	}
}
