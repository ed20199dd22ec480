package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	if p.GraceWindow != 3*time.Hour {
		t.Errorf("GraceWindow = %v, want 3h", p.GraceWindow)
	}
	if p.CalendarRetention != 24*time.Hour {
		t.Errorf("CalendarRetention = %v, want 24h", p.CalendarRetention)
	}
	if p.HorizonMonths != 1 {
		t.Errorf("HorizonMonths = %d, want 1", p.HorizonMonths)
	}
	if p.EnrichBatchSize != 50 {
		t.Errorf("EnrichBatchSize = %d, want 50", p.EnrichBatchSize)
	}
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creatorwatch.yaml")
	yaml := `
youtube_api_key: file-key
twitch_client_id: file-id
policy:
  grace_window: 2h
`
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CREATORWATCH_CONFIG", path)
	t.Setenv("YOUTUBE_API_KEY", "env-key")
	t.Setenv("TWITCH_CLIENT_ID", "")
	t.Setenv("TWITCH_CLIENT_SECRET", "")
	t.Setenv("CREATORWATCH_GRACE_WINDOW", "")
	t.Setenv("CREATORWATCH_CALENDAR_RETENTION", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Env wins over file.
	if cfg.YouTubeAPIKey != "env-key" {
		t.Errorf("YouTubeAPIKey = %q, want env-key", cfg.YouTubeAPIKey)
	}
	// File wins over default.
	if cfg.TwitchClientID != "file-id" {
		t.Errorf("TwitchClientID = %q, want file-id", cfg.TwitchClientID)
	}
	if cfg.Policy.GraceWindow != 2*time.Hour {
		t.Errorf("GraceWindow = %v, want 2h", cfg.Policy.GraceWindow)
	}
	// Untouched policy fields keep defaults.
	if cfg.Policy.EnrichBatchSize != 50 {
		t.Errorf("EnrichBatchSize = %d, want 50", cfg.Policy.EnrichBatchSize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"negative grace window", func(c *Config) { c.Policy.GraceWindow = -time.Hour }, true},
		{"zero horizon", func(c *Config) { c.Policy.HorizonMonths = 0 }, true},
		{"batch size over API limit", func(c *Config) { c.Policy.EnrichBatchSize = 51 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
