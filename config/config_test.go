package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.SongDir != "songs" {
		t.Errorf("SongDir = %q, want songs", cfg.SongDir)
	}
	if cfg.DatabasePath != "songsync.db" {
		t.Errorf("DatabasePath = %q, want songsync.db", cfg.DatabasePath)
	}
	if !cfg.FixTxt {
		t.Error("FixTxt = false, want true")
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults returned error = %v, want nil", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SONGSYNC_SONG_DIR", "/tmp/songs")
	t.Setenv("SONGSYNC_DATABASE_PATH", "/tmp/index.db")
	t.Setenv("SONGSYNC_FIX_TXT", "false")
	t.Setenv("SONGSYNC_MAX_RETRIES", "2")
	t.Setenv("SONGSYNC_INITIAL_BACKOFF", "500ms")
	t.Setenv("SONGSYNC_MAX_BACKOFF", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error = %v, want nil", err)
	}
	if cfg.SongDir != "/tmp/songs" {
		t.Errorf("SongDir = %q, want /tmp/songs", cfg.SongDir)
	}
	if cfg.DatabasePath != "/tmp/index.db" {
		t.Errorf("DatabasePath = %q, want /tmp/index.db", cfg.DatabasePath)
	}
	if cfg.FixTxt {
		t.Error("FixTxt = true, want false")
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", cfg.MaxRetries)
	}
	if cfg.InitialBackoff != 500*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 500ms", cfg.InitialBackoff)
	}
	if cfg.MaxBackoff != 5*time.Second {
		t.Errorf("MaxBackoff = %v, want 5s", cfg.MaxBackoff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty song dir", func(c *Config) { c.SongDir = "" }},
		{"empty database path", func(c *Config) { c.DatabasePath = "" }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"zero initial backoff", func(c *Config) { c.InitialBackoff = 0 }},
		{"max below initial backoff", func(c *Config) { c.MaxBackoff = c.InitialBackoff / 2 }},
		{"multiplier not above one", func(c *Config) { c.BackoffMultiplier = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() returned nil error, want error")
			}
		})
	}
}
