package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "storage:\n  path: /tmp/test.db\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Path != "/tmp/test.db" {
		t.Errorf("Storage.Path = %s", cfg.Storage.Path)
	}
	if cfg.Defaults.Country != "US" {
		t.Errorf("Defaults.Country = %s, want US default", cfg.Defaults.Country)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("Server.ListenAddr = %s, want :8080 default", cfg.Server.ListenAddr)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %s, want info default", cfg.Log.Level)
	}
	if got := cfg.Holiday.GetCacheTTL(); got != 24*time.Hour {
		t.Errorf("GetCacheTTL() = %v, want 24h default", got)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
storage:
  path: /var/lib/office-tracker/data.db
holiday:
  base_url: http://localhost:9999
  cache_ttl: 1h
defaults:
  country: DE
  state: DE-BY
  timezone: Europe/Berlin
seed:
  preset_owner: rachel
server:
  listen_addr: 127.0.0.1:9090
log:
  file: /var/log/office-tracker.log
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Holiday.BaseURL != "http://localhost:9999" {
		t.Errorf("Holiday.BaseURL = %s", cfg.Holiday.BaseURL)
	}
	if got := cfg.Holiday.GetCacheTTL(); got != time.Hour {
		t.Errorf("GetCacheTTL() = %v, want 1h", got)
	}
	if cfg.Defaults.Country != "DE" || cfg.Defaults.State != "DE-BY" {
		t.Errorf("Defaults = %+v", cfg.Defaults)
	}
	if cfg.Seed.PresetOwner != "rachel" {
		t.Errorf("Seed.PresetOwner = %s", cfg.Seed.PresetOwner)
	}
	if cfg.Server.ListenAddr != "127.0.0.1:9090" {
		t.Errorf("Server.ListenAddr = %s", cfg.Server.ListenAddr)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s", cfg.Log.Level)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() with no config file: error = %v", err)
	}
	if cfg.Storage.Path != "office-tracker.db" {
		t.Errorf("Storage.Path = %s, want packaged default", cfg.Storage.Path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing storage path",
			mutate:  func(c *Config) { c.Storage.Path = "" },
			wantErr: true,
		},
		{
			name:    "missing country",
			mutate:  func(c *Config) { c.Defaults.Country = "" },
			wantErr: true,
		},
		{
			name: "missing country tolerated when holidays disabled",
			mutate: func(c *Config) {
				c.Defaults.Country = ""
				c.Holiday.Disabled = true
			},
		},
		{
			name:    "missing listen addr",
			mutate:  func(c *Config) { c.Server.ListenAddr = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Storage:  StorageConfig{Path: "test.db"},
				Defaults: DefaultsConfig{Country: "US"},
				Server:   ServerConfig{ListenAddr: ":8080"},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetCacheTTLMalformed(t *testing.T) {
	c := HolidayConfig{CacheTTL: "not-a-duration"}
	if got := c.GetCacheTTL(); got != 24*time.Hour {
		t.Errorf("GetCacheTTL() = %v, want 24h fallback", got)
	}
}
