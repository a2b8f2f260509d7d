package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Root != "data" {
		t.Errorf("Store.Root = %q, want %q", cfg.Store.Root, "data")
	}
	if cfg.Store.MaxChunkSize != 4*1024*1024 {
		t.Errorf("Store.MaxChunkSize = %d, want %d", cfg.Store.MaxChunkSize, 4*1024*1024)
	}
	if cfg.Store.Format != "json" {
		t.Errorf("Store.Format = %q, want %q", cfg.Store.Format, "json")
	}
	if cfg.Updater.FreshnessWindow != 24*time.Hour {
		t.Errorf("Updater.FreshnessWindow = %v, want 24h", cfg.Updater.FreshnessWindow)
	}
	if cfg.Updater.AdapterTimeout != 5*time.Minute {
		t.Errorf("Updater.AdapterTimeout = %v, want 5m", cfg.Updater.AdapterTimeout)
	}
	if cfg.Updater.Concurrency != 4 {
		t.Errorf("Updater.Concurrency = %d, want 4", cfg.Updater.Concurrency)
	}
	if !cfg.Scheduler.Enabled {
		t.Error("Scheduler.Enabled should default to true")
	}
	if cfg.Scheduler.Hour != 18 || cfg.Scheduler.Minute != 0 {
		t.Errorf("Scheduler time = %d:%d, want 18:0", cfg.Scheduler.Hour, cfg.Scheduler.Minute)
	}
	if cfg.Scheduler.Timezone != "America/New_York" {
		t.Errorf("Scheduler.Timezone = %q, want America/New_York", cfg.Scheduler.Timezone)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Crawler.RequestTimeout != 30*time.Second {
		t.Errorf("Crawler.RequestTimeout = %v, want 30s", cfg.Crawler.RequestTimeout)
	}
	if len(cfg.Crawler.Sources) != 0 {
		t.Errorf("Crawler.Sources = %v, want empty", cfg.Crawler.Sources)
	}
	if cfg.Alerting.Enabled {
		t.Error("Alerting.Enabled should default to false")
	}
	if cfg.Alerting.Telegram.Timeout != 10*time.Second {
		t.Errorf("Alerting.Telegram.Timeout = %v, want 10s", cfg.Alerting.Telegram.Timeout)
	}
	if cfg.Export.TopYields != 10 {
		t.Errorf("Export.TopYields = %d, want 10", cfg.Export.TopYields)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %q/%q, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadFromFile(t *testing.T) {
	yaml := `
store:
  root: /var/lib/etfwatcher
  max_chunk_size: 1048576
  format: msgpack
updater:
  freshness_window: 1h
scheduler:
  hour: 6
  minute: 30
  timezone: UTC
crawler:
  sources: [ishares, vanguard]
export:
  top_yields: 5
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Root != "/var/lib/etfwatcher" {
		t.Errorf("Store.Root = %q", cfg.Store.Root)
	}
	if cfg.Store.MaxChunkSize != 1048576 {
		t.Errorf("Store.MaxChunkSize = %d, want 1048576", cfg.Store.MaxChunkSize)
	}
	if cfg.Store.Format != "msgpack" {
		t.Errorf("Store.Format = %q, want msgpack", cfg.Store.Format)
	}
	if cfg.Updater.FreshnessWindow != time.Hour {
		t.Errorf("Updater.FreshnessWindow = %v, want 1h", cfg.Updater.FreshnessWindow)
	}
	if cfg.Scheduler.Hour != 6 || cfg.Scheduler.Minute != 30 {
		t.Errorf("Scheduler time = %d:%d, want 6:30", cfg.Scheduler.Hour, cfg.Scheduler.Minute)
	}
	if cfg.Scheduler.Timezone != "UTC" {
		t.Errorf("Scheduler.Timezone = %q, want UTC", cfg.Scheduler.Timezone)
	}
	if len(cfg.Crawler.Sources) != 2 || cfg.Crawler.Sources[0] != "ishares" {
		t.Errorf("Crawler.Sources = %v", cfg.Crawler.Sources)
	}
	if cfg.Export.TopYields != 5 {
		t.Errorf("Export.TopYields = %d, want 5", cfg.Export.TopYields)
	}
	// Unspecified sections keep their defaults.
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want default :8080", cfg.Server.Addr)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ETFWATCHER_STORE_ROOT", "/tmp/lake")
	t.Setenv("ETFWATCHER_SCHEDULER_HOUR", "6")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Root != "/tmp/lake" {
		t.Errorf("Store.Root = %q, want /tmp/lake", cfg.Store.Root)
	}
	if cfg.Scheduler.Hour != 6 {
		t.Errorf("Scheduler.Hour = %d, want 6", cfg.Scheduler.Hour)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("explicit config path that does not exist should error")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "empty store root",
			mutate:  func(c *Config) { c.Store.Root = "" },
			wantErr: "store.root must be set",
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.Store.MaxChunkSize = 0 },
			wantErr: "store.max_chunk_size must be greater than zero",
		},
		{
			name:    "unknown format",
			mutate:  func(c *Config) { c.Store.Format = "parquet" },
			wantErr: `store.format must be json or msgpack, got "parquet"`,
		},
		{
			name:    "zero freshness window",
			mutate:  func(c *Config) { c.Updater.FreshnessWindow = 0 },
			wantErr: "updater.freshness_window must be greater than zero",
		},
		{
			name:    "hour out of range",
			mutate:  func(c *Config) { c.Scheduler.Hour = 24 },
			wantErr: "scheduler.hour must be between 0 and 23",
		},
		{
			name:    "minute out of range",
			mutate:  func(c *Config) { c.Scheduler.Minute = 60 },
			wantErr: "scheduler.minute must be between 0 and 59",
		},
		{
			name:    "empty timezone",
			mutate:  func(c *Config) { c.Scheduler.Timezone = "" },
			wantErr: "scheduler.timezone must be set",
		},
		{
			name:    "alerting without bot token",
			mutate:  func(c *Config) { c.Alerting.Enabled = true },
			wantErr: "alerting.telegram.bot_token must be set when alerting is enabled",
		},
		{
			name: "alerting without chat id",
			mutate: func(c *Config) {
				c.Alerting.Enabled = true
				c.Alerting.Telegram.BotToken = "token"
			},
			wantErr: "alerting.telegram.chat_id must be set when alerting is enabled",
		},
		{
			name:    "zero top yields",
			mutate:  func(c *Config) { c.Export.TopYields = 0 },
			wantErr: "export.top_yields must be greater than zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Errorf("Validate() expected error %q, got nil", tt.wantErr)
			} else if err.Error() != tt.wantErr {
				t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestResolveTopYields(t *testing.T) {
	cfg := &Config{Export: ExportConfig{TopYields: 10}}

	if got := cfg.ResolveTopYields(0); got != 10 {
		t.Errorf("ResolveTopYields(0) = %d, want config value 10", got)
	}
	if got := cfg.ResolveTopYields(3); got != 3 {
		t.Errorf("ResolveTopYields(3) = %d, want override 3", got)
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
