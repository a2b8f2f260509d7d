package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"etf-watcher/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Store     StoreConfig     `mapstructure:"store"`
	Updater   UpdaterConfig   `mapstructure:"updater"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Server    ServerConfig    `mapstructure:"server"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// StoreConfig locates and bounds the flat-file data lake.
type StoreConfig struct {
	Root         string `mapstructure:"root"`
	MaxChunkSize int    `mapstructure:"max_chunk_size"`
	Format       string `mapstructure:"format"`
}

// UpdaterConfig governs the update orchestrator.
type UpdaterConfig struct {
	FreshnessWindow time.Duration `mapstructure:"freshness_window"`
	AdapterTimeout  time.Duration `mapstructure:"adapter_timeout"`
	Concurrency     int           `mapstructure:"concurrency"`
}

// SchedulerConfig places the daily update on the wall clock.
type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Hour     int    `mapstructure:"hour"`
	Minute   int    `mapstructure:"minute"`
	Timezone string `mapstructure:"timezone"`
}

// ServerConfig covers the HTTP API listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CrawlerConfig applies to every source adapter.
type CrawlerConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	// Sources restricts which providers are registered; empty enables all.
	Sources []string `mapstructure:"sources"`
}

// AlertingConfig routes notifications about failed update runs.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes Telegram delivery parameters.
type TelegramConfig struct {
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	APIBase  string        `mapstructure:"api_base"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	TopYields int `mapstructure:"top_yields"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ETFWATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "etfwatcher")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("store.root", "data")
	v.SetDefault("store.max_chunk_size", 4*1024*1024)
	v.SetDefault("store.format", "json")

	v.SetDefault("updater.freshness_window", "24h")
	v.SetDefault("updater.adapter_timeout", "5m")
	v.SetDefault("updater.concurrency", 4)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.hour", 18)
	v.SetDefault("scheduler.minute", 0)
	v.SetDefault("scheduler.timezone", "America/New_York")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("crawler.request_timeout", "30s")
	v.SetDefault("crawler.sources", []string{})

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.telegram.timeout", "10s")

	v.SetDefault("export.top_yields", 10)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Store.Root == "" {
		return fmt.Errorf("store.root must be set")
	}
	if c.Store.MaxChunkSize <= 0 {
		return fmt.Errorf("store.max_chunk_size must be greater than zero")
	}
	switch c.Store.Format {
	case "json", "msgpack":
	default:
		return fmt.Errorf("store.format must be json or msgpack, got %q", c.Store.Format)
	}
	if c.Updater.FreshnessWindow <= 0 {
		return fmt.Errorf("updater.freshness_window must be greater than zero")
	}
	if c.Updater.AdapterTimeout <= 0 {
		return fmt.Errorf("updater.adapter_timeout must be greater than zero")
	}
	if c.Updater.Concurrency <= 0 {
		return fmt.Errorf("updater.concurrency must be greater than zero")
	}
	if c.Scheduler.Hour < 0 || c.Scheduler.Hour > 23 {
		return fmt.Errorf("scheduler.hour must be between 0 and 23")
	}
	if c.Scheduler.Minute < 0 || c.Scheduler.Minute > 59 {
		return fmt.Errorf("scheduler.minute must be between 0 and 59")
	}
	if c.Scheduler.Timezone == "" {
		return fmt.Errorf("scheduler.timezone must be set")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must be set")
	}
	if c.Alerting.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token must be set when alerting is enabled")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id must be set when alerting is enabled")
		}
	}
	if c.Export.TopYields <= 0 {
		return fmt.Errorf("export.top_yields must be greater than zero")
	}
	return nil
}

// ResolveTopYields returns either the CLI override or config default.
func (c *Config) ResolveTopYields(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.TopYields
}
