package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents application configuration
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Holiday  HolidayConfig  `mapstructure:"holiday"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// StorageConfig locates the backing database
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// HolidayConfig configures the public-holiday data source
type HolidayConfig struct {
	BaseURL  string `mapstructure:"base_url"` // empty selects the public Nager.Date endpoint
	CacheTTL string `mapstructure:"cache_ttl"`
	Disabled bool   `mapstructure:"disabled"` // run with no holiday data at all
}

// DefaultsConfig holds the values seeded into fresh settings rows
type DefaultsConfig struct {
	Country  string `mapstructure:"country"`
	State    string `mapstructure:"state"`
	Timezone string `mapstructure:"timezone"`
}

// SeedConfig configures per-owner seeding policy selection
type SeedConfig struct {
	// PresetOwner names the owner whose freshly seeded weekdays receive
	// the Mon/Fri=WFH, Tue-Thu=IN_OFFICE preset instead of NONE
	PresetOwner string `mapstructure:"preset_owner"`
}

// ServerConfig configures the HTTP operations surface
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// LogConfig configures logging output
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.office-tracker")
		v.AddConfigPath("/etc/office-tracker")
	}

	v.SetDefault("storage.path", "office-tracker.db")
	v.SetDefault("holiday.cache_ttl", "24h")
	v.SetDefault("defaults.country", "US")
	v.SetDefault("defaults.timezone", "America/Los_Angeles")
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("log.level", "info")

	// Read environment variables
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; the defaults stand
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration. Failures here are fatal at
// startup; everything recoverable is handled further down.
func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	if !c.Holiday.Disabled && c.Defaults.Country == "" {
		return fmt.Errorf("defaults.country is required unless holiday.disabled is set")
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}
	return nil
}

// GetCacheTTL returns the holiday cache TTL duration
func (c *HolidayConfig) GetCacheTTL() time.Duration {
	if c.CacheTTL == "" {
		return 24 * time.Hour
	}
	duration, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return duration
}
