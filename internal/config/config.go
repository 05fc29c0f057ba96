package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything a run needs, resolved once at startup from
// defaults, an optional config file, and FEEDHARVEST_* environment variables.
type Config struct {
	SourcesFile        string `mapstructure:"sources_file"`
	OutputDir          string `mapstructure:"output_dir"`
	CachePath          string `mapstructure:"cache_path"`
	NotifiersFile      string `mapstructure:"notifiers_file"`
	LogLevel           string `mapstructure:"log_level"`
	TargetDate         string `mapstructure:"target_date"` // optional YYYY-MM-DD override
	HTTPTimeoutSeconds int    `mapstructure:"http_timeout_seconds"`
}

// Load builds the configuration. cfgFile may be empty; a .env file in the
// working directory is applied first when present.
func Load(cfgFile string) (Config, error) {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("sources_file", "feeds.txt")
	v.SetDefault("output_dir", "output")
	v.SetDefault("cache_path", "cache/feedharvest.db")
	v.SetDefault("notifiers_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("target_date", "")
	v.SetDefault("http_timeout_seconds", 15)

	v.SetEnvPrefix("FEEDHARVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate checks field consistency.
func (c Config) validate() error {
	if strings.TrimSpace(c.SourcesFile) == "" {
		return fmt.Errorf("sources_file is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("http_timeout_seconds must be positive")
	}
	if c.TargetDate != "" {
		if _, err := time.Parse("2006-01-02", c.TargetDate); err != nil {
			return fmt.Errorf("target_date %q is not YYYY-MM-DD: %w", c.TargetDate, err)
		}
	}
	return nil
}

// TargetDay returns the explicit target day override, if configured.
func (c Config) TargetDay() (time.Time, bool) {
	if c.TargetDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", c.TargetDate)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// HTTPTimeout returns the configured fetch timeout.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
