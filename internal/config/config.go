package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete vidparse configuration
type Config struct {
	Resolver ResolverConfig `mapstructure:"resolver" yaml:"resolver"`
	Queue    QueueConfig    `mapstructure:"queue" yaml:"queue"`
	TUI      TUIConfig      `mapstructure:"tui" yaml:"tui"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// ResolverConfig controls how share links are resolved
type ResolverConfig struct {
	// BaseURL is the resolution service API root; requests go to {BaseURL}/parse
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// Token is sent as a Bearer token when set
	Token string `mapstructure:"token" yaml:"token"`
	// TimeoutSeconds bounds each resolution request (default: 30)
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	// Cache memoizes successful results by link for the session (default: true)
	Cache bool `mapstructure:"cache" yaml:"cache"`
}

// QueueConfig controls the progress simulator
type QueueConfig struct {
	// ProgressIntervalMs is how often in-flight progress is raised (default: 500)
	ProgressIntervalMs int `mapstructure:"progress_interval_ms" yaml:"progress_interval_ms"`
	// ProgressCeiling caps simulated progress below 100 (default: 90)
	ProgressCeiling int `mapstructure:"progress_ceiling" yaml:"progress_ceiling"`
}

// TUIConfig controls the terminal UI behavior
type TUIConfig struct {
	// URLWidth is the number of columns given to the link column (default: 60, min: 20, max: 200)
	URLWidth int `mapstructure:"url_width" yaml:"url_width"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level sets the minimum log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the directory for vidparse.log. Empty writes to stderr for the
	// headless runner and discards logs in the TUI.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Resolver: ResolverConfig{
			BaseURL:        "http://localhost:5000/api",
			Token:          "",
			TimeoutSeconds: 30,
			Cache:          true,
		},
		Queue: QueueConfig{
			ProgressIntervalMs: 500,
			ProgressCeiling:    90,
		},
		TUI: TUIConfig{
			URLWidth: 60,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Dir:     "",
		},
	}
}

// Timeout returns the request timeout as a time.Duration
func (c *ResolverConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ProgressInterval returns the simulator interval as a time.Duration
func (c *QueueConfig) ProgressInterval() time.Duration {
	return time.Duration(c.ProgressIntervalMs) * time.Millisecond
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Resolver defaults
	viper.SetDefault("resolver.base_url", defaults.Resolver.BaseURL)
	viper.SetDefault("resolver.token", defaults.Resolver.Token)
	viper.SetDefault("resolver.timeout_seconds", defaults.Resolver.TimeoutSeconds)
	viper.SetDefault("resolver.cache", defaults.Resolver.Cache)

	// Queue defaults
	viper.SetDefault("queue.progress_interval_ms", defaults.Queue.ProgressIntervalMs)
	viper.SetDefault("queue.progress_ceiling", defaults.Queue.ProgressCeiling)

	// TUI defaults
	viper.SetDefault("tui.url_width", defaults.TUI.URLWidth)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "vidparse")
	}
	// Fall back to ~/.config/vidparse
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vidparse"
	}
	return filepath.Join(home, ".config", "vidparse")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
