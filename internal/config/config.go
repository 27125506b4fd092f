// Package config holds configuration for the slopwatch service.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/slopwatch/slopwatch/internal/logger"
)

// Default configuration values.
const (
	defaultServiceName   = "slopwatch"
	defaultMetricsPort   = 9090
	defaultDatabaseDSN   = "slopwatch.db"
	defaultGeminiModel   = "gemini-2.0-flash"
	defaultMinIntervalMS = 2000
	defaultTargetCount   = 25
	defaultRuntimeBudget = 8 * time.Minute
	defaultMinSubs       = 1000
	defaultMinVideos     = 10
)

// Config is the root configuration.
type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	YouTube   YouTubeConfig   `mapstructure:"youtube"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Run       RunConfig       `mapstructure:"run"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Logging   logger.Config   `mapstructure:"logging"`
}

// ServiceConfig holds service-level settings.
type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

// YouTubeConfig holds Data API credentials.
type YouTubeConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// GeminiConfig holds the text-generation provider settings.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	// MinIntervalMS is the process-wide minimum spacing between provider
	// calls, in milliseconds.
	MinIntervalMS int `mapstructure:"min_interval_ms"`
}

// MinInterval returns the call spacing as a duration.
func (g GeminiConfig) MinInterval() time.Duration {
	return time.Duration(g.MinIntervalMS) * time.Millisecond
}

// DatabaseConfig holds the persistence DSN. A postgres:// DSN selects
// PostgreSQL; anything else is a SQLite path.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RunConfig holds run-loop defaults, overridable per invocation.
type RunConfig struct {
	TargetCount    int           `mapstructure:"target_count"`
	RuntimeBudget  time.Duration `mapstructure:"runtime_budget"`
	MinSubscribers int64         `mapstructure:"min_subscribers"`
	MinVideos      int64         `mapstructure:"min_videos"`
}

// DiscoveryConfig holds default discovery sources.
type DiscoveryConfig struct {
	Keywords         []string `mapstructure:"keywords"`
	Seeds            []string `mapstructure:"seeds"`
	TrendingCategory string   `mapstructure:"trending_category"`
	DurationFilter   string   `mapstructure:"duration_filter"`
}

// Load reads configuration from the given file (optional), environment
// variables (SLOPWATCH_ prefixed, plus conventional key names), and
// defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SLOPWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional credential variables take effect without the prefix.
	_ = v.BindEnv("youtube.api_key", "SLOPWATCH_YOUTUBE_API_KEY", "YOUTUBE_API_KEY")
	_ = v.BindEnv("gemini.api_key", "SLOPWATCH_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("database.dsn", "SLOPWATCH_DATABASE_DSN", "DATABASE_DSN")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// SetDefaults fills unset fields with defaults.
func (c *Config) SetDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = defaultServiceName
	}
	if c.Service.MetricsPort == 0 {
		c.Service.MetricsPort = defaultMetricsPort
	}
	if c.Database.DSN == "" {
		c.Database.DSN = defaultDatabaseDSN
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaultGeminiModel
	}
	if c.Gemini.MinIntervalMS == 0 {
		c.Gemini.MinIntervalMS = defaultMinIntervalMS
	}
	if c.Run.TargetCount == 0 {
		c.Run.TargetCount = defaultTargetCount
	}
	if c.Run.RuntimeBudget == 0 {
		c.Run.RuntimeBudget = defaultRuntimeBudget
	}
	if c.Run.MinSubscribers == 0 {
		c.Run.MinSubscribers = defaultMinSubs
	}
	if c.Run.MinVideos == 0 {
		c.Run.MinVideos = defaultMinVideos
	}
}

// Validate checks configuration that must be present before a run can
// start. Missing credentials are fatal at process start, never mid-run.
func (c *Config) Validate() error {
	var errs []error
	if c.YouTube.APIKey == "" {
		errs = append(errs, errors.New("youtube.api_key is required (YOUTUBE_API_KEY)"))
	}
	if c.Gemini.APIKey == "" {
		errs = append(errs, errors.New("gemini.api_key is required (GEMINI_API_KEY)"))
	}
	return errors.Join(errs...)
}
