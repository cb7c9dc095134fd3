package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the travel rules service.
type Config struct {
	// DataPaths holds data directory configuration
	DataPaths struct {
		// DataDir is the base data directory (TRAVELRULES_DATA_DIR)
		DataDir string `mapstructure:"data_dir"`
		// SQLitePath is the database file path (TRAVELRULES_SQLITE_PATH,
		// default ${DataDir}/travelrules.db)
		SQLitePath string `mapstructure:"sqlite_path"`
	} `mapstructure:"data_paths"`

	API struct {
		Host         string        `mapstructure:"host"`
		Port         int           `mapstructure:"port"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
		RateLimit    struct {
			// Per-client limits, mirroring the chat-side limits:
			// searches and feedback are throttled much harder than reads.
			Search struct {
				PerMinute int `mapstructure:"per_minute"`
				Burst     int `mapstructure:"burst"`
			} `mapstructure:"search"`
			Feedback struct {
				PerMinute int `mapstructure:"per_minute"`
				Burst     int `mapstructure:"burst"`
			} `mapstructure:"feedback"`
			Global struct {
				PerMinute int `mapstructure:"per_minute"`
				Burst     int `mapstructure:"burst"`
			} `mapstructure:"global"`
		} `mapstructure:"rate_limit"`
	} `mapstructure:"api"`

	Search struct {
		// MinQueryLength guards against vacuous queries; the matcher itself
		// accepts anything.
		MinQueryLength int `mapstructure:"min_query_length"`
		MaxQueryLength int `mapstructure:"max_query_length"`
		DefaultLimit   int `mapstructure:"default_limit"`
	} `mapstructure:"search"`

	Pagination struct {
		RulesPerPage  int `mapstructure:"rules_per_page"`
		SearchPerPage int `mapstructure:"search_per_page"`
	} `mapstructure:"pagination"`

	Cache struct {
		DefaultTTL      time.Duration `mapstructure:"default_ttl"`
		PopularTTL      time.Duration `mapstructure:"popular_ttl"`
		CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	} `mapstructure:"cache"`

	Stats struct {
		PopularLimit int `mapstructure:"popular_limit"`
	} `mapstructure:"stats"`
}

// setDefaults registers the default value for every key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("data_paths.data_dir", "./data")
	v.SetDefault("data_paths.sqlite_path", "")

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", 15*time.Second)
	v.SetDefault("api.write_timeout", 15*time.Second)
	v.SetDefault("api.rate_limit.search.per_minute", 5)
	v.SetDefault("api.rate_limit.search.burst", 5)
	v.SetDefault("api.rate_limit.feedback.per_minute", 1)
	v.SetDefault("api.rate_limit.feedback.burst", 1)
	v.SetDefault("api.rate_limit.global.per_minute", 120)
	v.SetDefault("api.rate_limit.global.burst", 20)

	v.SetDefault("search.min_query_length", 3)
	v.SetDefault("search.max_query_length", 200)
	v.SetDefault("search.default_limit", 50)

	v.SetDefault("pagination.rules_per_page", 5)
	v.SetDefault("pagination.search_per_page", 10)

	v.SetDefault("cache.default_ttl", time.Hour)
	v.SetDefault("cache.popular_ttl", time.Hour)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)

	v.SetDefault("stats.popular_limit", 10)
}

// Load reads configuration from an optional YAML file plus TRAVELRULES_*
// environment variables, falling back to defaults for anything unset.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TRAVELRULES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("travelrules")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		// Missing file is fine; defaults and env cover everything.
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DataPaths.SQLitePath == "" {
		cfg.DataPaths.SQLitePath = cfg.DataPaths.DataDir + "/travelrules.db"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api.port must be in [1, 65535], got %d", c.API.Port)
	}
	if c.Search.MinQueryLength < 1 {
		return fmt.Errorf("search.min_query_length must be positive, got %d", c.Search.MinQueryLength)
	}
	if c.Search.MaxQueryLength < c.Search.MinQueryLength {
		return fmt.Errorf("search.max_query_length (%d) must be >= min_query_length (%d)",
			c.Search.MaxQueryLength, c.Search.MinQueryLength)
	}
	if c.Search.DefaultLimit < 1 {
		return fmt.Errorf("search.default_limit must be positive, got %d", c.Search.DefaultLimit)
	}
	if c.Pagination.RulesPerPage < 1 || c.Pagination.SearchPerPage < 1 {
		return fmt.Errorf("pagination page sizes must be positive")
	}
	if c.Cache.DefaultTTL <= 0 || c.Cache.PopularTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	return nil
}
