package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Search    SearchConfig    `mapstructure:"search"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig locates the product catalog and the filter vocabulary
type CatalogConfig struct {
	Path           string `mapstructure:"path"`
	VocabularyPath string `mapstructure:"vocabulary_path"` // empty uses the built-in vocabulary
}

// SearchConfig holds the matching thresholds and pipeline stage toggles
type SearchConfig struct {
	FuzzyThreshold               float64 `mapstructure:"fuzzy_threshold"`
	MaxResults                   int     `mapstructure:"max_results"`
	MinRelevance                 float64 `mapstructure:"min_relevance"`
	SpellingCutoff               float64 `mapstructure:"spelling_cutoff"`
	EnableStopWords              bool    `mapstructure:"enable_stop_words"`
	EnableInflectionFolding      bool    `mapstructure:"enable_inflection_folding"`
	EnableSpellingCorrection     bool    `mapstructure:"enable_spelling_correction"`
	EnableFuzzyName              bool    `mapstructure:"enable_fuzzy_name"`
	EnableCategoryClassification bool    `mapstructure:"enable_category_classification"`
	EnableHighlighting           bool    `mapstructure:"enable_highlighting"`
	Debug                        bool    `mapstructure:"debug"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type       string        `mapstructure:"type"` // "memory", "redis" or "none"
	RedisURL   string        `mapstructure:"redis_url"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from environment variables and config files.
// configFile, when non-empty, replaces the config.yaml search.
func Load(configFile ...string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	if len(configFile) > 0 && configFile[0] != "" {
		v.SetConfigFile(configFile[0])
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/elcom/")
	}

	// Environment variable settings
	v.SetEnvPrefix("ELCOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory if present. Variables
// already set in the environment win.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Catalog defaults
	v.SetDefault("catalog.path", "data/elcom_product_catalog_cleaned.json")
	v.SetDefault("catalog.vocabulary_path", "")

	// Search defaults
	v.SetDefault("search.fuzzy_threshold", 65.0)
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.min_relevance", 0.3)
	v.SetDefault("search.spelling_cutoff", 0.8)
	v.SetDefault("search.enable_stop_words", true)
	v.SetDefault("search.enable_inflection_folding", true)
	v.SetDefault("search.enable_spelling_correction", true)
	v.SetDefault("search.enable_fuzzy_name", true)
	v.SetDefault("search.enable_category_classification", true)
	v.SetDefault("search.enable_highlighting", false)
	v.SetDefault("search.debug", false)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.max_entries", 10000)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 120)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// validate validates the configuration
func validate(config *Config) error {
	if strings.TrimSpace(config.Catalog.Path) == "" {
		return fmt.Errorf("catalog path is required (set ELCOM_CATALOG_PATH)")
	}

	switch config.Cache.Type {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("cache type must be 'memory', 'redis' or 'none', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache type is 'redis'")
	}

	if config.Search.FuzzyThreshold < 0 || config.Search.FuzzyThreshold > 100 {
		return fmt.Errorf("search fuzzy_threshold must be within [0, 100], got: %v", config.Search.FuzzyThreshold)
	}

	if config.Search.SpellingCutoff <= 0 || config.Search.SpellingCutoff > 1 {
		return fmt.Errorf("search spelling_cutoff must be within (0, 1], got: %v", config.Search.SpellingCutoff)
	}

	if config.Search.MaxResults < 1 {
		return fmt.Errorf("search max_results must be at least 1, got: %d", config.Search.MaxResults)
	}

	if config.Search.MinRelevance < 0 {
		return fmt.Errorf("search min_relevance must not be negative, got: %v", config.Search.MinRelevance)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("ratelimit per_ip must not be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
