package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"flight-forecast-backend/internal/scheduler"
)

// Config service settings
type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	ModelDir         string `mapstructure:"MODEL_DIR"`
	FaresPath        string `mapstructure:"FARES_PATH"`
	SyntheticSamples int    `mapstructure:"SYNTHETIC_SAMPLES"`
	SyntheticSeed    int64  `mapstructure:"SYNTHETIC_SEED"`
	ForestTrees      int    `mapstructure:"FOREST_TREES"`
	ForestMaxDepth   int    `mapstructure:"FOREST_MAX_DEPTH"`
	ForestSeed       int64  `mapstructure:"FOREST_SEED"`
	TrendWorkers     int    `mapstructure:"TREND_WORKERS"`

	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`

	QuoteServiceURL string `mapstructure:"QUOTE_SERVICE_URL"`
	CORSOrigins     string `mapstructure:"CORS_ORIGINS"`
	RateLimitPerMin int    `mapstructure:"RATE_LIMIT_PER_MIN"`

	RetrainEnabled       bool          `mapstructure:"RETRAIN_ENABLED"`
	RetrainTime          string        `mapstructure:"RETRAIN_TIME"`
	RetrainRetryCount    int           `mapstructure:"RETRAIN_RETRY_COUNT"`
	RetrainRetryInterval time.Duration `mapstructure:"RETRAIN_RETRY_INTERVAL"`
}

var defaults = map[string]any{
	"PORT":                   "8000",
	"ENV":                    "development",
	"LOG_LEVEL":              "info",
	"MODEL_DIR":              "models",
	"FARES_PATH":             "data/fares.csv",
	"SYNTHETIC_SAMPLES":      10000,
	"SYNTHETIC_SEED":         42,
	"FOREST_TREES":           100,
	"FOREST_MAX_DEPTH":       20,
	"FOREST_SEED":            42,
	"TREND_WORKERS":          8,
	"CACHE_TTL":              "10m",
	"REDIS_ADDR":             "",
	"REDIS_PASSWORD":         "",
	"REDIS_DB":               0,
	"QUOTE_SERVICE_URL":      "",
	"CORS_ORIGINS":           "http://localhost:3000",
	"RATE_LIMIT_PER_MIN":     120,
	"RETRAIN_ENABLED":        false,
	"RETRAIN_TIME":           "03:00",
	"RETRAIN_RETRY_COUNT":    3,
	"RETRAIN_RETRY_INTERVAL": "10m",
}

// Load reads .env (optional), config.yaml in . or ./config (optional) and the
// environment, in increasing precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New(), true)
}

func load(v *viper.Viper, readFile bool) (*Config, error) {
	for k, val := range defaults {
		v.SetDefault(k, val)
		_ = v.BindEnv(k)
	}
	v.AutomaticEnv()

	if readFile {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.sanitize()
	return &c, nil
}

// sanitize resets out-of-range values to their defaults.
func (c *Config) sanitize() {
	d := Default()
	if strings.TrimSpace(c.Port) == "" {
		c.Port = d.Port
	}
	if c.SyntheticSamples <= 0 {
		c.SyntheticSamples = d.SyntheticSamples
	}
	if c.ForestTrees <= 0 {
		c.ForestTrees = d.ForestTrees
	}
	if c.ForestMaxDepth <= 0 {
		c.ForestMaxDepth = d.ForestMaxDepth
	}
	if c.TrendWorkers <= 0 {
		c.TrendWorkers = d.TrendWorkers
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.RateLimitPerMin <= 0 {
		c.RateLimitPerMin = d.RateLimitPerMin
	}
	if c.RedisDB < 0 {
		c.RedisDB = d.RedisDB
	}
	if _, _, err := scheduler.ParseClock(c.RetrainTime); err != nil {
		c.RetrainTime = d.RetrainTime
	}
	if c.RetrainRetryCount < 0 {
		c.RetrainRetryCount = d.RetrainRetryCount
	}
	if c.RetrainRetryInterval <= 0 {
		c.RetrainRetryInterval = d.RetrainRetryInterval
	}
}

// Default built-in settings
func Default() Config {
	return Config{
		Port:                 "8000",
		Env:                  "development",
		LogLevel:             "info",
		ModelDir:             "models",
		FaresPath:            "data/fares.csv",
		SyntheticSamples:     10000,
		SyntheticSeed:        42,
		ForestTrees:          100,
		ForestMaxDepth:       20,
		ForestSeed:           42,
		TrendWorkers:         8,
		CacheTTL:             10 * time.Minute,
		CORSOrigins:          "http://localhost:3000",
		RateLimitPerMin:      120,
		RetrainTime:          "03:00",
		RetrainRetryCount:    3,
		RetrainRetryInterval: 10 * time.Minute,
	}
}

// IsProduction ENV=production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// AllowedOrigins CORS_ORIGINS split on commas
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
