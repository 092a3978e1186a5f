package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	RedisURL    string `mapstructure:"REDIS_URL"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	GoogleMapsAPIKey     string `mapstructure:"GOOGLE_MAPS_API_KEY"`
	PlacesBaseURL        string `mapstructure:"PLACES_BASE_URL"`
	HospitalSearchRadius int    `mapstructure:"HOSPITAL_SEARCH_RADIUS"`

	ClassifierBackend   string  `mapstructure:"CLASSIFIER_BACKEND"`
	ModelPath           string  `mapstructure:"MODEL_PATH"`
	ConfidenceThreshold float64 `mapstructure:"CONFIDENCE_THRESHOLD"`

	ClassifyCacheTTLSeconds int `mapstructure:"CLASSIFY_CACHE_TTL"`
	HospitalCacheTTLSeconds int `mapstructure:"HOSPITAL_CACHE_TTL"`

	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS    float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	UpstreamTimeout time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`

	AdminJWTSecret string `mapstructure:"ADMIN_JWT_SECRET"`
}

var keys = []string{
	"PORT", "ENV",
	"REDIS_URL", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"GOOGLE_MAPS_API_KEY", "PLACES_BASE_URL", "HOSPITAL_SEARCH_RADIUS",
	"CLASSIFIER_BACKEND", "MODEL_PATH", "CONFIDENCE_THRESHOLD",
	"CLASSIFY_CACHE_TTL", "HOSPITAL_CACHE_TTL",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "REQUEST_TIMEOUT", "UPSTREAM_TIMEOUT",
	"ADMIN_JWT_SECRET",
}

// Load reads configuration from the environment. Variables from the first
// readable env file (".env" when none are given) are added to the process
// environment first; variables already set win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err == nil {
			break
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("HOSPITAL_SEARCH_RADIUS", 5000)
	v.SetDefault("CLASSIFIER_BACKEND", "auto")
	v.SetDefault("CONFIDENCE_THRESHOLD", 0.35)
	v.SetDefault("CLASSIFY_CACHE_TTL", 600)
	v.SetDefault("HOSPITAL_CACHE_TTL", 300)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")

	// Unmarshal only sees keys viper knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(cfg.CORSOrigins)
	cfg.ClassifierBackend = strings.ToLower(strings.TrimSpace(cfg.ClassifierBackend))

	return cfg, nil
}

func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) ClassifyCacheTTL() time.Duration {
	return time.Duration(c.ClassifyCacheTTLSeconds) * time.Second
}

func (c *Config) HospitalCacheTTL() time.Duration {
	return time.Duration(c.HospitalCacheTTLSeconds) * time.Second
}

// AdminEnabled reports whether the admin API should be mounted.
func (c *Config) AdminEnabled() bool {
	return c.AdminJWTSecret != "" && c.DatabaseURL != ""
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("PORT must be a number between 1 and 65535, got %q", c.Port)
	}

	switch c.ClassifierBackend {
	case "", "auto", "tfidf":
	case "lstm":
		if c.ModelPath == "" {
			return fmt.Errorf("MODEL_PATH is required when CLASSIFIER_BACKEND is \"lstm\"")
		}
	default:
		return fmt.Errorf("CLASSIFIER_BACKEND must be \"auto\", \"lstm\", or \"tfidf\", got %q", c.ClassifierBackend)
	}

	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold >= 1 {
		return fmt.Errorf("CONFIDENCE_THRESHOLD must be between 0 and 1 exclusive, got %v", c.ConfidenceThreshold)
	}
	if c.ClassifyCacheTTLSeconds <= 0 {
		return fmt.Errorf("CLASSIFY_CACHE_TTL must be positive, got %d", c.ClassifyCacheTTLSeconds)
	}
	if c.HospitalCacheTTLSeconds <= 0 {
		return fmt.Errorf("HOSPITAL_CACHE_TTL must be positive, got %d", c.HospitalCacheTTLSeconds)
	}
	if c.HospitalSearchRadius <= 0 || c.HospitalSearchRadius > 50000 {
		return fmt.Errorf("HOSPITAL_SEARCH_RADIUS must be between 1 and 50000 metres, got %d", c.HospitalSearchRadius)
	}

	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}

	if c.DatabaseURL != "" && c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}

	if c.AdminJWTSecret != "" && len(c.AdminJWTSecret) < 16 {
		return fmt.Errorf("ADMIN_JWT_SECRET must be at least 16 bytes")
	}

	return nil
}
