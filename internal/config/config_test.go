package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "5000" {
		t.Errorf("expected default port 5000, got %s", cfg.Port)
	}
	if cfg.ClassifyCacheTTL() != 600*time.Second {
		t.Errorf("expected classify TTL 600s, got %v", cfg.ClassifyCacheTTL())
	}
	if cfg.HospitalCacheTTL() != 300*time.Second {
		t.Errorf("expected hospital TTL 300s, got %v", cfg.HospitalCacheTTL())
	}
	if cfg.ConfidenceThreshold != 0.35 {
		t.Errorf("expected threshold 0.35, got %v", cfg.ConfidenceThreshold)
	}
	if cfg.ClassifierBackend != "auto" {
		t.Errorf("expected auto backend, got %q", cfg.ClassifierBackend)
	}
	if cfg.RequestTimeout != 30*time.Second || cfg.UpstreamTimeout != 10*time.Second {
		t.Errorf("unexpected timeouts %v %v", cfg.RequestTimeout, cfg.UpstreamTimeout)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("expected CORS [*], got %v", cfg.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("CLASSIFY_CACHE_TTL", "60")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("CLASSIFIER_BACKEND", " TFIDF ")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.ClassifyCacheTTL() != time.Minute {
		t.Errorf("expected 1m TTL, got %v", cfg.ClassifyCacheTTL())
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.ClassifierBackend != "tfidf" {
		t.Errorf("expected tfidf, got %q", cfg.ClassifierBackend)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("GOOGLE_MAPS_API_KEY=from-file\nHOSPITAL_SEARCH_RADIUS=2500\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("GOOGLE_MAPS_API_KEY")
		os.Unsetenv("HOSPITAL_SEARCH_RADIUS")
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GoogleMapsAPIKey != "from-file" {
		t.Errorf("expected key from env file, got %q", cfg.GoogleMapsAPIKey)
	}
	if cfg.HospitalSearchRadius != 2500 {
		t.Errorf("expected radius 2500, got %d", cfg.HospitalSearchRadius)
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}

func TestConfig_AdminEnabled(t *testing.T) {
	c := &Config{AdminJWTSecret: "0123456789abcdef"}
	if c.AdminEnabled() {
		t.Error("admin API needs a database")
	}
	c.DatabaseURL = "postgres://localhost/firstaid"
	if !c.AdminEnabled() {
		t.Error("expected admin API to be enabled")
	}
}

func validConfig() *Config {
	return &Config{
		Port:                    "5000",
		Env:                     "development",
		ClassifierBackend:       "auto",
		ConfidenceThreshold:     0.35,
		ClassifyCacheTTLSeconds: 600,
		HospitalCacheTTLSeconds: 300,
		HospitalSearchRadius:    5000,
		RateLimitRPS:            10,
		RateLimitBurst:          20,
		DBMaxConns:              10,
		DBMinConns:              1,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Port = "http" }, true},
		{"port out of range", func(c *Config) { c.Port = "70000" }, true},
		{"lstm without model", func(c *Config) { c.ClassifierBackend = "lstm" }, true},
		{"lstm with model", func(c *Config) { c.ClassifierBackend = "lstm"; c.ModelPath = "model.json" }, false},
		{"unknown backend", func(c *Config) { c.ClassifierBackend = "bert" }, true},
		{"threshold zero", func(c *Config) { c.ConfidenceThreshold = 0 }, true},
		{"threshold one", func(c *Config) { c.ConfidenceThreshold = 1 }, true},
		{"zero classify ttl", func(c *Config) { c.ClassifyCacheTTLSeconds = 0 }, true},
		{"negative hospital ttl", func(c *Config) { c.HospitalCacheTTLSeconds = -1 }, true},
		{"zero radius", func(c *Config) { c.HospitalSearchRadius = 0 }, true},
		{"rate limit disabled", func(c *Config) { c.RateLimitRPS = 0; c.RateLimitBurst = 0 }, false},
		{"negative rps", func(c *Config) { c.RateLimitRPS = -1 }, true},
		{"zero burst", func(c *Config) { c.RateLimitBurst = 0 }, true},
		{"min conns above max", func(c *Config) { c.DatabaseURL = "postgres://x"; c.DBMinConns = 20 }, true},
		{"short jwt secret", func(c *Config) { c.AdminJWTSecret = "short" }, true},
		{"jwt secret ok", func(c *Config) { c.AdminJWTSecret = "0123456789abcdef" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
