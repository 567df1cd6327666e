package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef"

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("TRIPKIT_JWT_SECRET", testSecret)
	t.Setenv("TRIPKIT_PORT", "9000")
	t.Setenv("TRIPKIT_TOKEN_TTL", "0")
	t.Setenv("TRIPKIT_CONCEAL_OWNERSHIP", "true")
	t.Setenv("TRIPKIT_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("TRIPKIT_DINING_TOP_N", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.TokenTTL != 0 {
		t.Errorf("token_ttl = %v, want 0", cfg.TokenTTL)
	}
	if !cfg.ConcealOwnership {
		t.Error("expected conceal_ownership")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors_origins = %v", cfg.CORSOrigins)
	}
	if cfg.Dining.TopN != 5 || !cfg.Dining.RequireAuth {
		t.Errorf("dining = %+v", cfg.Dining)
	}
	if cfg.Weather.RequireAuth {
		t.Error("weather should not require auth by default")
	}
	if cfg.DBPath != "tripkit.db" {
		t.Errorf("db_path = %q, want default", cfg.DBPath)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tripkit.yaml")
	data := `
port: "7000"
jwt_secret: "file-secret-0123456789"
token_ttl: 2h
weather:
  temperature_unit: celsius
  forecast_days: 3
  timeout: 5s
dining:
  api_key: from-file
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(FileEnv, path)
	t.Setenv("TRIPKIT_DINING_API_KEY", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "7000" || cfg.TokenTTL != 2*time.Hour {
		t.Errorf("port = %q, token_ttl = %v", cfg.Port, cfg.TokenTTL)
	}
	if cfg.Weather.TemperatureUnit != "celsius" || cfg.Weather.ForecastDays != 3 || cfg.Weather.Timeout != 5*time.Second {
		t.Errorf("weather = %+v", cfg.Weather)
	}
	if cfg.Weather.ForecastURL == "" {
		t.Error("unset file keys should keep defaults")
	}
	if cfg.Dining.APIKey != "from-env" {
		t.Errorf("api_key = %q, want env override", cfg.Dining.APIKey)
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("TRIPKIT_JWT_SECRET", testSecret)
	t.Setenv("TRIPKIT_TOKEN_TTL", "forever")
	t.Setenv("TRIPKIT_DINING_LIMIT", "many")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{"TRIPKIT_TOKEN_TTL", "TRIPKIT_DINING_LIMIT"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.JWTSecret = testSecret
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config with secret: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "jwt_secret"},
		{"bad unit", func(c *Config) { c.Weather.TemperatureUnit = "kelvin" }, "temperature_unit"},
		{"too many days", func(c *Config) { c.Weather.ForecastDays = 30 }, "forecast_days"},
		{"limit", func(c *Config) { c.Dining.Limit = 100 }, "dining.limit"},
		{"negative top_n", func(c *Config) { c.Dining.TopN = -1 }, "top_n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg
			tt.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
