// Package config loads tripkit settings from defaults, an optional YAML file
// and TRIPKIT_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileEnv names the environment variable holding the YAML config path.
const FileEnv = "TRIPKIT_CONFIG"

type Config struct {
	Port             string        `yaml:"port"`
	DBPath           string        `yaml:"db_path"`
	LogLevel         string        `yaml:"log_level"`
	LogFormat        string        `yaml:"log_format"`
	JWTSecret        string        `yaml:"jwt_secret"`
	TokenTTL         time.Duration `yaml:"token_ttl"`
	ConcealOwnership bool          `yaml:"conceal_ownership"`
	CORSOrigins      []string      `yaml:"cors_origins"`
	Weather          Weather       `yaml:"weather"`
	Dining           Dining        `yaml:"dining"`
}

type Weather struct {
	GeocodingURL    string        `yaml:"geocoding_url"`
	ForecastURL     string        `yaml:"forecast_url"`
	TemperatureUnit string        `yaml:"temperature_unit"`
	ForecastDays    int           `yaml:"forecast_days"`
	RequireAuth     bool          `yaml:"require_auth"`
	Timeout         time.Duration `yaml:"timeout"`
}

type Dining struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Limit       int           `yaml:"limit"`
	TopN        int           `yaml:"top_n"`
	RequireAuth bool          `yaml:"require_auth"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Port:        "8080",
		DBPath:      "tripkit.db",
		LogLevel:    "info",
		LogFormat:   "text",
		TokenTTL:    24 * time.Hour,
		CORSOrigins: []string{"*"},
		Weather: Weather{
			GeocodingURL:    "https://geocoding-api.open-meteo.com/v1/search",
			ForecastURL:     "https://api.open-meteo.com/v1/forecast",
			TemperatureUnit: "fahrenheit",
			ForecastDays:    7,
			Timeout:         10 * time.Second,
		},
		Dining: Dining{
			BaseURL:     "https://api.yelp.com/v3",
			Limit:       50,
			RequireAuth: true,
			Timeout:     10 * time.Second,
		},
	}
}

// Load builds the configuration and validates it.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("TRIPKIT_PORT", &cfg.Port)
	str("TRIPKIT_DB_PATH", &cfg.DBPath)
	str("TRIPKIT_LOG_LEVEL", &cfg.LogLevel)
	str("TRIPKIT_LOG_FORMAT", &cfg.LogFormat)
	str("TRIPKIT_JWT_SECRET", &cfg.JWTSecret)
	duration("TRIPKIT_TOKEN_TTL", &cfg.TokenTTL)
	boolean("TRIPKIT_CONCEAL_OWNERSHIP", &cfg.ConcealOwnership)
	if v, ok := os.LookupEnv("TRIPKIT_CORS_ORIGINS"); ok {
		cfg.CORSOrigins = splitList(v)
	}

	str("TRIPKIT_WEATHER_GEOCODING_URL", &cfg.Weather.GeocodingURL)
	str("TRIPKIT_WEATHER_FORECAST_URL", &cfg.Weather.ForecastURL)
	str("TRIPKIT_WEATHER_TEMPERATURE_UNIT", &cfg.Weather.TemperatureUnit)
	integer("TRIPKIT_WEATHER_FORECAST_DAYS", &cfg.Weather.ForecastDays)
	boolean("TRIPKIT_WEATHER_REQUIRE_AUTH", &cfg.Weather.RequireAuth)
	duration("TRIPKIT_WEATHER_TIMEOUT", &cfg.Weather.Timeout)

	str("TRIPKIT_DINING_API_KEY", &cfg.Dining.APIKey)
	str("TRIPKIT_DINING_BASE_URL", &cfg.Dining.BaseURL)
	integer("TRIPKIT_DINING_LIMIT", &cfg.Dining.Limit)
	integer("TRIPKIT_DINING_TOP_N", &cfg.Dining.TopN)
	boolean("TRIPKIT_DINING_REQUIRE_AUTH", &cfg.Dining.RequireAuth)
	duration("TRIPKIT_DINING_TIMEOUT", &cfg.Dining.Timeout)

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("jwt_secret must be at least 16 bytes"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if c.TokenTTL < 0 {
		errs = append(errs, errors.New("token_ttl must not be negative"))
	}
	switch c.Weather.TemperatureUnit {
	case "fahrenheit", "celsius":
	default:
		errs = append(errs, fmt.Errorf("weather.temperature_unit %q must be fahrenheit or celsius", c.Weather.TemperatureUnit))
	}
	if c.Weather.ForecastDays < 1 || c.Weather.ForecastDays > 16 {
		errs = append(errs, errors.New("weather.forecast_days must be between 1 and 16"))
	}
	if c.Dining.Limit < 1 || c.Dining.Limit > 50 {
		errs = append(errs, errors.New("dining.limit must be between 1 and 50"))
	}
	if c.Dining.TopN < 0 {
		errs = append(errs, errors.New("dining.top_n must not be negative"))
	}
	if c.Weather.Timeout <= 0 || c.Dining.Timeout <= 0 {
		errs = append(errs, errors.New("proxy timeouts must be positive"))
	}
	return errors.Join(errs...)
}
