package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dukerupert/tripkit/internal/apperr"
)

// Provider names the upstream in errors and metrics.
const Provider = "weather service"

const maxBody = 1 << 20

// Config holds weather service configuration.
type Config struct {
	GeocodingURL    string
	ForecastURL     string
	TemperatureUnit string // "fahrenheit" or "celsius"
	ForecastDays    int
	Timeout         time.Duration
}

// Location is the geocoded place a forecast was fetched for.
type Location struct {
	Name      string  `json:"name"`
	Region    string  `json:"region,omitempty"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

type Current struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	WeatherCode int     `json:"weather_code"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

type Day struct {
	Date                string  `json:"date"`
	High                float64 `json:"high"`
	Low                 float64 `json:"low"`
	PrecipitationChance float64 `json:"precipitation_chance"`
	WeatherCode         int     `json:"weather_code"`
	Description         string  `json:"description"`
	Icon                string  `json:"icon"`
}

// Report is the reshaped forecast returned to API callers.
type Report struct {
	Location Location `json:"location"`
	Unit     string   `json:"unit"`
	Current  Current  `json:"current"`
	Daily    []Day    `json:"daily"`
}

// Service resolves locations and fetches forecasts from Open-Meteo.
type Service struct {
	config       Config
	client       *http.Client
	geocodingURL string
	forecastURL  string
}

// NewService creates a new weather service with the given configuration.
func NewService(cfg Config) *Service {
	if cfg.TemperatureUnit == "" {
		cfg.TemperatureUnit = "fahrenheit"
	}
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = 7
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.GeocodingURL == "" {
		cfg.GeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	}
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = "https://api.open-meteo.com/v1/forecast"
	}
	return &Service{
		config:       cfg,
		client:       &http.Client{Timeout: cfg.Timeout},
		geocodingURL: cfg.GeocodingURL,
		forecastURL:  cfg.ForecastURL,
	}
}

// Forecast geocodes city (optionally narrowed by country name or code) and
// returns its current conditions and daily forecast.
func (s *Service) Forecast(ctx context.Context, city, country string) (*Report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, apperr.Validation("location is required")
	}

	loc, err := s.geocode(ctx, city, strings.TrimSpace(country))
	if err != nil {
		return nil, err
	}

	report, err := s.forecast(ctx, loc)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Service) geocode(ctx context.Context, city, country string) (Location, error) {
	count := 1
	if country != "" {
		count = 10
	}
	q := url.Values{}
	q.Set("name", city)
	q.Set("count", strconv.Itoa(count))
	q.Set("language", "en")
	q.Set("format", "json")

	body, err := s.get(ctx, s.geocodingURL, q)
	if err != nil {
		return Location{}, err
	}

	var match gjson.Result
	gjson.GetBytes(body, "results").ForEach(func(_, r gjson.Result) bool {
		if country == "" ||
			strings.EqualFold(r.Get("country").String(), country) ||
			strings.EqualFold(r.Get("country_code").String(), country) {
			match = r
			return false
		}
		return true
	})
	if !match.Exists() {
		return Location{}, apperr.NotFound("location")
	}

	return Location{
		Name:      match.Get("name").String(),
		Region:    match.Get("admin1").String(),
		Country:   match.Get("country").String(),
		Latitude:  match.Get("latitude").Float(),
		Longitude: match.Get("longitude").Float(),
		Timezone:  match.Get("timezone").String(),
	}, nil
}

func (s *Service) forecast(ctx context.Context, loc Location) (*Report, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	q.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code")
	q.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	q.Set("timezone", "auto")
	q.Set("forecast_days", strconv.Itoa(s.config.ForecastDays))
	q.Set("temperature_unit", s.config.TemperatureUnit)

	body, err := s.get(ctx, s.forecastURL, q)
	if err != nil {
		return nil, err
	}

	unit := "F"
	if s.config.TemperatureUnit == "celsius" {
		unit = "C"
	}

	if loc.Timezone == "" {
		loc.Timezone = gjson.GetBytes(body, "timezone").String()
	}

	cur := gjson.GetBytes(body, "current")
	code := int(cur.Get("weather_code").Int())
	desc, icon := WMOCodeToDescIcon(code)
	report := &Report{
		Location: loc,
		Unit:     unit,
		Current: Current{
			Time:        cur.Get("time").String(),
			Temperature: cur.Get("temperature_2m").Float(),
			Humidity:    cur.Get("relative_humidity_2m").Float(),
			WindSpeed:   cur.Get("wind_speed_10m").Float(),
			WeatherCode: code,
			Description: desc,
			Icon:        icon,
		},
		Daily: []Day{},
	}

	daily := gjson.GetBytes(body, "daily")
	highs := daily.Get("temperature_2m_max").Array()
	lows := daily.Get("temperature_2m_min").Array()
	codes := daily.Get("weather_code").Array()
	precip := daily.Get("precipitation_probability_max").Array()
	for i, date := range daily.Get("time").Array() {
		d := Day{Date: date.String()}
		if i < len(highs) {
			d.High = highs[i].Float()
		}
		if i < len(lows) {
			d.Low = lows[i].Float()
		}
		if i < len(precip) {
			d.PrecipitationChance = precip[i].Float()
		}
		if i < len(codes) {
			d.WeatherCode = int(codes[i].Int())
		}
		d.Description, d.Icon = WMOCodeToDescIcon(d.WeatherCode)
		report.Daily = append(report.Daily, d)
	}

	return report, nil
}

func (s *Service) get(ctx context.Context, base string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperr.Upstream(Provider, 0, fmt.Errorf("weather API request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream(Provider, resp.StatusCode,
			fmt.Errorf("weather API returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, apperr.Upstream(Provider, 0, fmt.Errorf("read weather response: %w", err))
	}
	if !gjson.ValidBytes(body) {
		return nil, apperr.Upstream(Provider, 0, errors.New("invalid weather response"))
	}
	return body, nil
}
