package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/tripkit/internal/apperr"
	"github.com/dukerupert/tripkit/internal/dining"
	"github.com/dukerupert/tripkit/internal/metrics"
	"github.com/dukerupert/tripkit/internal/weather"
)

type WeatherHandler struct {
	service *weather.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewWeatherHandler(s *weather.Service, m *metrics.Metrics, logger *slog.Logger) *WeatherHandler {
	return &WeatherHandler{service: s, metrics: m, logger: logger}
}

// Forecast serves GET /destination/weather?location=City[,Country] or
// ?city=City[&country=Country].
func (h *WeatherHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city, country := q.Get("city"), q.Get("country")
	if loc := strings.TrimSpace(q.Get("location")); loc != "" {
		city, country = splitLocation(loc)
	}
	if strings.TrimSpace(city) == "" {
		writeError(w, r, h.logger, apperr.Validation("location is required"))
		return
	}

	report, err := h.service.Forecast(r.Context(), city, country)
	observeUpstream(h.metrics, weather.Provider, err)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func splitLocation(loc string) (city, country string) {
	parts := strings.Split(loc, ",")
	city = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		country = strings.TrimSpace(parts[len(parts)-1])
	}
	return city, country
}

type DiningHandler struct {
	service *dining.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewDiningHandler(s *dining.Service, m *metrics.Metrics, logger *slog.Logger) *DiningHandler {
	return &DiningHandler{service: s, metrics: m, logger: logger}
}

// Recommendations serves GET /recommendations?city=|latitude=&longitude=[&term=].
func (h *DiningHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	recs, err := h.service.Recommend(r.Context(), dining.Query{
		City:      q.Get("city"),
		Latitude:  q.Get("latitude"),
		Longitude: q.Get("longitude"),
		Term:      q.Get("term"),
	})
	observeUpstream(h.metrics, dining.Provider, err)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}

// observeUpstream counts one provider call. Validation errors are rejected
// before any request is sent and are not counted.
func observeUpstream(m *metrics.Metrics, provider string, err error) {
	if m == nil || apperr.Is(err, apperr.KindValidation) {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	m.ObserveUpstream(provider, outcome)
}
