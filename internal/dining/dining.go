// Package dining proxies Yelp business search and narrows the results to
// well-reviewed sit-down restaurants and bars.
package dining

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
const Provider = "Yelp API"

const maxBody = 2 << 20

type Config struct {
	APIKey  string
	BaseURL string
	Limit   int // page size requested from Yelp, at most 50
	TopN    int // 0 returns every result that survives filtering
	Timeout time.Duration
}

// Query selects where to search. Either City or both Latitude and Longitude
// must be set.
type Query struct {
	City      string
	Latitude  string
	Longitude string
	Term      string
}

type Recommendation struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Categories  []string `json:"categories"`
	Address     string   `json:"address"`
	Website     string   `json:"website"`
	Phone       string   `json:"phone"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	ImageURL    string   `json:"image_url"`
}

type Service struct {
	config Config
	client *http.Client
}

func NewService(cfg Config) *Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.yelp.com/v3"
	}
	if cfg.Limit <= 0 || cfg.Limit > 50 {
		cfg.Limit = 50
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Service{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (q Query) validate() error {
	if strings.TrimSpace(q.City) != "" {
		return nil
	}
	if q.Latitude == "" || q.Longitude == "" {
		return apperr.Validation("city or latitude and longitude are required")
	}
	if _, err := strconv.ParseFloat(q.Latitude, 64); err != nil {
		return apperr.Validation("latitude must be a number")
	}
	if _, err := strconv.ParseFloat(q.Longitude, 64); err != nil {
		return apperr.Validation("longitude must be a number")
	}
	return nil
}

// Recommend searches Yelp and returns the filtered recommendations.
func (s *Service) Recommend(ctx context.Context, q Query) ([]Recommendation, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("categories", "restaurants,bars")
	params.Set("sort_by", "rating")
	params.Set("limit", strconv.Itoa(s.config.Limit))
	if term := strings.TrimSpace(q.Term); term != "" {
		params.Set("term", term)
	}
	// Coordinates win over a city when both are given.
	if q.Latitude != "" && q.Longitude != "" {
		params.Set("latitude", q.Latitude)
		params.Set("longitude", q.Longitude)
	} else {
		params.Set("location", strings.TrimSpace(q.City))
	}

	body, err := s.search(ctx, params)
	if err != nil {
		return nil, err
	}

	return Filter(parseBusinesses(body), s.config.TopN), nil
}

func (s *Service) search(ctx context.Context, params url.Values) ([]byte, error) {
	endpoint := strings.TrimRight(s.config.BaseURL, "/") + "/businesses/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build yelp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperr.Upstream(Provider, 0, fmt.Errorf("yelp request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream(Provider, resp.StatusCode,
			fmt.Errorf("yelp returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, apperr.Upstream(Provider, 0, fmt.Errorf("read yelp response: %w", err))
	}
	if !gjson.ValidBytes(body) {
		return nil, apperr.Upstream(Provider, 0, errors.New("invalid yelp response"))
	}
	return body, nil
}

func parseBusinesses(body []byte) []Recommendation {
	recs := []Recommendation{}
	gjson.GetBytes(body, "businesses").ForEach(func(_, b gjson.Result) bool {
		rec := Recommendation{
			ID:          b.Get("id").String(),
			Name:        b.Get("name").String(),
			Categories:  []string{},
			Website:     b.Get("url").String(),
			Phone:       b.Get("display_phone").String(),
			Rating:      b.Get("rating").Float(),
			ReviewCount: int(b.Get("review_count").Int()),
			ImageURL:    b.Get("image_url").String(),
		}
		for _, c := range b.Get("categories.#.title").Array() {
			rec.Categories = append(rec.Categories, c.String())
		}
		var addr []string
		for _, line := range b.Get("location.display_address").Array() {
			addr = append(addr, line.String())
		}
		rec.Address = strings.Join(addr, " ")
		recs = append(recs, rec)
		return true
	})
	return recs
}
