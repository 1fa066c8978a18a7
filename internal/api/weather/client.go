// Package weather wraps the weatherapi.com forecast endpoint. Results are
// cached per (place, date) so repeated turns for the same trip do not hammer
// the API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Kmcx/histolocal/internal/types"
)

// apiKeyEnv names the environment variable holding the weatherapi.com key.
const apiKeyEnv = "WEATHER_API_KEY"

var _ Client = (*ClientImpl)(nil)

// Client fetches a day forecast for a place. An error means "unavailable";
// callers substitute a placeholder and move on.
type Client interface {
	Forecast(ctx context.Context, place string, lat, lng float64, date string) (*types.WeatherReport, error)
}

type ClientImpl struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	cache      *gocache.Cache
}

func NewClient(baseURL string, timeout, cacheTTL time.Duration, logger *slog.Logger) *ClientImpl {
	return &ClientImpl{
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
	}
}

type forecastResponse struct {
	Forecast struct {
		ForecastDay []struct {
			Day struct {
				AvgTempC  float64 `json:"avgtemp_c"`
				Condition struct {
					Text string `json:"text"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// Forecast looks up the condition and average temperature for place on the
// canonical travel date (e.g. "15 April 2025").
func (c *ClientImpl) Forecast(ctx context.Context, place string, lat, lng float64, date string) (*types.WeatherReport, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("weather API key not set (%s)", apiKeyEnv)
	}

	cacheKey := fmt.Sprintf("%s|%s", place, date)
	if cached, found := c.cache.Get(cacheKey); found {
		report := cached.(types.WeatherReport)
		return &report, nil
	}

	// weatherapi.com wants the dt parameter as yyyy-mm-dd.
	parsed, err := time.Parse("2 January 2006", date)
	if err != nil {
		return nil, fmt.Errorf("unparseable travel date %q: %w", date, err)
	}

	query := url.Values{}
	query.Set("key", apiKey)
	query.Set("q", fmt.Sprintf("%f,%f", lat, lng))
	query.Set("dt", parsed.Format("2006-01-02"))
	reqURL := fmt.Sprintf("%s/forecast.json?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather service returned status %d", resp.StatusCode)
	}

	var decoded forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}
	if len(decoded.Forecast.ForecastDay) == 0 {
		return nil, fmt.Errorf("weather response contains no forecast days")
	}

	day := decoded.Forecast.ForecastDay[0].Day
	report := types.WeatherReport{
		Place:     place,
		Date:      date,
		Condition: day.Condition.Text,
		AvgTempC:  day.AvgTempC,
	}
	c.cache.Set(cacheKey, report, gocache.DefaultExpiration)
	return &report, nil
}
