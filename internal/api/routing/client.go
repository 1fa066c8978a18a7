// Package routing wraps the OSRM driving-route endpoint. A route needs at
// least two coordinate pairs; fewer is "no route", not an error.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

var _ Client = (*ClientImpl)(nil)

// Client computes a route geometry for an ordered coordinate sequence.
// A nil geometry with a nil error means "route not available".
type Client interface {
	Route(ctx context.Context, coords [][2]float64) (json.RawMessage, error)
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

type routeResponse struct {
	Routes []struct {
		Geometry json.RawMessage `json:"geometry"`
	} `json:"routes"`
}

// Route asks OSRM for a driving route through coords (lat, lng pairs) and
// returns the GeoJSON geometry of the first route.
func (c *ClientImpl) Route(ctx context.Context, coords [][2]float64) (json.RawMessage, error) {
	if len(coords) < 2 {
		return nil, nil
	}

	// OSRM expects lng,lat pairs joined by semicolons.
	parts := make([]string, len(coords))
	for i, coord := range coords {
		parts[i] = fmt.Sprintf("%f,%f", coord[1], coord[0])
	}
	coordString := strings.Join(parts, ";")

	if cached, found := c.cache.Get(coordString); found {
		return cached.(json.RawMessage), nil
	}

	reqURL := fmt.Sprintf("%s/route/v1/driving/%s?overview=full&geometries=geojson", c.baseURL, coordString)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build route request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("route request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing service returned status %d", resp.StatusCode)
	}

	var decoded routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode route response: %w", err)
	}
	if len(decoded.Routes) == 0 {
		return nil, fmt.Errorf("routing service returned no routes")
	}

	geometry := decoded.Routes[0].Geometry
	c.cache.Set(coordString, geometry, gocache.DefaultExpiration)
	return geometry, nil
}
