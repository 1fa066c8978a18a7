package weather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ClientImpl {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(srv.URL, time.Second, time.Minute, logger)
}

const forecastBody = `{"forecast":{"forecastday":[{"day":{"avgtemp_c":21.5,"condition":{"text":"Sunny"}}}]}}`

func TestClient_Forecast(t *testing.T) {
	ctx := context.Background()

	t.Run("parses condition and temperature", func(t *testing.T) {
		t.Setenv("WEATHER_API_KEY", "test-key")
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))
			assert.Equal(t, "2025-04-15", r.URL.Query().Get("dt"))
			io.WriteString(w, forecastBody)
		})

		report, err := c.Forecast(ctx, "Konak", 38.4189, 27.1287, "15 April 2025")
		require.NoError(t, err)
		assert.Equal(t, "Sunny", report.Condition)
		assert.InDelta(t, 21.5, report.AvgTempC, 0.001)
		assert.Equal(t, "Konak", report.Place)
	})

	t.Run("second lookup is served from cache", func(t *testing.T) {
		t.Setenv("WEATHER_API_KEY", "test-key")
		calls := 0
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			io.WriteString(w, forecastBody)
		})

		_, err := c.Forecast(ctx, "Konak", 38.4189, 27.1287, "15 April 2025")
		require.NoError(t, err)
		_, err = c.Forecast(ctx, "Konak", 38.4189, 27.1287, "15 April 2025")
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("missing API key", func(t *testing.T) {
		t.Setenv("WEATHER_API_KEY", "")
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, forecastBody)
		})
		_, err := c.Forecast(ctx, "Konak", 38.4189, 27.1287, "15 April 2025")
		require.Error(t, err)
	})

	t.Run("non-200 response", func(t *testing.T) {
		t.Setenv("WEATHER_API_KEY", "test-key")
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusForbidden)
		})
		_, err := c.Forecast(ctx, "Konak", 38.4189, 27.1287, "15 April 2025")
		require.Error(t, err)
	})

	t.Run("empty forecast payload", func(t *testing.T) {
		t.Setenv("WEATHER_API_KEY", "test-key")
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"forecast":{"forecastday":[]}}`)
		})
		_, err := c.Forecast(ctx, "Konak", 38.4189, 27.1287, "15 April 2025")
		require.Error(t, err)
	})
}
