package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// Make fields public so they can be accessed from other packages.
type AppMetrics struct {
	TurnRequestsTotal       metric.Int64Counter
	TurnDurationSeconds     metric.Float64Histogram
	ExternalCallErrorsTotal metric.Int64Counter
	ResolverFuzzyHitsTotal  metric.Int64Counter
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("Histolocal")
		var err error
		m := &AppMetrics{}

		m.TurnRequestsTotal, err = meter.Int64Counter(
			"dialogue_turns_total",
			metric.WithDescription("Total number of dialogue turns processed"),
			metric.WithUnit("{turn}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create dialogue_turns_total: %v", err)
		}

		m.TurnDurationSeconds, err = meter.Float64Histogram(
			"dialogue_turn_duration_seconds",
			metric.WithDescription("Duration of dialogue turns in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create dialogue_turn_duration_seconds: %v", err)
		}

		m.ExternalCallErrorsTotal, err = meter.Int64Counter(
			"external_call_errors_total",
			metric.WithDescription("Total number of failed calls to the weather, routing and vector search services"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create external_call_errors_total: %v", err)
		}

		m.ResolverFuzzyHitsTotal, err = meter.Int64Counter(
			"resolver_fuzzy_hits_total",
			metric.WithDescription("Total number of place names contributed by the fuzzy resolver pass"),
			metric.WithUnit("{match}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create resolver_fuzzy_hits_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		// This indicates a programming error - InitAppMetrics must be called at startup.
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
