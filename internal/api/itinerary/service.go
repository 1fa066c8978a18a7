// Package itinerary assembles the final suggestion once the dialogue has
// collected locations, a category and a travel date. Every external call is
// fail-open per field: a dead weather or routing service degrades one line of
// the summary, never the whole turn.
package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/Kmcx/histolocal/app/observability/metrics"
	"github.com/Kmcx/histolocal/internal/api/gazetteer"
	"github.com/Kmcx/histolocal/internal/api/routing"
	"github.com/Kmcx/histolocal/internal/api/weather"
	"github.com/Kmcx/histolocal/internal/types"
)

const (
	transportUnavailable = "Transport info not available."
	routeIncluded        = "Route is included."
	routeUnavailable     = "No route available for a single location."
)

var _ Service = (*ServiceImpl)(nil)

// Service builds the terminal-stage itinerary.
type Service interface {
	Assemble(ctx context.Context, locations []string, category, travelDate string) (*types.ItineraryResult, error)
}

type ServiceImpl struct {
	logger        *slog.Logger
	gazetteer     *gazetteer.Gazetteer
	weatherClient weather.Client
	routeClient   routing.Client
}

func NewServiceImpl(g *gazetteer.Gazetteer, weatherClient weather.Client, routeClient routing.Client, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:        logger,
		gazetteer:     g,
		weatherClient: weatherClient,
		routeClient:   routeClient,
	}
}

// splitCategories breaks the stored comma-joined category string back into
// individual lowercase tokens.
func splitCategories(category string) []string {
	var out []string
	for _, piece := range strings.FieldsFunc(category, func(r rune) bool { return r == ',' }) {
		for _, token := range strings.Split(piece, " and ") {
			token = strings.ToLower(strings.TrimSpace(token))
			if token != "" {
				out = append(out, token)
			}
		}
	}
	return out
}

// Assemble produces the summary text, the structured sub-place list and the
// optional route for the collected slots. Locations keep their input order.
func (s *ServiceImpl) Assemble(ctx context.Context, locations []string, category, travelDate string) (*types.ItineraryResult, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Assemble")
	defer span.End()
	span.SetAttributes(
		attribute.Int("itinerary.locations", len(locations)),
		attribute.String("itinerary.category", category),
	)

	categories := splitCategories(category)

	// Suggested places: per location, per requested category present in that
	// location's case-insensitive category index.
	var (
		suggestionLines []string
		detailed        []types.SubPlace
		coords          [][2]float64
	)
	for _, loc := range locations {
		entry := s.gazetteer.Lookup(loc)
		if entry == nil {
			s.logger.WarnContext(ctx, "Location missing from gazetteer, skipping", slog.String("location", loc))
			continue
		}
		coords = append(coords, entry.Coordinates)

		index := make(map[string]string, len(entry.Categories)) // lowercase -> actual key
		for key := range entry.Categories {
			index[strings.ToLower(key)] = key
		}
		for _, token := range categories {
			actualKey, ok := index[token]
			if !ok {
				continue
			}
			subPlaces := entry.Categories[actualKey]
			names := make([]string, len(subPlaces))
			for i, sp := range subPlaces {
				names[i] = sp.Name
				detailed = append(detailed, sp)
			}
			suggestionLines = append(suggestionLines,
				fmt.Sprintf("%s (%s): %s", loc, actualKey, strings.Join(names, ", ")))
		}
	}

	route := s.fetchRoute(ctx, coords)
	transport := s.transportSummary(locations)
	weatherSummary := s.weatherSummary(ctx, locations, travelDate)

	routeSentence := routeUnavailable
	if route != nil {
		routeSentence = routeIncluded
	}

	summary := fmt.Sprintf(
		"Here is your itinerary:\n\nItinerary Locations: %s (type: %s)\n\nSuggested Places:\n%s\n\nTransport Info:\n%s\n\nWeather Forecast:\n%s\n\n%s",
		strings.Join(locations, ", "),
		category,
		strings.Join(suggestionLines, "\n"),
		transport,
		weatherSummary,
		routeSentence,
	)

	span.SetStatus(codes.Ok, "Itinerary assembled")
	return &types.ItineraryResult{
		Summary:      summary,
		RouteGeoJSON: route,
		Locations:    detailed,
	}, nil
}

// fetchRoute asks for a route when at least two coordinate pairs resolved.
// Routing failures are absorbed: the itinerary simply carries no route.
func (s *ServiceImpl) fetchRoute(ctx context.Context, coords [][2]float64) []byte {
	if len(coords) < 2 || s.routeClient == nil {
		return nil
	}
	route, err := s.routeClient.Route(ctx, coords)
	if err != nil {
		s.logger.WarnContext(ctx, "Route lookup failed, continuing without a route", slog.Any("error", err))
		metrics.Get().ExternalCallErrorsTotal.Add(ctx, 1)
		return nil
	}
	return route
}

func (s *ServiceImpl) transportSummary(locations []string) string {
	var lines []string
	for _, loc := range locations {
		entry := s.gazetteer.Lookup(loc)
		if entry == nil || entry.Transport == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", loc, entry.Transport))
	}
	if len(lines) == 0 {
		return transportUnavailable
	}
	return strings.Join(lines, "\n")
}

// weatherSummary fetches per-location forecasts concurrently. Each failure
// yields a placeholder line for that location only.
func (s *ServiceImpl) weatherSummary(ctx context.Context, locations []string, travelDate string) string {
	lines := make([]string, len(locations))

	g, gctx := errgroup.WithContext(ctx)
	for i, loc := range locations {
		entry := s.gazetteer.Lookup(loc)
		if entry == nil {
			lines[i] = fmt.Sprintf("No coordinates found for %s.", loc)
			continue
		}
		if s.weatherClient == nil {
			lines[i] = fmt.Sprintf("Weather data unavailable for %s.", loc)
			continue
		}
		g.Go(func() error {
			report, err := s.weatherClient.Forecast(gctx, loc, entry.Coordinates[0], entry.Coordinates[1], travelDate)
			if err != nil {
				s.logger.WarnContext(gctx, "Weather lookup failed",
					slog.String("location", loc), slog.Any("error", err))
				metrics.Get().ExternalCallErrorsTotal.Add(gctx, 1)
				lines[i] = fmt.Sprintf("Weather data unavailable for %s.", loc)
				return nil
			}
			lines[i] = fmt.Sprintf("%s on %s: %s, %.1f°C", report.Place, report.Date, report.Condition, report.AvgTempC)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors, they degrade their own line

	return strings.Join(lines, "\n")
}
