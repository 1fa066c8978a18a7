package gazetteer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/Kmcx/histolocal/internal/types"
)

var _ Repository = (*PostgresGazetteerRepo)(nil)

// Repository loads the place corpus from a structured store. The store is
// read-only from the application's point of view; ingestion happens out of
// band.
type Repository interface {
	LoadPlaces(ctx context.Context) ([]types.PlaceEntry, error)
}

// Queryer is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it in tests.
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PostgresGazetteerRepo struct {
	logger *slog.Logger
	pgpool Queryer
}

func NewPostgresGazetteerRepo(pgpool Queryer, logger *slog.Logger) *PostgresGazetteerRepo {
	return &PostgresGazetteerRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

// LoadPlaces reads every place and its sub-places in stored position order.
func (r *PostgresGazetteerRepo) LoadPlaces(ctx context.Context) ([]types.PlaceEntry, error) {
	placeQuery := `
        SELECT id, name, lat, lng, transport, description
        FROM places
        ORDER BY position
    `
	rows, err := r.pgpool.Query(ctx, placeQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer rows.Close()

	var entries []types.PlaceEntry
	ids := make(map[int64]int) // place id -> index into entries
	for rows.Next() {
		var (
			id       int64
			e        types.PlaceEntry
			lat, lng float64
		)
		if err := rows.Scan(&id, &e.Name, &lat, &lng, &e.Transport, &e.Description); err != nil {
			return nil, fmt.Errorf("failed to scan place row: %w", err)
		}
		e.Coordinates = [2]float64{lat, lng}
		e.Categories = make(map[string][]types.SubPlace)
		ids[id] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("place rows failed: %w", err)
	}

	subQuery := `
        SELECT place_id, category, name, lat, lng
        FROM sub_places
        ORDER BY place_id, position
    `
	subRows, err := r.pgpool.Query(ctx, subQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query sub places: %w", err)
	}
	defer subRows.Close()

	for subRows.Next() {
		var (
			placeID  int64
			category string
			sp       types.SubPlace
		)
		if err := subRows.Scan(&placeID, &category, &sp.Name, &sp.Lat, &sp.Lng); err != nil {
			return nil, fmt.Errorf("failed to scan sub place row: %w", err)
		}
		idx, ok := ids[placeID]
		if !ok {
			r.logger.Warn("Sub place references unknown place, skipping",
				slog.Int64("place_id", placeID), slog.String("name", sp.Name))
			continue
		}
		entries[idx].Categories[category] = append(entries[idx].Categories[category], sp)
	}
	if err := subRows.Err(); err != nil {
		return nil, fmt.Errorf("sub place rows failed: %w", err)
	}

	return entries, nil
}

// Load builds the runtime Gazetteer from the repository, falling back to the
// embedded corpus when the store is unreachable or empty. Corpus problems
// degrade the data set, never the process.
func Load(ctx context.Context, repo Repository, logger *slog.Logger) *Gazetteer {
	if repo == nil {
		return FromEmbedded(logger)
	}
	entries, err := repo.LoadPlaces(ctx)
	if err != nil {
		logger.Warn("Failed to load place corpus from database, falling back to embedded corpus", slog.Any("error", err))
		return FromEmbedded(logger)
	}
	if len(entries) == 0 {
		logger.Info("Place corpus table is empty, using embedded corpus")
		return FromEmbedded(logger)
	}
	logger.Info("Loaded place corpus from database", slog.Int("places", len(entries)))
	return New(entries)
}
