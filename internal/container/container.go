// Package container wires the application graph: config, database, corpus,
// external clients and handlers. Everything optional degrades instead of
// failing: no database means the embedded corpus and no auth routes, no
// Gemini key means no assistant route.
package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/Kmcx/histolocal/app/db"
	"github.com/Kmcx/histolocal/config"
	"github.com/Kmcx/histolocal/internal/api/assistant"
	"github.com/Kmcx/histolocal/internal/api/auth"
	"github.com/Kmcx/histolocal/internal/api/dialogue"
	"github.com/Kmcx/histolocal/internal/api/gazetteer"
	"github.com/Kmcx/histolocal/internal/api/itinerary"
	"github.com/Kmcx/histolocal/internal/api/locations"
	"github.com/Kmcx/histolocal/internal/api/routing"
	"github.com/Kmcx/histolocal/internal/api/vectorsearch"
	"github.com/Kmcx/histolocal/internal/api/weather"
)

type Container struct {
	Config *config.Config
	Logger *slog.Logger

	Pool      *pgxpool.Pool // nil when running without a database
	Gazetteer *gazetteer.Gazetteer

	DialogueHandler  dialogue.Handler
	AssistantHandler assistant.Handler // nil without a Gemini API key
	AuthHandler      auth.Handler      // nil without a database
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) *Container {
	c := &Container{Config: cfg, Logger: logger}

	var gazetteerRepo gazetteer.Repository
	if pool := connectDatabase(cfg, logger); pool != nil {
		c.Pool = pool
		gazetteerRepo = gazetteer.NewPostgresGazetteerRepo(pool, logger)

		authRepo := auth.NewPostgresAuthRepo(pool, logger)
		authService := auth.NewServiceImpl(authRepo, logger)
		c.AuthHandler = auth.NewHandlerImpl(authService, logger)
	}

	c.Gazetteer = gazetteer.Load(ctx, gazetteerRepo, logger)

	searcher := vectorsearch.NewClient(
		cfg.Services.VectorSearch.BaseURL,
		cfg.Services.VectorSearch.Collection,
		cfg.Services.VectorSearch.Timeout,
		logger,
	)
	weatherClient := weather.NewClient(
		cfg.Services.Weather.BaseURL,
		cfg.Services.Weather.Timeout,
		cfg.Services.Weather.CacheTTL,
		logger,
	)
	routeClient := routing.NewClient(
		cfg.Services.Routing.BaseURL,
		cfg.Services.Routing.Timeout,
		cfg.Services.Routing.CacheTTL,
		logger,
	)

	resolver := locations.NewResolver(c.Gazetteer, searcher, logger)
	assembler := itinerary.NewServiceImpl(c.Gazetteer, weatherClient, routeClient, logger)
	dialogueService := dialogue.NewServiceImpl(resolver, assembler, c.Gazetteer, logger)
	c.DialogueHandler = dialogue.NewHandlerImpl(dialogueService, logger)

	if aiClient, err := assistant.NewAIClient(ctx, cfg.Services.Assistant.Model, logger); err != nil {
		logger.Warn("Assistant disabled", slog.Any("error", err))
	} else {
		c.AssistantHandler = assistant.NewHandlerImpl(aiClient, logger)
	}

	return c
}

// connectDatabase returns a ready pool or nil. Any failure along the way
// (missing config, unreachable server, failed migrations) downgrades to the
// embedded corpus instead of stopping startup.
func connectDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Warn("Postgres not configured, using embedded corpus", slog.Any("error", err))
		return nil
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Warn("Database migrations failed, using embedded corpus", slog.Any("error", err))
		return nil
	}
	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Warn("Database pool init failed, using embedded corpus", slog.Any("error", err))
		return nil
	}
	if !database.WaitForDB(context.Background(), pool, logger) {
		pool.Close()
		logger.Warn("Database not reachable, using embedded corpus")
		return nil
	}
	return pool
}

func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
