package common

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/estatelink/property-importer/internal/database"
	"github.com/estatelink/property-importer/internal/feed"
	"github.com/estatelink/property-importer/internal/geocode"
	"github.com/estatelink/property-importer/internal/identity"
	"github.com/estatelink/property-importer/internal/importer"
	"github.com/estatelink/property-importer/internal/inference"
	"github.com/estatelink/property-importer/internal/mapper"
	"github.com/estatelink/property-importer/internal/normalize"
	"github.com/estatelink/property-importer/internal/objectstore"
	"github.com/estatelink/property-importer/internal/photos"
	"github.com/estatelink/property-importer/internal/schedule"
)

// Pipeline bundles the long-lived pipeline components a command needs.
type Pipeline struct {
	DB           *sqlx.DB
	Orchestrator *importer.Orchestrator
	Guard        *schedule.Guard
	Runs         *database.ImportRunRepository
}

// BuildPipeline wires every pipeline stage from configuration, applies
// schema migrations, and wraps the orchestrator in the schedule guard.
func BuildPipeline(ctx context.Context, deps *CommandDeps) (*Pipeline, error) {
	cfg := deps.Config
	log := deps.Logger

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if migrateErr := database.Migrate(db); migrateErr != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", migrateErr)
	}

	store, err := objectstore.NewMinIOStore(ctx, cfg.Storage, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect object storage: %w", err)
	}

	propertyRepo := database.NewPropertyRepository(db)
	locationRepo := database.NewLocationRepository(db)
	runRepo := database.NewImportRunRepository(db)

	inferenceClient := inference.NewHTTPClient(cfg.Inference, log)

	orchestrator := importer.NewOrchestrator(importer.Deps{
		Feed:       feed.NewClient(cfg.Feed),
		Checker:    identity.NewChecker(propertyRepo),
		Normalizer: normalize.NewNormalizer(inferenceClient, log),
		Geocoder:   geocode.NewResolver(inferenceClient, locationRepo, cfg.Importer.Geocode, log),
		Photos: photos.NewPipeline(
			photos.NewHTTPDownloader(), store, cfg.Importer.MaxConcurrentImages, log),
		Mapper:    mapper.NewMapper(propertyRepo, cfg.Importer.DefaultAgencyID, log),
		Runs:      runRepo,
		BatchSize: cfg.Feed.BatchSize,
		Logger:    log,
	})

	guard := schedule.NewGuard(
		orchestrator,
		cfg.Importer.Schedule,
		cfg.Importer.Timezone,
		cfg.Importer.StopTimeout,
		log,
	)

	return &Pipeline{
		DB:           db,
		Orchestrator: orchestrator,
		Guard:        guard,
		Runs:         runRepo,
	}, nil
}

// Close releases the pipeline's long-lived resources.
func (p *Pipeline) Close() error {
	return p.DB.Close()
}
