// Package importer drives the property import pipeline: it fetches the
// source feed, walks every listing through the per-listing stages, and
// aggregates run statistics.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/estatelink/property-importer/internal/domain"
	"github.com/estatelink/property-importer/internal/identity"
	"github.com/estatelink/property-importer/internal/logger"
	"github.com/estatelink/property-importer/internal/mapper"
	"github.com/estatelink/property-importer/internal/photos"
)

// FeedSource fetches the raw listing feed.
type FeedSource interface {
	Fetch(ctx context.Context) ([]domain.SourceRecord, error)
}

// DuplicateChecker looks a dedup key up against the destination store.
type DuplicateChecker interface {
	CheckDuplicate(ctx context.Context, externalID string) (*domain.Property, error)
}

// Normalizer extracts structured fields from listing text.
type Normalizer interface {
	Normalize(ctx context.Context, rec domain.SourceRecord) (*domain.NormalizedListing, error)
	ExtractReferenceCode(ctx context.Context, title, description string) (*string, error)
}

// Geocoder resolves location text to coordinates and hierarchy nodes.
type Geocoder interface {
	Resolve(ctx context.Context, locationText, addressText string) domain.GeocodeResult
	MapToLocationNode(ctx context.Context, locationText string) (*domain.Location, error)
}

// PhotoProcessor runs the image pipeline for one listing's URLs.
type PhotoProcessor interface {
	ProcessAll(ctx context.Context, urls []string) ([]domain.PhotoAsset, []photos.FailedPhoto)
}

// Mapper shapes, validates, and persists the destination record.
type Mapper interface {
	ToRecord(
		rec domain.SourceRecord,
		externalID string,
		normalized *domain.NormalizedListing,
		geo domain.GeocodeResult,
		assets []domain.PhotoAsset,
	) *domain.CandidateProperty
	Persist(ctx context.Context, candidate *domain.CandidateProperty) (*domain.Property, error)
}

// RunRecorder persists run records for operator history.
type RunRecorder interface {
	Create(ctx context.Context, run *domain.ImportRun) error
	Finish(ctx context.Context, run *domain.ImportRun) error
}

// Orchestrator is the top-level pipeline driver.
type Orchestrator struct {
	feed       FeedSource
	checker    DuplicateChecker
	normalizer Normalizer
	geocoder   Geocoder
	photos     PhotoProcessor
	mapper     Mapper
	runs       RunRecorder
	batchSize  int
	logger     logger.Interface
}

// Deps wires the pipeline stages into the orchestrator.
type Deps struct {
	Feed       FeedSource
	Checker    DuplicateChecker
	Normalizer Normalizer
	Geocoder   Geocoder
	Photos     PhotoProcessor
	Mapper     Mapper
	Runs       RunRecorder
	BatchSize  int
	Logger     logger.Interface
}

// NewOrchestrator constructs the pipeline driver.
func NewOrchestrator(deps Deps) *Orchestrator {
	batchSize := deps.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Orchestrator{
		feed:       deps.Feed,
		checker:    deps.Checker,
		normalizer: deps.Normalizer,
		geocoder:   deps.Geocoder,
		photos:     deps.Photos,
		mapper:     deps.Mapper,
		runs:       deps.Runs,
		batchSize:  batchSize,
		logger:     deps.Logger.WithComponent("importer"),
	}
}

// listingOutcome is the terminal state of one listing.
type listingOutcome int

const (
	outcomeCreated listingOutcome = iota
	outcomeDuplicate
	outcomeFailed
)

// Run executes one full import. Per-listing failures are folded into run
// statistics; only feed or run-record infrastructure failures abort the run.
func (o *Orchestrator) Run(ctx context.Context, triggeredBy string) (*domain.ImportRun, error) {
	run := &domain.ImportRun{
		TriggeredBy: triggeredBy,
		Status:      domain.RunStatusRunning,
		StartedAt:   time.Now(),
	}

	if err := o.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("record run start: %w", err)
	}

	records, err := o.feed.Fetch(ctx)
	if err != nil {
		o.finishRun(run, err)
		return run, fmt.Errorf("fetch feed: %w", err)
	}

	o.logger.Info("import run started",
		"run_id", run.ID,
		"triggered_by", triggeredBy,
		"listings", len(records))

	for i, rec := range records {
		if ctxErr := ctx.Err(); ctxErr != nil {
			o.finishRun(run, fmt.Errorf("run interrupted: %w", ctxErr))
			return run, ctxErr
		}

		outcome := o.processListing(ctx, rec)
		run.Processed++
		switch outcome {
		case outcomeCreated:
			run.Created++
		case outcomeDuplicate:
			run.Duplicates++
		case outcomeFailed:
			run.Failed++
		}

		if (i+1)%o.batchSize == 0 {
			o.logger.Info("import progress",
				"run_id", run.ID,
				"processed", run.Processed,
				"created", run.Created,
				"duplicates", run.Duplicates,
				"failed", run.Failed)
		}
	}

	o.finishRun(run, nil)
	o.logger.Info("import run finished",
		"run_id", run.ID,
		"status", run.Status,
		"processed", run.Processed,
		"created", run.Created,
		"duplicates", run.Duplicates,
		"failed", run.Failed)

	return run, nil
}

// processListing walks one record through the per-listing state machine:
// identified → duplicate|normalized → geocoded → imaged → mapped →
// persisted|failed. Any stage error is caught here and demoted to a
// counted, logged failure.
func (o *Orchestrator) processListing(ctx context.Context, rec domain.SourceRecord) listingOutcome {
	externalID := identity.ComputeID(rec)
	log := o.logger.With("external_id", externalID, "title", rec.Title)

	existing, err := o.checker.CheckDuplicate(ctx, externalID)
	if err != nil {
		log.Error("duplicate check failed", "stage", "identified", "error", err)
		return outcomeFailed
	}
	if existing != nil {
		log.Debug("listing already imported, skipping")
		return outcomeDuplicate
	}

	normalized, err := o.normalizer.Normalize(ctx, rec)
	if err != nil {
		log.Error("normalization failed", "stage", "normalized", "error", err)
		return outcomeFailed
	}

	// Reference-code extraction is enrichment; its failure never fails the
	// listing.
	refCode, refErr := o.normalizer.ExtractReferenceCode(ctx, rec.Title, rec.Description)
	if refErr != nil {
		log.Warn("reference code extraction failed", "error", refErr)
	} else {
		normalized.ReferenceCode = refCode
	}

	geo := o.geocoder.Resolve(ctx, rec.Location, rec.Address)
	node, nodeErr := o.geocoder.MapToLocationNode(ctx, rec.Location)
	if nodeErr != nil {
		log.Warn("location node mapping failed", "error", nodeErr)
	} else if node != nil {
		geo.LocationID = &node.ID
	}

	assets, photoFailures := o.photos.ProcessAll(ctx, rec.ImageURLs)
	if len(photoFailures) > 0 {
		log.Warn("some photos discarded",
			"stage", "imaged",
			"kept", len(assets),
			"discarded", len(photoFailures))
	}

	candidate := o.mapper.ToRecord(rec, externalID, normalized, geo, assets)
	if _, persistErr := o.mapper.Persist(ctx, candidate); persistErr != nil {
		if errors.Is(persistErr, mapper.ErrDuplicate) {
			return outcomeDuplicate
		}

		var validationErr *mapper.ValidationError
		if errors.As(persistErr, &validationErr) {
			log.Error("validation failed",
				"stage", "mapped",
				"missing_fields", validationErr.MissingFields)
			return outcomeFailed
		}

		log.Error("persistence failed", "stage", "persisted", "error", persistErr)
		return outcomeFailed
	}

	return outcomeCreated
}

// finishRun finalizes counters and status in all exit paths.
func (o *Orchestrator) finishRun(run *domain.ImportRun, runErr error) {
	now := time.Now()
	run.FinishedAt = &now
	if runErr != nil {
		run.Status = domain.RunStatusFailed
		msg := runErr.Error()
		run.Error = &msg
	} else {
		run.Status = domain.RunStatusSucceeded
	}

	// Finalization must not mask the run outcome; use a fresh context so a
	// canceled run still records its terminal state.
	finishCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := o.runs.Finish(finishCtx, run); err != nil {
		o.logger.Error("failed to record run completion", "run_id", run.ID, "error", err)
	}
}
