package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/estatelink/property-importer/internal/domain"
)

func TestImportRunRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImportRunRepository(db)

	run := &domain.ImportRun{
		TriggeredBy: domain.TriggerCron,
		Status:      domain.RunStatusRunning,
		StartedAt:   time.Now(),
	}

	mock.ExpectQuery("INSERT INTO import_runs").
		WithArgs(run.TriggeredBy, string(run.Status), run.StartedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("run-1"))

	if err := repo.Create(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.ID != "run-1" {
		t.Fatalf("run ID not filled, got: %q", run.ID)
	}
}

func TestImportRunRepository_Finish(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImportRunRepository(db)

	finished := time.Now()
	run := &domain.ImportRun{
		ID:         "run-1",
		Status:     domain.RunStatusSucceeded,
		Processed:  10,
		Created:    7,
		Duplicates: 2,
		Failed:     1,
		FinishedAt: &finished,
	}

	mock.ExpectExec("UPDATE import_runs").
		WithArgs(run.ID, string(run.Status), run.Processed, run.Created,
			run.Duplicates, run.Failed, run.Error, run.FinishedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Finish(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestImportRunRepository_ListRecent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImportRunRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT id, triggered_by, status").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "triggered_by", "status", "processed", "created",
			"duplicates", "failed", "error", "started_at", "finished_at",
		}).
			AddRow("run-2", "manual", "succeeded", 5, 5, 0, 0, nil, now, &now).
			AddRow("run-1", "cron", "failed", 0, 0, 0, 0, "feed returned 502", now.Add(-time.Hour), &now))

	runs, err := repo.ListRecent(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-2" || runs[1].Status != domain.RunStatusFailed {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if runs[1].Error == nil || *runs[1].Error != "feed returned 502" {
		t.Fatalf("error column not scanned: %+v", runs[1])
	}
}

func TestLocationRepository_ListLocations(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLocationRepository(db)

	parent := "l0"
	mock.ExpectQuery("SELECT id, name, parent_id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "parent_id"}).
			AddRow("l1", "Aerodrom", parent).
			AddRow("l2", "Centar", nil))

	locations, err := repo.ListLocations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(locations))
	}
	if locations[0].Name != "Aerodrom" || locations[1].ParentID != nil {
		t.Fatalf("unexpected locations: %+v", locations)
	}
}
