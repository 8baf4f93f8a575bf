package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/estatelink/property-importer/internal/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	return sqlx.NewDb(mockDB, "postgres"), mock
}

func testCandidate() *domain.CandidateProperty {
	return &domain.CandidateProperty{
		ExternalID:   "ext-abc123",
		Name:         "Two-bedroom apartment",
		Description:  "Bright apartment.",
		Address:      "Partizanska 12",
		Latitude:     41.99,
		Longitude:    21.43,
		Price:        85000,
		Size:         62,
		ListingType:  domain.ListingTypeSale,
		Category:     domain.CategoryApartment,
		Orientation:  domain.DefaultOrientation,
		ReviewStatus: domain.ReviewStatusPending,
		Photos: []domain.PhotoAsset{
			{
				ID: "asset-1",
				Variants: []domain.PhotoVariant{
					{SizeTag: "small", StorageKey: "asset-1_1-small.jpg", PublicURL: "https://cdn/x-small.jpg"},
					{SizeTag: "medium", StorageKey: "asset-1_1-medium.jpg", PublicURL: "https://cdn/x-medium.jpg"},
				},
			},
		},
	}
}

func TestPropertyRepository_FindByExternalID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPropertyRepository(db)

	created := time.Now()
	mock.ExpectQuery("SELECT id, external_id, name, created_at").
		WithArgs("ext-abc123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "name", "created_at"}).
			AddRow("p1", "ext-abc123", "Two-bedroom apartment", created))

	got, err := repo.FindByExternalID(context.Background(), "ext-abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != "p1" || got.ExternalID != "ext-abc123" {
		t.Fatalf("unexpected property: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPropertyRepository_FindByExternalID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPropertyRepository(db)

	mock.ExpectQuery("SELECT id, external_id, name, created_at").
		WithArgs("ext-missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "name", "created_at"}))

	got, err := repo.FindByExternalID(context.Background(), "ext-missing")
	if err != nil {
		t.Fatalf("missing record must not be an error, got: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil property, got: %+v", got)
	}
}

func TestPropertyRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPropertyRepository(db)

	candidate := testCandidate()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO properties").
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "name", "created_at"}).
			AddRow("p1", candidate.ExternalID, candidate.Name, time.Now()))
	mock.ExpectExec("INSERT INTO property_photos").
		WithArgs("asset-1", "p1", "small", "asset-1_1-small.jpg", "https://cdn/x-small.jpg").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO property_photos").
		WithArgs("asset-1", "p1", "medium", "asset-1_1-medium.jpg", "https://cdn/x-medium.jpg").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	persisted, err := repo.Create(context.Background(), candidate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if persisted.ID != "p1" {
		t.Fatalf("unexpected persisted id: %q", persisted.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPropertyRepository_Create_UniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPropertyRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO properties").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "properties_external_id_key"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), testCandidate())
	if !errors.Is(err, ErrDuplicateProperty) {
		t.Fatalf("expected ErrDuplicateProperty, got: %v", err)
	}
}

func TestPropertyRepository_Create_PhotoInsertFailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPropertyRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO properties").
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "name", "created_at"}).
			AddRow("p1", "ext-abc123", "Two-bedroom apartment", time.Now()))
	mock.ExpectExec("INSERT INTO property_photos").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), testCandidate())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrDuplicateProperty) {
		t.Fatalf("photo failure must not masquerade as a duplicate: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
