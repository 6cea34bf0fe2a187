package demorequests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestPostgresCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithDB(mock)

	createdAt := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO demo_requests").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "org-1", "Ada Example", "Example Labs", "ada@example.com", "+15551234567", "automate follow-ups", true).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	dr, err := repo.Create(context.Background(), &CreateRequest{
		OrgID:           "org-1",
		Name:            "Ada Example",
		Company:         "Example Labs",
		Email:           "ada@example.com",
		Phone:           "+15551234567",
		Goals:           "automate follow-ups",
		NewsletterOptIn: true,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if dr.RequestID == "" || dr.LeadID == "" {
		t.Fatalf("expected generated ids, got %#v", dr)
	}
	if !dr.CreatedAt.Equal(createdAt) {
		t.Errorf("expected created_at %v, got %v", createdAt, dr.CreatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresCreateValidatesFirst(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithDB(mock)
	if _, err := repo.Create(context.Background(), &CreateRequest{OrgID: "org-1"}); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("validation must not reach the database: %v", err)
	}
}

func TestPostgresGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithDB(mock)

	requestID := uuid.New().String()
	leadID := uuid.New().String()
	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "lead_id", "org_id", "name", "company", "email", "phone", "goals", "newsletter_opt_in", "created_at"}).
		AddRow(requestID, leadID, "org-1", "Ada Example", "Example Labs", "ada@example.com", "+15551234567", "", false, createdAt)
	mock.ExpectQuery("SELECT id, lead_id").WithArgs(requestID, "org-1").WillReturnRows(rows)

	dr, err := repo.GetByID(context.Background(), "org-1", requestID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if dr.LeadID != leadID {
		t.Errorf("expected lead id %s, got %s", leadID, dr.LeadID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithDB(mock)

	mock.ExpectQuery("SELECT id, lead_id").
		WithArgs("missing", "org-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "lead_id", "org_id", "name", "company", "email", "phone", "goals", "newsletter_opt_in", "created_at"}))

	if _, err := repo.GetByID(context.Background(), "org-1", "missing"); err != ErrRequestNotFound {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}
