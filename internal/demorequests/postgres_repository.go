package demorequests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type demoRequestDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores demo requests in the relational database.
type PostgresRepository struct {
	db demoRequestDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("demorequests: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db demoRequestDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new row, generating both the request id and lead id.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*DemoRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	requestID := uuid.New()
	leadID := uuid.New()
	query := `
		INSERT INTO demo_requests (id, lead_id, org_id, name, company, email, phone, goals, newsletter_opt_in)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		requestID,
		leadID,
		req.OrgID,
		req.Name,
		req.Company,
		req.Email,
		req.Phone,
		req.Goals,
		req.NewsletterOptIn,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("demorequests: insert failed: %w", err)
	}

	return &DemoRequest{
		RequestID:       requestID.String(),
		LeadID:          leadID.String(),
		OrgID:           req.OrgID,
		Name:            req.Name,
		Company:         req.Company,
		Email:           req.Email,
		Phone:           req.Phone,
		Goals:           req.Goals,
		NewsletterOptIn: req.NewsletterOptIn,
		CreatedAt:       createdAt,
	}, nil
}

// GetByID fetches a demo request scoped to the org.
func (r *PostgresRepository) GetByID(ctx context.Context, orgID, requestID string) (*DemoRequest, error) {
	query := `
		SELECT id, lead_id, org_id, name, company, email, phone, goals, newsletter_opt_in, created_at
		FROM demo_requests
		WHERE id = $1 AND org_id = $2
	`
	row := r.db.QueryRow(ctx, query, requestID, orgID)
	var dr DemoRequest
	if err := row.Scan(
		&dr.RequestID,
		&dr.LeadID,
		&dr.OrgID,
		&dr.Name,
		&dr.Company,
		&dr.Email,
		&dr.Phone,
		&dr.Goals,
		&dr.NewsletterOptIn,
		&dr.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("demorequests: select failed: %w", err)
	}
	return &dr, nil
}
