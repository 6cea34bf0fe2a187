package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type appointmentsDB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository persists booking commits.
type Repository interface {
	CreateCommitted(ctx context.Context, req CommitRequest) (*Appointment, error)
}

// PostgresRepository commits bookings transactionally.
type PostgresRepository struct {
	db appointmentsDB
}

// NewPostgresRepository creates a repository backed by pgx pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db appointmentsDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateCommitted verifies the demo request, claims slot capacity, and
// inserts the appointment row in a single transaction. Returns
// ErrRequestNotFound for an unknown request id and ErrSlotTaken when the
// slot's capacity is exhausted.
func (r *PostgresRepository) CreateCommitted(ctx context.Context, req CommitRequest) (*Appointment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var leadID string
	err = tx.QueryRow(ctx,
		`SELECT lead_id FROM demo_requests WHERE id = $1 AND org_id = $2`,
		req.RequestID, req.OrgID,
	).Scan(&leadID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("appointments: load demo request: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE availability_slots
		 SET closer_count = closer_count - 1
		 WHERE org_id = $1 AND start_at = $2 AND duration_minutes = $3 AND closer_count > 0`,
		req.OrgID, req.StartAt.UTC(), req.DurationMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("appointments: claim capacity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrSlotTaken
	}

	id := uuid.New()
	var createdAt time.Time
	err = tx.QueryRow(ctx,
		`INSERT INTO appointments (id, org_id, request_id, lead_id, start_at, duration_minutes, time_zone)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		id, req.OrgID, req.RequestID, leadID, req.StartAt.UTC(), req.DurationMinutes, req.TimeZone,
	).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("appointments: insert appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("appointments: commit tx: %w", err)
	}

	return &Appointment{
		ID:              id.String(),
		OrgID:           req.OrgID,
		RequestID:       req.RequestID,
		LeadID:          leadID,
		StartAt:         req.StartAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		TimeZone:        req.TimeZone,
		CreatedAt:       createdAt,
	}, nil
}
