package availability

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type availabilityDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository lists open slots.
type Repository interface {
	ListOpenSlots(ctx context.Context, q Query) ([]Slot, error)
}

// PostgresRepository reads availability rows from the database.
type PostgresRepository struct {
	db availabilityDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("availability: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db availabilityDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListOpenSlots returns slots with remaining capacity inside the window,
// ordered by start time.
func (r *PostgresRepository) ListOpenSlots(ctx context.Context, q Query) ([]Slot, error) {
	query := `
		SELECT start_at, end_at, closer_count
		FROM availability_slots
		WHERE org_id = $1
		  AND duration_minutes = $2
		  AND start_at >= $3
		  AND start_at < $3 + make_interval(days => $4)
		  AND closer_count > 0
		ORDER BY start_at
		LIMIT $5
	`
	rows, err := r.db.Query(ctx, query, q.OrgID, q.DurationMinutes, q.StartAt.UTC(), q.Days, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("availability: query slots: %w", err)
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.StartAt, &s.EndAt, &s.CloserCount); err != nil {
			return nil, fmt.Errorf("availability: scan slot: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("availability: iterate slots: %w", err)
	}
	return slots, nil
}
