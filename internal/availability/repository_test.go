package availability

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOpenSlots(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPostgresRepositoryWithDB(mock)

	start := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"start_at", "end_at", "closer_count"}).
		AddRow(start.Add(14*time.Hour), start.Add(14*time.Hour+30*time.Minute), 2).
		AddRow(start.Add(15*time.Hour), start.Add(15*time.Hour+30*time.Minute), 1)
	mock.ExpectQuery("SELECT start_at, end_at, closer_count").
		WithArgs("org-1", 30, start, 7, 200).
		WillReturnRows(rows)

	slots, err := repo.ListOpenSlots(context.Background(), Query{
		OrgID:           "org-1",
		StartAt:         start,
		Days:            7,
		DurationMinutes: 30,
		Limit:           200,
	})
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, 2, slots[0].CloserCount)
	assert.True(t, slots[0].StartAt.Before(slots[1].StartAt))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListOpenSlotsEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPostgresRepositoryWithDB(mock)

	start := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT start_at, end_at, closer_count").
		WithArgs("org-1", 30, start, 7, 200).
		WillReturnRows(pgxmock.NewRows([]string{"start_at", "end_at", "closer_count"}))

	slots, err := repo.ListOpenSlots(context.Background(), Query{
		OrgID:           "org-1",
		StartAt:         start,
		Days:            7,
		DurationMinutes: 30,
		Limit:           200,
	})
	require.NoError(t, err)
	assert.Empty(t, slots)
}
