package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkarpovich/classbooker/internal/model"
)

// newTestPool подключается к базе из TEST_DB_DSN и применяет миграции.
// Без заданного TEST_DB_DSN тест пропускается.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, goose.SetDialect("postgres"))
	db := stdlib.OpenDBFromPool(pool)
	require.NoError(t, goose.UpContext(ctx, db, "../../migrations"))
	require.NoError(t, db.Close())

	return pool
}

func createTestCourse(t *testing.T, pool *pgxpool.Pool, instructorID int64) int64 {
	t.Helper()

	var courseID int64
	err := pool.QueryRow(
		context.Background(),
		`INSERT INTO courses (instructor_id, title, price_per_hour) VALUES ($1, $2, $3) RETURNING id`,
		instructorID, "Test course", 2,
	).Scan(&courseID)
	require.NoError(t, err)

	return courseID
}

func TestHasOverlapTxBufferAcrossMidnight(t *testing.T) {
	pool := newTestPool(t)
	repo := NewBookingRepository(pool)
	ctx := context.Background()

	instructorID := time.Now().UnixNano()
	courseID := createTestCourse(t, pool, instructorID)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// Занятие 23:00-24:00: буфер в час выводит его окно за полночь
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	err = repo.CreateTx(ctx, tx, &model.Booking{
		CourseID:       courseID,
		InstructorID:   instructorID,
		StudentID:      instructorID + 1,
		Date:           date,
		StartTime:      "23:00",
		DurationHours:  1,
		Status:         model.BookingStatusScheduled,
		CreditsCharged: 2,
		RoomToken:      uuid.New(),
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	check := func(start, end string, bufferMinutes int) bool {
		tx, err := pool.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		overlap, err := repo.HasOverlapTx(ctx, tx, instructorID, date, start, end, bufferMinutes)
		require.NoError(t, err)
		return overlap
	}

	assert.True(t, check("23:00", "24:00", 0), "identical interval overlaps")
	assert.True(t, check("22:30", "23:30", 0), "partial overlap is detected")
	assert.True(t, check("22:00", "23:00", 60), "slot inside the pre-class buffer overlaps")
	assert.False(t, check("22:00", "23:00", 0), "adjacent slot without buffer does not overlap")
	assert.False(t, check("20:00", "21:00", 60), "slot outside the buffer does not overlap")

	otherDate := date.AddDate(0, 0, 1)
	tx2, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx2.Rollback(ctx)
	overlap, err := repo.HasOverlapTx(ctx, tx2, instructorID, otherDate, "23:00", "24:00", 0)
	require.NoError(t, err)
	assert.False(t, overlap, "bookings on another date do not overlap")
}
