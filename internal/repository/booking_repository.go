package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vkarpovich/classbooker/internal/model"
)

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// start_time хранится как time, наружу отдаётся строкой "HH:MM"
const bookingColumns = `id, course_id, instructor_id, student_id, date, to_char(start_time, 'HH24:MI'), duration_hours, status, credits_charged, room_token, created_at, updated_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var booking model.Booking
	err := row.Scan(
		&booking.ID,
		&booking.CourseID,
		&booking.InstructorID,
		&booking.StudentID,
		&booking.Date,
		&booking.StartTime,
		&booking.DurationHours,
		&booking.Status,
		&booking.CreditsCharged,
		&booking.RoomToken,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CreateTx создаёт бронирование внутри транзакции.
// Частичный уникальный индекс по (instructor_id, date, start_time) для статуса
// scheduled гарантирует единственного победителя при конкурентных вставках.
func (r *BookingRepository) CreateTx(ctx context.Context, tx pgx.Tx, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (course_id, instructor_id, student_id, date, start_time, duration_hours, status, credits_charged, room_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(
		ctx, query,
		booking.CourseID,
		booking.InstructorID,
		booking.StudentID,
		booking.Date,
		booking.StartTime,
		booking.DurationHours,
		booking.Status,
		booking.CreditsCharged,
		booking.RoomToken,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// HasOverlapTx проверяет внутри транзакции, пересекается ли интервал
// [start, end) с запланированным бронированием преподавателя на эту дату.
// Буфер применяется симметрично вокруг существующих бронирований.
// Сравнение идёт по timestamp (date + time): арифметика голого time
// заворачивается через полночь и теряла бы пересечения, когда буфер
// выводит окно бронирования за границу суток.
func (r *BookingRepository) HasOverlapTx(ctx context.Context, tx pgx.Tx, instructorID int64, date time.Time, start, end string, bufferMinutes int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE instructor_id = $1
			  AND date = $2
			  AND status = 'scheduled'
			  AND (date + start_time) - make_interval(mins => $5) < (date + $4::time)
			  AND (date + $3::time) < (date + start_time) + make_interval(hours => duration_hours, mins => $5)
		)
	`

	var exists bool
	err := tx.QueryRow(ctx, query, instructorID, date, start, end, bufferMinutes).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check booking overlap: %w", err)
	}

	return exists, nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// GetScheduledByInstructor получает запланированные бронирования преподавателя
// в диапазоне дат
func (r *BookingRepository) GetScheduledByInstructor(ctx context.Context, instructorID int64, from, to time.Time) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE instructor_id = $1
		  AND status = 'scheduled'
		  AND date >= $2
		  AND date <= $3
		ORDER BY date, start_time
	`

	rows, err := r.pool.Query(ctx, query, instructorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get scheduled bookings by instructor: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// GetByStudentID получает все бронирования студента
func (r *BookingRepository) GetByStudentID(ctx context.Context, studentID int64) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE student_id = $1
		ORDER BY date DESC, start_time DESC
	`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("get bookings by student: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// GetByInstructorID получает все бронирования преподавателя
func (r *BookingRepository) GetByInstructorID(ctx context.Context, instructorID int64) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE instructor_id = $1
		ORDER BY date DESC, start_time DESC
	`

	rows, err := r.pool.Query(ctx, query, instructorID)
	if err != nil {
		return nil, fmt.Errorf("get bookings by instructor: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]*model.Booking, error) {
	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}

// UpdateStatus переводит бронирование из ожидаемого статуса в новый.
// Возвращает false если бронирование не найдено или статус уже другой.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, from, to model.BookingStatus) (bool, error) {
	result, err := r.pool.Exec(ctx, updateStatusQuery, to, id, from)
	if err != nil {
		return false, fmt.Errorf("update booking status: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// UpdateStatusTx то же, что UpdateStatus, но внутри транзакции
func (r *BookingRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int64, from, to model.BookingStatus) (bool, error) {
	result, err := tx.Exec(ctx, updateStatusQuery, to, id, from)
	if err != nil {
		return false, fmt.Errorf("update booking status: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

const updateStatusQuery = `
	UPDATE bookings
	SET status = $1, updated_at = NOW()
	WHERE id = $2 AND status = $3
`
