package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vkarpovich/classbooker/internal/model"
)

// AvailabilityRepository управляет правилами доступности курсов:
// регулярными правилами, разовыми изменениями, заблокированными датами
// и политикой бронирования
type AvailabilityRepository struct {
	pool *pgxpool.Pool
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

// CreateRecurringRule создаёт регулярное правило доступности
func (r *AvailabilityRepository) CreateRecurringRule(ctx context.Context, rule *model.RecurringRule) error {
	query := `
		INSERT INTO recurring_rules (course_id, instructor_id, weekday, start_time, end_time, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		rule.CourseID,
		rule.InstructorID,
		rule.Weekday,
		rule.StartTime,
		rule.EndTime,
		rule.IsActive,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create recurring rule: %w", err)
	}

	return nil
}

// GetRecurringRuleByID получает регулярное правило по ID
func (r *AvailabilityRepository) GetRecurringRuleByID(ctx context.Context, id int64) (*model.RecurringRule, error) {
	query := `
		SELECT id, course_id, instructor_id, weekday, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), is_active, created_at, updated_at
		FROM recurring_rules
		WHERE id = $1
	`

	var rule model.RecurringRule
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rule.ID,
		&rule.CourseID,
		&rule.InstructorID,
		&rule.Weekday,
		&rule.StartTime,
		&rule.EndTime,
		&rule.IsActive,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get recurring rule by id: %w", err)
	}

	return &rule, nil
}

// GetActiveRecurringRules получает активные регулярные правила курса
func (r *AvailabilityRepository) GetActiveRecurringRules(ctx context.Context, courseID int64) ([]*model.RecurringRule, error) {
	query := `
		SELECT id, course_id, instructor_id, weekday, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), is_active, created_at, updated_at
		FROM recurring_rules
		WHERE course_id = $1 AND is_active = TRUE
		ORDER BY weekday, start_time
	`

	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("get active recurring rules: %w", err)
	}
	defer rows.Close()

	return scanRecurringRules(rows)
}

// GetRecurringRules получает все регулярные правила курса, включая неактивные
func (r *AvailabilityRepository) GetRecurringRules(ctx context.Context, courseID int64) ([]*model.RecurringRule, error) {
	query := `
		SELECT id, course_id, instructor_id, weekday, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), is_active, created_at, updated_at
		FROM recurring_rules
		WHERE course_id = $1
		ORDER BY weekday, start_time
	`

	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("get recurring rules: %w", err)
	}
	defer rows.Close()

	return scanRecurringRules(rows)
}

func scanRecurringRules(rows pgx.Rows) ([]*model.RecurringRule, error) {
	var rules []*model.RecurringRule
	for rows.Next() {
		var rule model.RecurringRule
		err := rows.Scan(
			&rule.ID,
			&rule.CourseID,
			&rule.InstructorID,
			&rule.Weekday,
			&rule.StartTime,
			&rule.EndTime,
			&rule.IsActive,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan recurring rule: %w", err)
		}
		rules = append(rules, &rule)
	}
	return rules, nil
}

// DeactivateRecurringRule деактивирует регулярное правило.
// Правило не удаляется: на него могут ссылаться прошедшие бронирования.
func (r *AvailabilityRepository) DeactivateRecurringRule(ctx context.Context, id int64) error {
	query := `
		UPDATE recurring_rules
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate recurring rule: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("recurring rule not found")
	}

	return nil
}

// CreateSpecificSlot создаёт разовое изменение доступности на дату
func (r *AvailabilityRepository) CreateSpecificSlot(ctx context.Context, slot *model.SpecificDateSlot) error {
	query := `
		INSERT INTO specific_date_slots (course_id, date, start_time, end_time, is_available, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		slot.CourseID,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.IsAvailable,
		slot.Reason,
	).Scan(&slot.ID, &slot.CreatedAt)

	if err != nil {
		return fmt.Errorf("create specific date slot: %w", err)
	}

	return nil
}

// GetSpecificSlots получает разовые изменения курса в диапазоне дат
func (r *AvailabilityRepository) GetSpecificSlots(ctx context.Context, courseID int64, from, to time.Time) ([]*model.SpecificDateSlot, error) {
	query := `
		SELECT id, course_id, date, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), is_available, reason, created_at
		FROM specific_date_slots
		WHERE course_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date, start_time
	`

	rows, err := r.pool.Query(ctx, query, courseID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get specific date slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.SpecificDateSlot
	for rows.Next() {
		var slot model.SpecificDateSlot
		err := rows.Scan(
			&slot.ID,
			&slot.CourseID,
			&slot.Date,
			&slot.StartTime,
			&slot.EndTime,
			&slot.IsAvailable,
			&slot.Reason,
			&slot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan specific date slot: %w", err)
		}
		slots = append(slots, &slot)
	}

	return slots, nil
}

// CreateBlockedDate блокирует дату целиком
func (r *AvailabilityRepository) CreateBlockedDate(ctx context.Context, blocked *model.BlockedDate) error {
	query := `
		INSERT INTO blocked_dates (course_id, date, reason)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		blocked.CourseID,
		blocked.Date,
		blocked.Reason,
	).Scan(&blocked.ID, &blocked.CreatedAt)

	if err != nil {
		return fmt.Errorf("create blocked date: %w", err)
	}

	return nil
}

// GetBlockedDates получает заблокированные даты курса в диапазоне
func (r *AvailabilityRepository) GetBlockedDates(ctx context.Context, courseID int64, from, to time.Time) ([]*model.BlockedDate, error) {
	query := `
		SELECT id, course_id, date, reason, created_at
		FROM blocked_dates
		WHERE course_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date
	`

	rows, err := r.pool.Query(ctx, query, courseID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get blocked dates: %w", err)
	}
	defer rows.Close()

	var dates []*model.BlockedDate
	for rows.Next() {
		var blocked model.BlockedDate
		err := rows.Scan(
			&blocked.ID,
			&blocked.CourseID,
			&blocked.Date,
			&blocked.Reason,
			&blocked.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan blocked date: %w", err)
		}
		dates = append(dates, &blocked)
	}

	return dates, nil
}

// UpsertPolicy создаёт или обновляет политику бронирования курса
func (r *AvailabilityRepository) UpsertPolicy(ctx context.Context, policy *model.BookingPolicy) error {
	query := `
		INSERT INTO booking_policies (course_id, min_advance_booking_hours, max_advance_booking_days, slot_duration_hours, buffer_time_minutes, timezone, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (course_id) DO UPDATE SET
			min_advance_booking_hours = EXCLUDED.min_advance_booking_hours,
			max_advance_booking_days = EXCLUDED.max_advance_booking_days,
			slot_duration_hours = EXCLUDED.slot_duration_hours,
			buffer_time_minutes = EXCLUDED.buffer_time_minutes,
			timezone = EXCLUDED.timezone,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		policy.CourseID,
		policy.MinAdvanceBookingHours,
		policy.MaxAdvanceBookingDays,
		policy.SlotDurationHours,
		policy.BufferTimeMinutes,
		policy.Timezone,
	).Scan(&policy.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert booking policy: %w", err)
	}

	return nil
}

// GetPolicy получает политику бронирования курса
func (r *AvailabilityRepository) GetPolicy(ctx context.Context, courseID int64) (*model.BookingPolicy, error) {
	query := `
		SELECT course_id, min_advance_booking_hours, max_advance_booking_days, slot_duration_hours, buffer_time_minutes, timezone, updated_at
		FROM booking_policies
		WHERE course_id = $1
	`

	var policy model.BookingPolicy
	err := r.pool.QueryRow(ctx, query, courseID).Scan(
		&policy.CourseID,
		&policy.MinAdvanceBookingHours,
		&policy.MaxAdvanceBookingDays,
		&policy.SlotDurationHours,
		&policy.BufferTimeMinutes,
		&policy.Timezone,
		&policy.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking policy: %w", err)
	}

	return &policy, nil
}
