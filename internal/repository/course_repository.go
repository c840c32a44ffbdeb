package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vkarpovich/classbooker/internal/model"
)

// CourseRepository читает каталог курсов.
// Каталог ведётся внешним сервисом, поэтому здесь только чтение.
type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// GetByID получает курс по ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*model.Course, error) {
	query := `
		SELECT id, instructor_id, title, price_per_hour, is_active, created_at
		FROM courses
		WHERE id = $1
	`

	var course model.Course
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.InstructorID,
		&course.Title,
		&course.PricePerHour,
		&course.IsActive,
		&course.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by id: %w", err)
	}

	return &course, nil
}

// GetByInstructorID получает все курсы преподавателя
func (r *CourseRepository) GetByInstructorID(ctx context.Context, instructorID int64) ([]*model.Course, error) {
	query := `
		SELECT id, instructor_id, title, price_per_hour, is_active, created_at
		FROM courses
		WHERE instructor_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, instructorID)
	if err != nil {
		return nil, fmt.Errorf("get courses by instructor: %w", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		var course model.Course
		err := rows.Scan(
			&course.ID,
			&course.InstructorID,
			&course.Title,
			&course.PricePerHour,
			&course.IsActive,
			&course.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, &course)
	}

	return courses, nil
}
