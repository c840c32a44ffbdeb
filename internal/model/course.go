package model

import "time"

// Course представляет курс преподавателя.
// Каталог курсов ведётся внешним сервисом, здесь только чтение.
type Course struct {
	ID           int64     `json:"id"`
	InstructorID int64     `json:"instructor_id"`
	Title        string    `json:"title"`
	PricePerHour int       `json:"price_per_hour"` // кредитов за час занятия
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
