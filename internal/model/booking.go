package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusScheduled BookingStatus = "scheduled" // Запланировано
	BookingStatusCompleted BookingStatus = "completed" // Занятие проведено
	BookingStatusCancelled BookingStatus = "cancelled" // Отменено
)

type Booking struct {
	ID             int64         `json:"id"`
	CourseID       int64         `json:"course_id"`
	InstructorID   int64         `json:"instructor_id"`
	StudentID      int64         `json:"student_id"`
	Date           time.Time     `json:"date"`
	StartTime      string        `json:"start_time"` // "14:00"
	DurationHours  int           `json:"duration_hours"`
	Status         BookingStatus `json:"status"`
	CreditsCharged int           `json:"credits_charged"` // равно списанию в леджере в той же транзакции
	RoomToken      uuid.UUID     `json:"room_token"`      // токен доступа к видеокомнате
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// StartsAt возвращает момент начала занятия в указанном часовом поясе
func (b *Booking) StartsAt(loc *time.Location) time.Time {
	h, m := 0, 0
	if t, err := time.Parse("15:04", b.StartTime); err == nil {
		h, m = t.Hour(), t.Minute()
	}
	return time.Date(b.Date.Year(), b.Date.Month(), b.Date.Day(), h, m, 0, 0, loc)
}
