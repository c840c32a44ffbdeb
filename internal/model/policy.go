package model

import (
	"fmt"
	"time"
)

// BookingPolicy задаёт ограничения генерации слотов и окна бронирования курса
type BookingPolicy struct {
	CourseID               int64     `json:"course_id"`
	MinAdvanceBookingHours int       `json:"min_advance_booking_hours"` // минимум часов до начала слота
	MaxAdvanceBookingDays  int       `json:"max_advance_booking_days"`  // горизонт бронирования в днях
	SlotDurationHours      int       `json:"slot_duration_hours"`
	BufferTimeMinutes      int       `json:"buffer_time_minutes"` // пауза между занятиями преподавателя
	Timezone               string    `json:"timezone"`            // IANA, например "Europe/Moscow"
	UpdatedAt              time.Time `json:"updated_at"`
}

// DefaultPolicy возвращает политику по умолчанию для курса без настроек
func DefaultPolicy(courseID int64) *BookingPolicy {
	return &BookingPolicy{
		CourseID:               courseID,
		MinAdvanceBookingHours: 0,
		MaxAdvanceBookingDays:  30,
		SlotDurationHours:      1,
		BufferTimeMinutes:      0,
		Timezone:               "UTC",
	}
}

// Validate проверяет значения политики до обращения к хранилищу
func (p *BookingPolicy) Validate() error {
	if p.SlotDurationHours <= 0 {
		return fmt.Errorf("slot duration must be positive, got %d", p.SlotDurationHours)
	}
	if p.MinAdvanceBookingHours < 0 {
		return fmt.Errorf("min advance booking hours must not be negative, got %d", p.MinAdvanceBookingHours)
	}
	if p.MaxAdvanceBookingDays < 1 {
		return fmt.Errorf("max advance booking days must be at least 1, got %d", p.MaxAdvanceBookingDays)
	}
	if p.BufferTimeMinutes < 0 {
		return fmt.Errorf("buffer time minutes must not be negative, got %d", p.BufferTimeMinutes)
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", p.Timezone, err)
	}
	return nil
}

// Location возвращает часовой пояс политики
func (p *BookingPolicy) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
