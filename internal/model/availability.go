package model

import "time"

// RecurringRule представляет еженедельное окно доступности курса
type RecurringRule struct {
	ID           int64     `json:"id"`
	CourseID     int64     `json:"course_id"`
	InstructorID int64     `json:"instructor_id"`
	Weekday      int       `json:"weekday"`    // 0 = Sunday, 6 = Saturday
	StartTime    string    `json:"start_time"` // "09:00"
	EndTime      string    `json:"end_time"`   // "18:00"
	IsActive     bool      `json:"is_active"`  // деактивируется, никогда не удаляется
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SpecificDateSlot представляет разовое изменение доступности на конкретную дату.
// IsAvailable=false вычитает время из окон, IsAvailable=true добавляет время,
// даже если на этот день недели нет регулярного правила.
type SpecificDateSlot struct {
	ID          int64     `json:"id"`
	CourseID    int64     `json:"course_id"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// BlockedDate полностью убирает доступность на дату, перекрывая все правила
type BlockedDate struct {
	ID        int64     `json:"id"`
	CourseID  int64     `json:"course_id"`
	Date      time.Time `json:"date"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CourseAvailability объединяет настройки доступности курса для преподавателя
type CourseAvailability struct {
	RecurringRules []*RecurringRule    `json:"recurring_rules"`
	SpecificSlots  []*SpecificDateSlot `json:"specific_slots"`
	BlockedDates   []*BlockedDate      `json:"blocked_dates"`
	Policy         *BookingPolicy      `json:"policy"`
}
