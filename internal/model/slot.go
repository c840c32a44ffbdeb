package model

// Slot представляет вычисленный бронируемый слот.
// Это результат расчёта на момент запроса, не резервация:
// при бронировании доступность проверяется повторно.
type Slot struct {
	CourseID  int64  `json:"course_id"`
	Date      string `json:"date"`       // "2026-09-07"
	StartTime string `json:"start_time"` // "14:00"
	EndTime   string `json:"end_time"`
}

// SlotDateLayout формат даты слота
const SlotDateLayout = "2006-01-02"
