package slots

import (
	"sort"
	"time"
)

// Policy содержит параметры генерации слотов.
// Значения берутся из политики бронирования курса.
type Policy struct {
	MinAdvanceHours   int
	MaxAdvanceDays    int
	SlotDurationHours int
	BufferMinutes     int
	Location          *time.Location
}

// DayInput содержит исходные данные расчёта для одной даты.
// Все окна заданы в минутах от полуночи этой даты.
type DayInput struct {
	Date         time.Time // полночь даты в поясе политики
	Blocked      bool      // дата полностью закрыта
	RuleWindows  []Window  // окна активных регулярных правил этого дня недели
	Additions    []Window  // разовые добавления (is_available = true)
	Subtractions []Window  // разовые вычитания (is_available = false)
	Busy         []Window  // занятые интервалы существующих бронирований
}

// Slot представляет один вычисленный слот
type Slot struct {
	Date  time.Time
	Start int // минуты от полуночи
	End   int
}

// ComputeDay вычисляет бронируемые слоты для одной даты.
//
// Порядок применения правил: (регулярные окна ∪ добавления) \ вычитания,
// затем нарезка на слоты фиксированной длины с паузой между ними, затем
// фильтры окна бронирования и занятости преподавателя. Заблокированная
// дата не даёт слотов независимо от остальных правил.
func ComputeDay(in DayInput, pol Policy, now time.Time) []Slot {
	if in.Blocked {
		return nil
	}

	windows := Merge(append(append([]Window{}, in.RuleWindows...), in.Additions...))
	windows = Merge(SubtractAll(windows, in.Subtractions))
	if len(windows) == 0 {
		return nil
	}

	slotLen := pol.SlotDurationHours * 60
	if slotLen <= 0 {
		return nil
	}
	step := slotLen + pol.BufferMinutes

	earliest := now.Add(time.Duration(pol.MinAdvanceHours) * time.Hour)
	latest := now.AddDate(0, 0, pol.MaxAdvanceDays)

	var result []Slot
	for _, w := range windows {
		// Неполный хвост окна отбрасывается
		for start := w.Start; start+slotLen <= w.End; start += step {
			end := start + slotLen

			startAt := in.Date.Add(time.Duration(start) * time.Minute)
			if startAt.Before(earliest) || startAt.After(latest) {
				continue
			}

			if overlapsBusy(start, end, in.Busy, pol.BufferMinutes) {
				continue
			}

			result = append(result, Slot{Date: in.Date, Start: start, End: end})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Start < result[j].Start
	})

	return result
}

// overlapsBusy проверяет пересечение слота с занятыми интервалами,
// буфер применяется симметрично вокруг каждого бронирования
func overlapsBusy(start, end int, busy []Window, bufferMinutes int) bool {
	for _, b := range busy {
		if overlaps(start, end, b.Start-bufferMinutes, b.End+bufferMinutes) {
			return true
		}
	}
	return false
}
