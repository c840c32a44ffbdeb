package slots

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Window представляет интервал внутри суток в минутах от полуночи.
// End не включается: окно 09:00-18:00 это {540, 1080}.
type Window struct {
	Start int
	End   int
}

// ParseClock разбирает время "HH:MM" в минуты от полуночи
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %s", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}

	return hour*60 + minute, nil
}

// FormatClock форматирует минуты от полуночи обратно в "HH:MM"
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseWindow разбирает пару "HH:MM" в окно
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	if e <= s {
		return Window{}, fmt.Errorf("end time %s must be after start time %s", end, start)
	}
	return Window{Start: s, End: e}, nil
}

// Merge сортирует окна и сливает пересекающиеся и смежные.
// Пустые и вырожденные окна отбрасываются.
func Merge(windows []Window) []Window {
	var valid []Window
	for _, w := range windows {
		if w.End > w.Start {
			valid = append(valid, w)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	sort.Slice(valid, func(i, j int) bool {
		return valid[i].Start < valid[j].Start
	})

	merged := []Window{valid[0]}
	for _, w := range valid[1:] {
		last := &merged[len(merged)-1]
		if w.Start <= last.End {
			if w.End > last.End {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}

	return merged
}

// Subtract вычитает интервал cut из каждого окна.
// Окно может распасться на два, сжаться или исчезнуть целиком.
func Subtract(windows []Window, cut Window) []Window {
	if cut.End <= cut.Start {
		return windows
	}

	var result []Window
	for _, w := range windows {
		if cut.End <= w.Start || w.End <= cut.Start {
			result = append(result, w)
			continue
		}
		if w.Start < cut.Start {
			result = append(result, Window{Start: w.Start, End: cut.Start})
		}
		if cut.End < w.End {
			result = append(result, Window{Start: cut.End, End: w.End})
		}
	}

	return result
}

// SubtractAll вычитает все интервалы cuts из окон
func SubtractAll(windows []Window, cuts []Window) []Window {
	result := windows
	for _, cut := range cuts {
		result = Subtract(result, cut)
	}
	return result
}

// overlaps проверяет пересечение двух интервалов в минутах
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}
