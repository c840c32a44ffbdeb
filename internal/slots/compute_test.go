package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWindow(t *testing.T, start, end string) Window {
	t.Helper()
	w, err := ParseWindow(start, end)
	require.NoError(t, err)
	return w
}

func startTimes(list []Slot) []string {
	var out []string
	for _, s := range list {
		out = append(out, FormatClock(s.Start))
	}
	return out
}

func TestComputeDay(t *testing.T) {
	// Понедельник, далеко внутри окна бронирования
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC)

	basePolicy := Policy{
		MinAdvanceHours:   0,
		MaxAdvanceDays:    30,
		SlotDurationHours: 1,
		BufferMinutes:     0,
		Location:          time.UTC,
	}

	t.Run("recurring rule is sliced into hourly slots", func(t *testing.T) {
		in := DayInput{
			Date:        monday,
			RuleWindows: []Window{mustWindow(t, "09:00", "12:00")},
		}

		got := ComputeDay(in, basePolicy, now)
		assert.Equal(t, []string{"09:00", "10:00", "11:00"}, startTimes(got))
	})

	t.Run("buffer spaces out consecutive slots", func(t *testing.T) {
		pol := basePolicy
		pol.BufferMinutes = 30

		in := DayInput{
			Date:        monday,
			RuleWindows: []Window{mustWindow(t, "09:00", "12:00")},
		}

		got := ComputeDay(in, pol, now)
		assert.Equal(t, []string{"09:00", "10:30"}, startTimes(got))
	})

	t.Run("trailing partial slot is discarded", func(t *testing.T) {
		in := DayInput{
			Date:        monday,
			RuleWindows: []Window{mustWindow(t, "09:00", "10:30")},
		}

		got := ComputeDay(in, basePolicy, now)
		assert.Equal(t, []string{"09:00"}, startTimes(got))
	})

	t.Run("blocked date yields no slots", func(t *testing.T) {
		in := DayInput{
			Date:        monday,
			Blocked:     true,
			RuleWindows: []Window{mustWindow(t, "09:00", "18:00")},
			Additions:   []Window{mustWindow(t, "19:00", "21:00")},
		}

		assert.Nil(t, ComputeDay(in, basePolicy, now))
	})

	t.Run("addition opens a day without recurring rules", func(t *testing.T) {
		in := DayInput{
			Date:      monday,
			Additions: []Window{mustWindow(t, "14:00", "16:00")},
		}

		got := ComputeDay(in, basePolicy, now)
		assert.Equal(t, []string{"14:00", "15:00"}, startTimes(got))
	})

	t.Run("subtraction removes every overlapping slot", func(t *testing.T) {
		in := DayInput{
			Date:         monday,
			RuleWindows:  []Window{mustWindow(t, "09:00", "12:00")},
			Subtractions: []Window{mustWindow(t, "10:30", "11:00")},
		}

		// Слот 10:00-11:00 пересекает вычитание и исчезает, остаток
		// окна после 11:00 даёт целый слот
		got := ComputeDay(in, basePolicy, now)
		assert.Equal(t, []string{"09:00", "11:00"}, startTimes(got))
	})

	t.Run("existing booking removes its slot", func(t *testing.T) {
		in := DayInput{
			Date:        monday,
			RuleWindows: []Window{mustWindow(t, "09:00", "13:00")},
			Busy:        []Window{{Start: 600, End: 660}}, // 10:00-11:00
		}

		got := ComputeDay(in, basePolicy, now)
		assert.Equal(t, []string{"09:00", "11:00", "12:00"}, startTimes(got))
	})

	t.Run("buffer applies symmetrically around bookings", func(t *testing.T) {
		pol := basePolicy
		pol.BufferMinutes = 30

		in := DayInput{
			Date:        monday,
			RuleWindows: []Window{mustWindow(t, "09:00", "14:00")},
			Busy:        []Window{{Start: 660, End: 720}}, // 11:00-12:00
		}

		// 10:30-11:30 и 12:00-13:00 нарушают паузу вокруг бронирования
		got := ComputeDay(in, pol, now)
		assert.Equal(t, []string{"09:00"}, startTimes(got))
	})

	t.Run("min advance hides too-close slots", func(t *testing.T) {
		pol := basePolicy
		pol.MinAdvanceHours = 2
		sameDay := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)

		in := DayInput{
			Date:        monday,
			RuleWindows: []Window{mustWindow(t, "09:00", "13:00")},
		}

		got := ComputeDay(in, pol, sameDay)
		assert.Equal(t, []string{"11:00", "12:00"}, startTimes(got))
	})

	t.Run("date beyond booking horizon yields no slots", func(t *testing.T) {
		farDay := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

		in := DayInput{
			Date:        farDay,
			RuleWindows: []Window{mustWindow(t, "09:00", "18:00")},
		}

		assert.Empty(t, ComputeDay(in, basePolicy, now))
	})

	t.Run("overlapping rule and addition merge deterministically", func(t *testing.T) {
		in := DayInput{
			Date:        monday,
			RuleWindows: []Window{mustWindow(t, "09:00", "11:00")},
			Additions:   []Window{mustWindow(t, "10:00", "13:00")},
		}

		got := ComputeDay(in, basePolicy, now)
		assert.Equal(t, []string{"09:00", "10:00", "11:00", "12:00"}, startTimes(got))
	})
}
