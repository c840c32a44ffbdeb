package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkarpovich/classbooker/internal/model"
	"github.com/vkarpovich/classbooker/internal/service"
	"go.uber.org/zap"
)

type fakeSlots struct {
	calls int
	list  []model.Slot
	err   error
}

func (f *fakeSlots) ComputeMonth(_ context.Context, _ int64, _ int, _ time.Month) ([]model.Slot, error) {
	f.calls++
	return f.list, f.err
}

type fakeReserver struct {
	fn func(ctx context.Context, studentID, courseID int64, date time.Time, startTime string) (*model.Booking, error)
}

func (f *fakeReserver) ReserveSlot(ctx context.Context, studentID, courseID int64, date time.Time, startTime string) (*model.Booking, error) {
	return f.fn(ctx, studentID, courseID, date, startTime)
}

func marchSlots() []model.Slot {
	return []model.Slot{
		{CourseID: 7, Date: "2026-03-02", StartTime: "09:00", EndTime: "10:00"},
		{CourseID: 7, Date: "2026-03-02", StartTime: "10:00", EndTime: "11:00"},
		{CourseID: 7, Date: "2026-03-09", StartTime: "14:00", EndTime: "15:00"},
	}
}

func okReserver() *fakeReserver {
	return &fakeReserver{
		fn: func(_ context.Context, studentID, courseID int64, _ time.Time, startTime string) (*model.Booking, error) {
			return &model.Booking{ID: 42, StudentID: studentID, CourseID: courseID, StartTime: startTime}, nil
		},
	}
}

func TestWizardHappyPath(t *testing.T) {
	provider := &fakeSlots{list: marchSlots()}
	w := NewWizard(provider, okReserver(), zap.NewNop())

	const studentID = int64(1)
	session := w.StartSession(studentID, 7)
	assert.Equal(t, StateSelectingDate, session.State)

	_, err := w.LoadMonth(context.Background(), studentID, 2026, time.March)
	require.NoError(t, err)

	require.NoError(t, w.SelectDate(studentID, "2026-03-02"))
	require.NoError(t, w.SelectTime(studentID, "10:00"))

	booking, err := w.Confirm(context.Background(), studentID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), booking.ID)

	state, _, _, err := w.Snapshot(studentID)
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, state)
}

func TestWizardLoadsMonthOnce(t *testing.T) {
	provider := &fakeSlots{list: marchSlots()}
	w := NewWizard(provider, okReserver(), zap.NewNop())

	const studentID = int64(1)
	w.StartSession(studentID, 7)

	_, err := w.LoadMonth(context.Background(), studentID, 2026, time.March)
	require.NoError(t, err)
	_, err = w.LoadMonth(context.Background(), studentID, 2026, time.March)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls, "same month must not be recomputed")

	_, err = w.LoadMonth(context.Background(), studentID, 2026, time.April)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls, "month change triggers one more fetch")
}

func TestWizardRejectsInvalidSelections(t *testing.T) {
	provider := &fakeSlots{list: marchSlots()}
	w := NewWizard(provider, okReserver(), zap.NewNop())

	const studentID = int64(1)

	err := w.SelectDate(studentID, "2026-03-02")
	assert.ErrorIs(t, err, ErrNoSession)

	w.StartSession(studentID, 7)

	err = w.SelectDate(studentID, "2026-03-02")
	assert.ErrorIs(t, err, ErrIllegalTransition, "date before month load is illegal")

	_, err = w.LoadMonth(context.Background(), studentID, 2026, time.March)
	require.NoError(t, err)

	err = w.SelectDate(studentID, "2026-03-03")
	assert.ErrorIs(t, err, ErrDateUnavailable, "date without slots is rejected")

	require.NoError(t, w.SelectDate(studentID, "2026-03-02"))

	err = w.SelectTime(studentID, "23:00")
	assert.ErrorIs(t, err, ErrTimeUnavailable)

	_, err = w.Confirm(context.Background(), studentID)
	assert.ErrorIs(t, err, ErrIllegalTransition, "confirm without selected time is illegal")
}

func TestWizardConfirmSlotTaken(t *testing.T) {
	provider := &fakeSlots{list: marchSlots()}
	reserver := &fakeReserver{
		fn: func(context.Context, int64, int64, time.Time, string) (*model.Booking, error) {
			return nil, service.ErrSlotNoLongerAvailable
		},
	}
	w := NewWizard(provider, reserver, zap.NewNop())

	const studentID = int64(1)
	w.StartSession(studentID, 7)

	_, err := w.LoadMonth(context.Background(), studentID, 2026, time.March)
	require.NoError(t, err)
	require.NoError(t, w.SelectDate(studentID, "2026-03-02"))
	require.NoError(t, w.SelectTime(studentID, "09:00"))

	_, err = w.Confirm(context.Background(), studentID)
	assert.ErrorIs(t, err, service.ErrSlotNoLongerAvailable)

	state, date, slot, err := w.Snapshot(studentID)
	require.NoError(t, err)
	assert.Equal(t, StateSelectingTime, state, "lost slot returns wizard to time selection")
	assert.Equal(t, "2026-03-02", date)
	assert.Empty(t, slot)

	// Месяц помечен устаревшим, следующий запрос перечитывает слоты
	before := provider.calls
	_, err = w.LoadMonth(context.Background(), studentID, 2026, time.March)
	require.NoError(t, err)
	assert.Equal(t, before+1, provider.calls)
}

func TestWizardConfirmBusinessErrorStaysOnConfirm(t *testing.T) {
	provider := &fakeSlots{list: marchSlots()}
	reserver := &fakeReserver{
		fn: func(context.Context, int64, int64, time.Time, string) (*model.Booking, error) {
			return nil, service.ErrInsufficientCredits
		},
	}
	w := NewWizard(provider, reserver, zap.NewNop())

	const studentID = int64(1)
	w.StartSession(studentID, 7)

	_, err := w.LoadMonth(context.Background(), studentID, 2026, time.March)
	require.NoError(t, err)
	require.NoError(t, w.SelectDate(studentID, "2026-03-02"))
	require.NoError(t, w.SelectTime(studentID, "09:00"))

	_, err = w.Confirm(context.Background(), studentID)
	assert.ErrorIs(t, err, service.ErrInsufficientCredits)

	state, _, slot, err := w.Snapshot(studentID)
	require.NoError(t, err)
	assert.Equal(t, StateConfirming, state, "business error keeps wizard on confirmation")
	assert.Equal(t, "09:00", slot)
}

func TestWizardSingleOutstandingConfirm(t *testing.T) {
	provider := &fakeSlots{list: marchSlots()}

	w := NewWizard(provider, nil, zap.NewNop())
	const studentID = int64(1)

	// Повторный Confirm, пока первый коммит в полёте, отклоняется
	// и не порождает второй запрос на резервацию
	var reserveCalls int
	w.reserver = &fakeReserver{
		fn: func(ctx context.Context, studentID, courseID int64, _ time.Time, startTime string) (*model.Booking, error) {
			reserveCalls++
			_, err := w.Confirm(ctx, studentID)
			assert.ErrorIs(t, err, ErrIllegalTransition)
			return &model.Booking{ID: 42, StudentID: studentID, CourseID: courseID, StartTime: startTime}, nil
		},
	}

	w.StartSession(studentID, 7)

	_, err := w.LoadMonth(context.Background(), studentID, 2026, time.March)
	require.NoError(t, err)
	require.NoError(t, w.SelectDate(studentID, "2026-03-02"))
	require.NoError(t, w.SelectTime(studentID, "09:00"))

	booking, err := w.Confirm(context.Background(), studentID)
	require.NoError(t, err, "the first confirm must keep its successful result")
	assert.Equal(t, int64(42), booking.ID)
	assert.Equal(t, 1, reserveCalls, "exactly one reservation request per confirm")

	state, _, _, err := w.Snapshot(studentID)
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, state)
}

func TestWizardSelectDateFromConfirmation(t *testing.T) {
	provider := &fakeSlots{list: marchSlots()}
	w := NewWizard(provider, okReserver(), zap.NewNop())

	const studentID = int64(1)
	w.StartSession(studentID, 7)

	_, err := w.LoadMonth(context.Background(), studentID, 2026, time.March)
	require.NoError(t, err)
	require.NoError(t, w.SelectDate(studentID, "2026-03-02"))
	require.NoError(t, w.SelectTime(studentID, "09:00"))

	// Выбор новой даты с шага подтверждения допустим таблицей переходов
	// и отбрасывает выбранное время
	require.NoError(t, w.SelectDate(studentID, "2026-03-09"))

	state, date, slot, err := w.Snapshot(studentID)
	require.NoError(t, err)
	assert.Equal(t, StateSelectingTime, state)
	assert.Equal(t, "2026-03-09", date)
	assert.Empty(t, slot)

	// Из терминального состояния выбор даты невозможен
	require.NoError(t, w.SelectTime(studentID, "14:00"))
	_, err = w.Confirm(context.Background(), studentID)
	require.NoError(t, err)

	err = w.SelectDate(studentID, "2026-03-02")
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestWizardDiscardsStaleConfirm(t *testing.T) {
	provider := &fakeSlots{list: marchSlots()}

	w := NewWizard(provider, nil, zap.NewNop())
	const studentID = int64(1)

	// Резервация успевает завершиться, но пользователь сбрасывает мастер
	// до возврата результата
	w.reserver = &fakeReserver{
		fn: func(_ context.Context, studentID, courseID int64, _ time.Time, _ string) (*model.Booking, error) {
			require.NoError(t, w.Reset(studentID))
			return &model.Booking{ID: 42}, nil
		},
	}

	w.StartSession(studentID, 7)

	_, err := w.LoadMonth(context.Background(), studentID, 2026, time.March)
	require.NoError(t, err)
	require.NoError(t, w.SelectDate(studentID, "2026-03-02"))
	require.NoError(t, w.SelectTime(studentID, "09:00"))

	_, err = w.Confirm(context.Background(), studentID)
	assert.ErrorIs(t, err, ErrStaleConfirm)

	state, _, _, err := w.Snapshot(studentID)
	require.NoError(t, err)
	assert.Equal(t, StateSelectingDate, state, "reset state is not touched by stale result")
}

func TestWizardBack(t *testing.T) {
	provider := &fakeSlots{list: marchSlots()}
	w := NewWizard(provider, okReserver(), zap.NewNop())

	const studentID = int64(1)
	w.StartSession(studentID, 7)

	_, err := w.LoadMonth(context.Background(), studentID, 2026, time.March)
	require.NoError(t, err)
	require.NoError(t, w.SelectDate(studentID, "2026-03-02"))
	require.NoError(t, w.SelectTime(studentID, "09:00"))

	require.NoError(t, w.Back(studentID))
	state, date, slot, err := w.Snapshot(studentID)
	require.NoError(t, err)
	assert.Equal(t, StateSelectingTime, state)
	assert.Equal(t, "2026-03-02", date)
	assert.Empty(t, slot, "back discards the selection of the abandoned step")

	require.NoError(t, w.Back(studentID))
	state, date, _, err = w.Snapshot(studentID)
	require.NoError(t, err)
	assert.Equal(t, StateSelectingDate, state)
	assert.Empty(t, date)

	assert.ErrorIs(t, w.Back(studentID), ErrIllegalTransition)
}

func TestWizardCleanup(t *testing.T) {
	provider := &fakeSlots{list: marchSlots()}
	w := NewWizard(provider, okReserver(), zap.NewNop())

	session := w.StartSession(1, 7)
	w.StartSession(2, 7)

	session.mu.Lock()
	session.updatedAt = time.Now().Add(-time.Hour)
	session.mu.Unlock()

	removed := w.Cleanup(30 * time.Minute)
	assert.Equal(t, 1, removed)

	_, _, _, err := w.Snapshot(1)
	assert.ErrorIs(t, err, ErrNoSession)

	_, _, _, err = w.Snapshot(2)
	assert.NoError(t, err)
}
