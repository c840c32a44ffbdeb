package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vkarpovich/classbooker/internal/metrics"
	"github.com/vkarpovich/classbooker/internal/model"
	"github.com/vkarpovich/classbooker/internal/repository"
	"github.com/vkarpovich/classbooker/internal/slots"
	"go.uber.org/zap"
)

// MonthCache кэширует вычисленные слоты помесячно.
// Ключ месяца имеет формат "2006-01".
type MonthCache interface {
	GetMonth(ctx context.Context, courseID int64, monthKey string) ([]model.Slot, bool)
	SetMonth(ctx context.Context, courseID int64, monthKey string, list []model.Slot)
	InvalidateMonth(ctx context.Context, courseID int64, monthKey string)
}

// SlotService вычисляет бронируемые слоты курса.
// Расчёт read-only и ничего не резервирует: при бронировании
// доступность перепроверяется в транзакции.
type SlotService struct {
	courseRepo  *repository.CourseRepository
	availRepo   *repository.AvailabilityRepository
	bookingRepo *repository.BookingRepository
	cache       MonthCache
	logger      *zap.Logger
	now         func() time.Time
}

func NewSlotService(
	courseRepo *repository.CourseRepository,
	availRepo *repository.AvailabilityRepository,
	bookingRepo *repository.BookingRepository,
	cache MonthCache,
	logger *zap.Logger,
) *SlotService {
	return &SlotService{
		courseRepo:  courseRepo,
		availRepo:   availRepo,
		bookingRepo: bookingRepo,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
	}
}

// ComputeRange вычисляет слоты курса для диапазона дат включительно.
// Результат сгруппирован и отсортирован по дате, затем по времени.
func (s *SlotService) ComputeRange(ctx context.Context, courseID int64, from, to time.Time) ([]model.Slot, error) {
	metrics.IncSlotComputation()

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}

	policy, err := s.availRepo.GetPolicy(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get policy: %w", err)
	}
	if policy == nil {
		policy = model.DefaultPolicy(courseID)
	}
	loc := policy.Location()

	rules, err := s.availRepo.GetActiveRecurringRules(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get recurring rules: %w", err)
	}

	specific, err := s.availRepo.GetSpecificSlots(ctx, courseID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get specific slots: %w", err)
	}

	blocked, err := s.availRepo.GetBlockedDates(ctx, courseID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get blocked dates: %w", err)
	}

	bookings, err := s.bookingRepo.GetScheduledByInstructor(ctx, course.InstructorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get scheduled bookings: %w", err)
	}

	ruleWindows := make(map[int][]slots.Window)
	for _, rule := range rules {
		w, err := slots.ParseWindow(rule.StartTime, rule.EndTime)
		if err != nil {
			s.logger.Warn("Skipping recurring rule with invalid window",
				zap.Int64("rule_id", rule.ID),
				zap.Error(err))
			continue
		}
		ruleWindows[rule.Weekday] = append(ruleWindows[rule.Weekday], w)
	}

	additions := make(map[string][]slots.Window)
	subtractions := make(map[string][]slots.Window)
	for _, sp := range specific {
		w, err := slots.ParseWindow(sp.StartTime, sp.EndTime)
		if err != nil {
			s.logger.Warn("Skipping specific slot with invalid window",
				zap.Int64("slot_id", sp.ID),
				zap.Error(err))
			continue
		}
		key := sp.Date.Format(model.SlotDateLayout)
		if sp.IsAvailable {
			additions[key] = append(additions[key], w)
		} else {
			subtractions[key] = append(subtractions[key], w)
		}
	}

	blockedDates := make(map[string]bool)
	for _, b := range blocked {
		blockedDates[b.Date.Format(model.SlotDateLayout)] = true
	}

	busy := make(map[string][]slots.Window)
	for _, b := range bookings {
		start, err := slots.ParseClock(b.StartTime)
		if err != nil {
			continue
		}
		key := b.Date.Format(model.SlotDateLayout)
		busy[key] = append(busy[key], slots.Window{
			Start: start,
			End:   start + b.DurationHours*60,
		})
	}

	pol := slots.Policy{
		MinAdvanceHours:   policy.MinAdvanceBookingHours,
		MaxAdvanceDays:    policy.MaxAdvanceBookingDays,
		SlotDurationHours: policy.SlotDurationHours,
		BufferMinutes:     policy.BufferTimeMinutes,
		Location:          loc,
	}
	now := s.now()

	var result []model.Slot
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(model.SlotDateLayout)
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)

		in := slots.DayInput{
			Date:         day,
			Blocked:      blockedDates[key],
			RuleWindows:  ruleWindows[int(day.Weekday())],
			Additions:    additions[key],
			Subtractions: subtractions[key],
			Busy:         busy[key],
		}

		for _, slot := range slots.ComputeDay(in, pol, now) {
			result = append(result, model.Slot{
				CourseID:  courseID,
				Date:      key,
				StartTime: slots.FormatClock(slot.Start),
				EndTime:   slots.FormatClock(slot.End),
			})
		}
	}

	return result, nil
}

// ComputeForDate вычисляет слоты курса на одну дату
func (s *SlotService) ComputeForDate(ctx context.Context, courseID int64, date time.Time) ([]model.Slot, error) {
	return s.ComputeRange(ctx, courseID, date, date)
}

// ComputeMonth вычисляет слоты курса на календарный месяц с кэшированием.
// Кэш инвалидируется при коммите бронирования в этом месяце.
func (s *SlotService) ComputeMonth(ctx context.Context, courseID int64, year int, month time.Month) ([]model.Slot, error) {
	monthKey := fmt.Sprintf("%04d-%02d", year, int(month))

	if s.cache != nil {
		if cached, ok := s.cache.GetMonth(ctx, courseID, monthKey); ok {
			metrics.IncSlotCacheHit()
			return cached, nil
		}
		metrics.IncSlotCacheMiss()
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	result, err := s.ComputeRange(ctx, courseID, first, last)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetMonth(ctx, courseID, monthKey, result)
	}

	return result, nil
}
