package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vkarpovich/classbooker/internal/model"
	"github.com/vkarpovich/classbooker/internal/repository"
	"github.com/vkarpovich/classbooker/internal/slots"
	"go.uber.org/zap"
)

// AvailabilityService управляет правилами доступности курса.
// Все изменения доступны только преподавателю-владельцу курса.
type AvailabilityService struct {
	courseRepo *repository.CourseRepository
	availRepo  *repository.AvailabilityRepository
	logger     *zap.Logger
}

func NewAvailabilityService(
	courseRepo *repository.CourseRepository,
	availRepo *repository.AvailabilityRepository,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		courseRepo: courseRepo,
		availRepo:  availRepo,
		logger:     logger,
	}
}

// ownedCourse загружает курс и проверяет, что им владеет instructorID
func (s *AvailabilityService) ownedCourse(ctx context.Context, courseID, instructorID int64) (*model.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}

	if course == nil {
		return nil, ErrCourseNotFound
	}

	if course.InstructorID != instructorID {
		return nil, ErrUnauthorized
	}

	return course, nil
}

// AddRecurringRule создаёт еженедельное окно доступности.
// Пересечения с существующими правилами не проверяются: движок расчёта
// объединяет перекрывающиеся окна детерминированно.
func (s *AvailabilityService) AddRecurringRule(ctx context.Context, instructorID, courseID int64, weekday int, startTime, endTime string) (*model.RecurringRule, error) {
	if weekday < 0 || weekday > 6 {
		return nil, fmt.Errorf("weekday must be in 0..6, got %d", weekday)
	}
	if _, err := slots.ParseWindow(startTime, endTime); err != nil {
		return nil, fmt.Errorf("invalid rule window: %w", err)
	}

	if _, err := s.ownedCourse(ctx, courseID, instructorID); err != nil {
		return nil, err
	}

	rule := &model.RecurringRule{
		CourseID:     courseID,
		InstructorID: instructorID,
		Weekday:      weekday,
		StartTime:    startTime,
		EndTime:      endTime,
		IsActive:     true,
	}

	if err := s.availRepo.CreateRecurringRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("create recurring rule: %w", err)
	}

	s.logger.Info("Recurring rule created",
		zap.Int64("rule_id", rule.ID),
		zap.Int64("course_id", courseID),
		zap.Int("weekday", weekday),
		zap.String("start", startTime),
		zap.String("end", endTime),
	)

	return rule, nil
}

// DeactivateRecurringRule деактивирует правило владельца курса
func (s *AvailabilityService) DeactivateRecurringRule(ctx context.Context, instructorID, ruleID int64) error {
	rule, err := s.availRepo.GetRecurringRuleByID(ctx, ruleID)
	if err != nil {
		return fmt.Errorf("get recurring rule: %w", err)
	}

	if rule == nil {
		return ErrRuleNotFound
	}

	if rule.InstructorID != instructorID {
		return ErrUnauthorized
	}

	if err := s.availRepo.DeactivateRecurringRule(ctx, ruleID); err != nil {
		return fmt.Errorf("deactivate recurring rule: %w", err)
	}

	s.logger.Info("Recurring rule deactivated",
		zap.Int64("rule_id", ruleID),
		zap.Int64("instructor_id", instructorID),
	)

	return nil
}

// AddSpecificSlot создаёт разовое изменение доступности на дату
func (s *AvailabilityService) AddSpecificSlot(ctx context.Context, instructorID, courseID int64, date time.Time, startTime, endTime string, isAvailable bool, reason string) (*model.SpecificDateSlot, error) {
	if _, err := slots.ParseWindow(startTime, endTime); err != nil {
		return nil, fmt.Errorf("invalid slot window: %w", err)
	}

	if _, err := s.ownedCourse(ctx, courseID, instructorID); err != nil {
		return nil, err
	}

	slot := &model.SpecificDateSlot{
		CourseID:    courseID,
		Date:        date,
		StartTime:   startTime,
		EndTime:     endTime,
		IsAvailable: isAvailable,
		Reason:      reason,
	}

	if err := s.availRepo.CreateSpecificSlot(ctx, slot); err != nil {
		return nil, fmt.Errorf("create specific slot: %w", err)
	}

	s.logger.Info("Specific date slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("course_id", courseID),
		zap.Time("date", date),
		zap.Bool("is_available", isAvailable),
	)

	return slot, nil
}

// BlockDate блокирует дату целиком, перекрывая остальные правила
func (s *AvailabilityService) BlockDate(ctx context.Context, instructorID, courseID int64, date time.Time, reason string) (*model.BlockedDate, error) {
	if _, err := s.ownedCourse(ctx, courseID, instructorID); err != nil {
		return nil, err
	}

	blocked := &model.BlockedDate{
		CourseID: courseID,
		Date:     date,
		Reason:   reason,
	}

	if err := s.availRepo.CreateBlockedDate(ctx, blocked); err != nil {
		return nil, fmt.Errorf("create blocked date: %w", err)
	}

	s.logger.Info("Date blocked",
		zap.Int64("course_id", courseID),
		zap.Time("date", date),
		zap.String("reason", reason),
	)

	return blocked, nil
}

// UpdatePolicy обновляет политику бронирования курса.
// Значения проверяются до любого обращения к хранилищу.
func (s *AvailabilityService) UpdatePolicy(ctx context.Context, instructorID int64, policy *model.BookingPolicy) error {
	if err := policy.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPolicy, err)
	}

	if _, err := s.ownedCourse(ctx, policy.CourseID, instructorID); err != nil {
		return err
	}

	if err := s.availRepo.UpsertPolicy(ctx, policy); err != nil {
		return fmt.Errorf("upsert policy: %w", err)
	}

	s.logger.Info("Booking policy updated",
		zap.Int64("course_id", policy.CourseID),
		zap.Int("slot_duration_hours", policy.SlotDurationHours),
		zap.Int("buffer_minutes", policy.BufferTimeMinutes),
		zap.String("timezone", policy.Timezone),
	)

	return nil
}

// GetInstructorCourses возвращает курсы преподавателя
func (s *AvailabilityService) GetInstructorCourses(ctx context.Context, instructorID int64) ([]*model.Course, error) {
	courses, err := s.courseRepo.GetByInstructorID(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("get instructor courses: %w", err)
	}
	return courses, nil
}

// GetAvailability возвращает настройки доступности курса для его владельца
func (s *AvailabilityService) GetAvailability(ctx context.Context, instructorID, courseID int64) (*model.CourseAvailability, error) {
	if _, err := s.ownedCourse(ctx, courseID, instructorID); err != nil {
		return nil, err
	}

	rules, err := s.availRepo.GetRecurringRules(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get recurring rules: %w", err)
	}

	// Разовые изменения и блокировки показываем на горизонт в год
	from := time.Now().AddDate(0, 0, -1)
	to := time.Now().AddDate(1, 0, 0)

	specific, err := s.availRepo.GetSpecificSlots(ctx, courseID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get specific slots: %w", err)
	}

	blocked, err := s.availRepo.GetBlockedDates(ctx, courseID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get blocked dates: %w", err)
	}

	policy, err := s.availRepo.GetPolicy(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get policy: %w", err)
	}
	if policy == nil {
		policy = model.DefaultPolicy(courseID)
	}

	return &model.CourseAvailability{
		RecurringRules: rules,
		SpecificSlots:  specific,
		BlockedDates:   blocked,
		Policy:         policy,
	}, nil
}
