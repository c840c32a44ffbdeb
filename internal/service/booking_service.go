package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vkarpovich/classbooker/internal/metrics"
	"github.com/vkarpovich/classbooker/internal/model"
	"github.com/vkarpovich/classbooker/internal/repository"
	"go.uber.org/zap"
)

const uniqueViolationCode = "23505"

// BookingService выполняет жизненный цикл бронирования:
// резервирование, отмену и завершение занятия.
type BookingService struct {
	pool              *pgxpool.Pool
	courseRepo        *repository.CourseRepository
	availRepo         *repository.AvailabilityRepository
	bookingRepo       *repository.BookingRepository
	ledgerRepo        *repository.LedgerRepository
	slotService       *SlotService
	cache             MonthCache
	roomLinkBase      string
	refundCutoffHours int
	logger            *zap.Logger
	now               func() time.Time
}

func NewBookingService(
	pool *pgxpool.Pool,
	courseRepo *repository.CourseRepository,
	availRepo *repository.AvailabilityRepository,
	bookingRepo *repository.BookingRepository,
	ledgerRepo *repository.LedgerRepository,
	slotService *SlotService,
	cache MonthCache,
	roomLinkBase string,
	refundCutoffHours int,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		pool:              pool,
		courseRepo:        courseRepo,
		availRepo:         availRepo,
		bookingRepo:       bookingRepo,
		ledgerRepo:        ledgerRepo,
		slotService:       slotService,
		cache:             cache,
		roomLinkBase:      roomLinkBase,
		refundCutoffHours: refundCutoffHours,
		logger:            logger,
		now:               time.Now,
	}
}

// ReserveSlot резервирует слот для студента и списывает кредиты.
//
// Вставка бронирования и запись списания выполняются одной транзакцией:
// при конкурентных запросах на один и тот же слот ровно один выигрывает,
// проигравший получает ErrSlotNoLongerAvailable и не оставляет следа
// в леджере.
func (s *BookingService) ReserveSlot(ctx context.Context, studentID, courseID int64, date time.Time, startTime string) (*model.Booking, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil || !course.IsActive {
		return nil, ErrCourseNotFound
	}

	policy, err := s.availRepo.GetPolicy(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get policy: %w", err)
	}
	if policy == nil {
		policy = model.DefaultPolicy(courseID)
	}

	pricePerHour := course.PricePerHour
	if pricePerHour <= 0 {
		pricePerHour = 1
	}
	cost := pricePerHour * policy.SlotDurationHours

	// Перепроверяем, что запрошенный слот всё ещё в расчётной выдаче
	daySlots, err := s.slotService.ComputeForDate(ctx, courseID, date)
	if err != nil {
		return nil, fmt.Errorf("compute slots: %w", err)
	}

	var requested *model.Slot
	for i := range daySlots {
		if daySlots[i].StartTime == startTime {
			requested = &daySlots[i]
			break
		}
	}
	if requested == nil {
		return nil, ErrSlotNoLongerAvailable
	}

	balance, err := s.ledgerRepo.Balance(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	if balance < cost {
		return nil, ErrInsufficientCredits
	}

	booking := &model.Booking{
		CourseID:       courseID,
		InstructorID:   course.InstructorID,
		StudentID:      studentID,
		Date:           date,
		StartTime:      startTime,
		DurationHours:  policy.SlotDurationHours,
		Status:         model.BookingStatusScheduled,
		CreditsCharged: cost,
		RoomToken:      uuid.New(),
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Сериализуем конкурентные резервации по преподавателю и студенту.
	// Блокировки берутся в порядке возрастания id во избежание дедлока.
	if err := s.lockParties(ctx, tx, course.InstructorID, studentID); err != nil {
		return nil, err
	}

	// Решающая проверка пересечения уже под блокировкой
	overlap, err := s.bookingRepo.HasOverlapTx(ctx, tx, course.InstructorID, date, requested.StartTime, requested.EndTime, policy.BufferTimeMinutes)
	if err != nil {
		return nil, err
	}
	if overlap {
		metrics.IncReservationConflict()
		return nil, ErrSlotNoLongerAvailable
	}

	// Баланс перепроверяется под блокировкой студента
	balance, err = s.ledgerRepo.BalanceTx(ctx, tx, studentID)
	if err != nil {
		return nil, err
	}
	if balance < cost {
		return nil, ErrInsufficientCredits
	}

	if err := s.bookingRepo.CreateTx(ctx, tx, booking); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			metrics.IncReservationConflict()
			return nil, ErrSlotNoLongerAvailable
		}
		return nil, err
	}

	spend := &model.LedgerEntry{
		UserID:           studentID,
		Amount:           -cost,
		Type:             model.LedgerEntrySpend,
		RelatedBookingID: &booking.ID,
	}
	if err := s.ledgerRepo.AppendTx(ctx, tx, spend); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	metrics.IncBookingCreated()
	s.invalidateMonth(ctx, courseID, date)

	s.logger.Info("Slot reserved",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("student_id", studentID),
		zap.Int64("course_id", courseID),
		zap.String("date", date.Format(model.SlotDateLayout)),
		zap.String("start_time", startTime),
		zap.Int("credits_charged", cost),
	)

	return booking, nil
}

func (s *BookingService) lockParties(ctx context.Context, tx pgx.Tx, instructorID, studentID int64) error {
	first, second := instructorID, studentID
	if second < first {
		first, second = second, first
	}

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, first); err != nil {
		return fmt.Errorf("acquire advisory lock: %w", err)
	}
	if second != first {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, second); err != nil {
			return fmt.Errorf("acquire advisory lock: %w", err)
		}
	}

	return nil
}

// CancelBooking отменяет запланированное бронирование.
// Отменить может студент или преподаватель этого бронирования.
// Возвращает признак того, был ли сделан возврат кредитов.
func (s *BookingService) CancelBooking(ctx context.Context, actorID, bookingID int64, reason string) (bool, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return false, fmt.Errorf("get booking: %w", err)
	}

	if booking == nil {
		return false, ErrBookingNotFound
	}

	if booking.StudentID != actorID && booking.InstructorID != actorID {
		return false, ErrUnauthorized
	}

	if booking.Status != model.BookingStatusScheduled {
		return false, ErrBookingNotFound
	}

	policy, err := s.availRepo.GetPolicy(ctx, booking.CourseID)
	if err != nil {
		return false, fmt.Errorf("get policy: %w", err)
	}
	if policy == nil {
		policy = model.DefaultPolicy(booking.CourseID)
	}

	refund := s.refundEligible(booking, policy.Location())

	// Возврат равен исходной записи списания по этому бронированию
	refundAmount := booking.CreditsCharged
	if refund {
		spend, err := s.ledgerRepo.GetSpendByBookingID(ctx, booking.ID)
		if err != nil {
			return false, fmt.Errorf("get spend entry: %w", err)
		}
		if spend != nil {
			refundAmount = -spend.Amount
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updated, err := s.bookingRepo.UpdateStatusTx(ctx, tx, bookingID, model.BookingStatusScheduled, model.BookingStatusCancelled)
	if err != nil {
		return false, err
	}
	if !updated {
		// Статус сменился между чтением и обновлением
		return false, ErrBookingNotFound
	}

	if refund {
		entry := &model.LedgerEntry{
			UserID:           booking.StudentID,
			Amount:           refundAmount,
			Type:             model.LedgerEntryRefund,
			RelatedBookingID: &booking.ID,
		}
		if err := s.ledgerRepo.AppendTx(ctx, tx, entry); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	metrics.IncBookingCancelled(refund)
	s.invalidateMonth(ctx, booking.CourseID, booking.Date)

	s.logger.Info("Booking cancelled",
		zap.Int64("booking_id", bookingID),
		zap.Int64("actor_id", actorID),
		zap.Bool("refunded", refund),
		zap.String("reason", reason),
	)

	return refund, nil
}

// refundEligible решает, положен ли возврат: отмена не позднее чем за
// refundCutoffHours часов до начала занятия
func (s *BookingService) refundEligible(booking *model.Booking, loc *time.Location) bool {
	startsAt := booking.StartsAt(loc)
	cutoff := time.Duration(s.refundCutoffHours) * time.Hour
	return !s.now().After(startsAt.Add(-cutoff))
}

// CompleteClass отмечает занятие проведённым.
// Доступно только преподавателю бронирования, без эффекта в леджере.
func (s *BookingService) CompleteClass(ctx context.Context, instructorID, bookingID int64) error {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}

	if booking == nil {
		return ErrBookingNotFound
	}

	if booking.InstructorID != instructorID {
		return ErrUnauthorized
	}

	updated, err := s.bookingRepo.UpdateStatus(ctx, bookingID, model.BookingStatusScheduled, model.BookingStatusCompleted)
	if err != nil {
		return err
	}
	if !updated {
		return ErrBookingNotFound
	}

	metrics.IncBookingCompleted()

	s.logger.Info("Class completed",
		zap.Int64("booking_id", bookingID),
		zap.Int64("instructor_id", instructorID),
	)

	return nil
}

// RoomAccess возвращает ссылку на видеокомнату занятия.
// Доступно только участникам бронирования.
func (s *BookingService) RoomAccess(ctx context.Context, actorID, bookingID int64) (string, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return "", fmt.Errorf("get booking: %w", err)
	}

	if booking == nil {
		return "", ErrBookingNotFound
	}

	if booking.StudentID != actorID && booking.InstructorID != actorID {
		return "", ErrUnauthorized
	}

	return fmt.Sprintf("%s/%s", s.roomLinkBase, booking.RoomToken), nil
}

// GetStudentBookings получает все бронирования студента
func (s *BookingService) GetStudentBookings(ctx context.Context, studentID int64) ([]*model.Booking, error) {
	return s.bookingRepo.GetByStudentID(ctx, studentID)
}

// GetInstructorBookings получает все бронирования преподавателя
func (s *BookingService) GetInstructorBookings(ctx context.Context, instructorID int64) ([]*model.Booking, error) {
	return s.bookingRepo.GetByInstructorID(ctx, instructorID)
}

func (s *BookingService) invalidateMonth(ctx context.Context, courseID int64, date time.Time) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateMonth(ctx, courseID, date.Format("2006-01"))
}
