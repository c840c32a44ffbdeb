package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vkarpovich/classbooker/internal/model"
	"github.com/vkarpovich/classbooker/internal/service"
	"go.uber.org/zap"
)

// Ошибки мастера бронирования
var (
	ErrNoSession         = errors.New("no active wizard session")
	ErrIllegalTransition = errors.New("action is not allowed in the current step")
	ErrDateUnavailable   = errors.New("selected date has no available slots")
	ErrTimeUnavailable   = errors.New("selected time is not in the available slots")
	ErrStaleConfirm      = errors.New("confirm result discarded: session was reset")
)

// SlotsProvider вычисляет слоты курса на календарный месяц
type SlotsProvider interface {
	ComputeMonth(ctx context.Context, courseID int64, year int, month time.Month) ([]model.Slot, error)
}

// Reserver выполняет коммит бронирования
type Reserver interface {
	ReserveSlot(ctx context.Context, studentID, courseID int64, date time.Time, startTime string) (*model.Booking, error)
}

// Session хранит продвижение одного студента по мастеру бронирования
type Session struct {
	StudentID int64
	CourseID  int64
	State     State
	Booking   *model.Booking
	LastErr   error

	year        int
	month       time.Month
	monthLoaded bool
	byDate      map[string][]model.Slot

	date string
	slot string

	// confirmTag помечает текущий in-flight confirm: ответ с несовпадающим
	// тегом пришёл от уже брошенной сессии и отбрасывается
	confirmTag uuid.UUID

	updatedAt time.Time
	mu        sync.Mutex
}

// Wizard ведёт студента по шагам дата → время → подтверждение.
// Слоты месяца запрашиваются одним вызовом при входе в выбор даты
// и индексируются по дате для быстрых проверок.
type Wizard struct {
	slots    SlotsProvider
	reserver Reserver
	fsm      *FSM
	logger   *zap.Logger

	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewWizard(slots SlotsProvider, reserver Reserver, logger *zap.Logger) *Wizard {
	return &Wizard{
		slots:    slots,
		reserver: reserver,
		fsm:      NewFSM(),
		logger:   logger,
		sessions: make(map[int64]*Session),
	}
}

// StartSession начинает новый мастер для студента, заменяя прежний
func (w *Wizard) StartSession(studentID, courseID int64) *Session {
	session := &Session{
		StudentID:  studentID,
		CourseID:   courseID,
		State:      StateSelectingDate,
		confirmTag: uuid.Nil,
		updatedAt:  time.Now(),
	}

	w.mu.Lock()
	w.sessions[studentID] = session
	w.mu.Unlock()

	return session
}

func (w *Wizard) session(studentID int64) (*Session, error) {
	w.mu.RLock()
	session, ok := w.sessions[studentID]
	w.mu.RUnlock()

	if !ok {
		return nil, ErrNoSession
	}
	return session, nil
}

// transition переводит сессию в состояние to, сверяясь с таблицей
// переходов. Вызывается под мьютексом сессии.
func (w *Wizard) transition(session *Session, to State) error {
	if !w.fsm.CanTransition(session.State, to) {
		return ErrIllegalTransition
	}
	session.State = to
	return nil
}

// LoadMonth загружает слоты видимого месяца одним запросом.
// Смена месяца сбрасывает прежний индекс и возвращает мастер
// к выбору даты.
func (w *Wizard) LoadMonth(ctx context.Context, studentID int64, year int, month time.Month) ([]model.Slot, error) {
	session, err := w.session(studentID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	courseID := session.CourseID
	alreadyLoaded := session.monthLoaded && session.year == year && session.month == month
	session.mu.Unlock()

	if alreadyLoaded {
		return w.monthSlots(session), nil
	}

	list, err := w.slots.ComputeMonth(ctx, courseID, year, month)
	if err != nil {
		return nil, fmt.Errorf("compute month slots: %w", err)
	}

	byDate := make(map[string][]model.Slot)
	for _, s := range list {
		byDate[s.Date] = append(byDate[s.Date], s)
	}

	session.mu.Lock()
	session.year = year
	session.month = month
	session.monthLoaded = true
	session.byDate = byDate
	session.State = StateSelectingDate
	session.date = ""
	session.slot = ""
	session.confirmTag = uuid.Nil
	session.updatedAt = time.Now()
	session.mu.Unlock()

	return list, nil
}

func (w *Wizard) monthSlots(session *Session) []model.Slot {
	session.mu.Lock()
	defer session.mu.Unlock()

	var list []model.Slot
	for _, daySlots := range session.byDate {
		list = append(list, daySlots...)
	}
	return list
}

// SelectDate выбирает дату; допустимо только если у даты есть слоты
// в загруженном месяце
func (w *Wizard) SelectDate(studentID int64, date string) error {
	session, err := w.session(studentID)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if !session.monthLoaded {
		return ErrIllegalTransition
	}

	if len(session.byDate[date]) == 0 {
		return ErrDateUnavailable
	}

	if err := w.transition(session, StateSelectingTime); err != nil {
		return err
	}
	session.date = date
	session.slot = ""
	session.updatedAt = time.Now()

	return nil
}

// SlotsForDate возвращает слоты выбранной даты из индекса месяца
func (w *Wizard) SlotsForDate(studentID int64, date string) ([]model.Slot, error) {
	session, err := w.session(studentID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	return session.byDate[date], nil
}

// SelectTime выбирает время и переводит мастер к подтверждению
func (w *Wizard) SelectTime(studentID int64, startTime string) error {
	session, err := w.session(studentID)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.date == "" {
		return ErrIllegalTransition
	}

	found := false
	for _, s := range session.byDate[session.date] {
		if s.StartTime == startTime {
			found = true
			break
		}
	}
	if !found {
		return ErrTimeUnavailable
	}

	if err := w.transition(session, StateConfirming); err != nil {
		return err
	}
	session.slot = startTime
	session.updatedAt = time.Now()

	return nil
}

// Confirm коммитит бронирование через координатор.
//
// Сессия выпускает не более одного незавершённого коммита: повторный
// Confirm, пока предыдущий в полёте, отклоняется. Запрос помечается
// тегом; если за время вызова сессию сбросили или увели назад,
// результат отбрасывается и не применяется к новому состоянию мастера.
// Ошибки бизнес-логики не ретраятся: мастер возвращается к подходящему
// шагу, ошибка отдаётся вызывающему.
func (w *Wizard) Confirm(ctx context.Context, studentID int64) (*model.Booking, error) {
	session, err := w.session(studentID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	if session.State != StateConfirming || session.date == "" || session.slot == "" {
		session.mu.Unlock()
		return nil, ErrIllegalTransition
	}
	if session.confirmTag != uuid.Nil {
		session.mu.Unlock()
		return nil, ErrIllegalTransition
	}

	courseID := session.CourseID
	dateStr := session.date
	startTime := session.slot

	date, err := time.Parse(model.SlotDateLayout, dateStr)
	if err != nil {
		session.mu.Unlock()
		return nil, fmt.Errorf("parse selected date: %w", err)
	}

	tag := uuid.New()
	session.confirmTag = tag
	session.mu.Unlock()

	booking, reserveErr := w.reserver.ReserveSlot(ctx, studentID, courseID, date, startTime)

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.confirmTag != tag {
		w.logger.Info("Discarding stale confirm result",
			zap.Int64("student_id", studentID),
			zap.String("date", dateStr),
			zap.String("start_time", startTime),
		)
		return nil, ErrStaleConfirm
	}
	session.confirmTag = uuid.Nil
	session.updatedAt = time.Now()

	if reserveErr != nil {
		session.LastErr = reserveErr

		if errors.Is(reserveErr, service.ErrSlotNoLongerAvailable) {
			// Слот увели: месяц устарел, пользователь выбирает время заново
			_ = w.transition(session, StateSelectingTime)
			session.slot = ""
			session.monthLoaded = false
		}
		// Остальные ошибки оставляют мастер на подтверждении

		return nil, reserveErr
	}

	_ = w.transition(session, StateCommitted)
	session.Booking = booking
	session.LastErr = nil
	// Закоммиченное бронирование делает индекс месяца устаревшим
	session.monthLoaded = false

	return booking, nil
}

// Back возвращает мастер на предыдущий шаг и отбрасывает выбор этого шага
func (w *Wizard) Back(studentID int64) error {
	session, err := w.session(studentID)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	var to State
	switch session.State {
	case StateSelectingTime:
		to = StateSelectingDate
	case StateConfirming, StateFailed:
		to = StateSelectingTime
	default:
		return ErrIllegalTransition
	}

	if err := w.transition(session, to); err != nil {
		return err
	}

	switch to {
	case StateSelectingDate:
		session.date = ""
	case StateSelectingTime:
		session.slot = ""
	}

	// In-flight confirm после возврата недействителен
	session.confirmTag = uuid.Nil
	session.updatedAt = time.Now()

	return nil
}

// Reset возвращает мастер в начальное состояние из любого шага
func (w *Wizard) Reset(studentID int64) error {
	session, err := w.session(studentID)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	session.State = StateSelectingDate
	session.date = ""
	session.slot = ""
	session.Booking = nil
	session.LastErr = nil
	session.monthLoaded = false
	session.byDate = nil
	session.confirmTag = uuid.Nil
	session.updatedAt = time.Now()

	return nil
}

// Close завершает сессию студента
func (w *Wizard) Close(studentID int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.sessions, studentID)
}

// Snapshot возвращает текущее состояние сессии для отображения
func (w *Wizard) Snapshot(studentID int64) (State, string, string, error) {
	session, err := w.session(studentID)
	if err != nil {
		return "", "", "", err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	return session.State, session.date, session.slot, nil
}

// Cleanup удаляет сессии, неактивные дольше maxAge, и возвращает
// количество удалённых
func (w *Wizard) Cleanup(maxAge time.Duration) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	removed := 0
	for id, session := range w.sessions {
		session.mu.Lock()
		stale := time.Since(session.updatedAt) > maxAge
		session.mu.Unlock()

		if stale {
			delete(w.sessions, id)
			removed++
		}
	}

	return removed
}
