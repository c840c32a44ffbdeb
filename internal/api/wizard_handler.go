package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type wizardStartRequest struct {
	CourseID int64 `json:"course_id"`
}

type wizardMonthRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type wizardDateRequest struct {
	Date string `json:"date"`
}

type wizardTimeRequest struct {
	StartTime string `json:"start_time"`
}

// wizardStart начинает мастер бронирования, заменяя прежнюю сессию
func (h *handlers) wizardStart(c *fiber.Ctx) error {
	var req wizardStartRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.CourseID <= 0 {
		return badRequest(c, "course_id must be positive")
	}

	session := h.wizard.StartSession(userID(c), req.CourseID)

	return jsonOK(c, fiber.Map{"state": session.State})
}

// wizardMonth загружает слоты видимого месяца одним запросом
func (h *handlers) wizardMonth(c *fiber.Ctx) error {
	var req wizardMonthRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Year < 2000 || req.Month < 1 || req.Month > 12 {
		return badRequest(c, "year and month must form a valid calendar month")
	}

	list, err := h.wizard.LoadMonth(c.Context(), userID(c), req.Year, time.Month(req.Month))
	if err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, fiber.Map{"slots": list})
}

// wizardSelectDate выбирает дату в загруженном месяце
func (h *handlers) wizardSelectDate(c *fiber.Ctx) error {
	var req wizardDateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if _, err := parseDate(req.Date); err != nil {
		return badRequest(c, "date must be in YYYY-MM-DD format")
	}

	uid := userID(c)
	if err := h.wizard.SelectDate(uid, req.Date); err != nil {
		return h.jsonError(c, err)
	}

	daySlots, err := h.wizard.SlotsForDate(uid, req.Date)
	if err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, fiber.Map{"slots": daySlots})
}

// wizardSelectTime выбирает время и переводит мастер к подтверждению
func (h *handlers) wizardSelectTime(c *fiber.Ctx) error {
	var req wizardTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.wizard.SelectTime(userID(c), req.StartTime); err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, nil)
}

// wizardConfirm коммитит бронирование выбранного слота
func (h *handlers) wizardConfirm(c *fiber.Ctx) error {
	booking, err := h.wizard.Confirm(c.Context(), userID(c))
	if err != nil {
		return h.jsonError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"booking": booking,
	})
}

// wizardBack возвращает мастер на предыдущий шаг
func (h *handlers) wizardBack(c *fiber.Ctx) error {
	if err := h.wizard.Back(userID(c)); err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, nil)
}

// wizardReset сбрасывает мастер в начальное состояние
func (h *handlers) wizardReset(c *fiber.Ctx) error {
	if err := h.wizard.Reset(userID(c)); err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, nil)
}

// wizardState отдаёт текущее состояние мастера
func (h *handlers) wizardState(c *fiber.Ctx) error {
	state, date, slot, err := h.wizard.Snapshot(userID(c))
	if err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, fiber.Map{
		"state":      state,
		"date":       date,
		"start_time": slot,
	})
}
