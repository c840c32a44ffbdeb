package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/vkarpovich/classbooker/internal/model"
)

type addRuleRequest struct {
	Weekday   int    `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type addDateSlotRequest struct {
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
	Reason      string `json:"reason"`
}

type blockDateRequest struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

type updatePolicyRequest struct {
	MinAdvanceBookingHours int    `json:"min_advance_booking_hours"`
	MaxAdvanceBookingDays  int    `json:"max_advance_booking_days"`
	SlotDurationHours      int    `json:"slot_duration_hours"`
	BufferTimeMinutes      int    `json:"buffer_time_minutes"`
	Timezone               string `json:"timezone"`
}

func courseIDParam(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// myCourses отдаёт курсы пользователя как преподавателя
func (h *handlers) myCourses(c *fiber.Ctx) error {
	courses, err := h.availability.GetInstructorCourses(c.Context(), userID(c))
	if err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, fiber.Map{"courses": courses})
}

// getAvailability отдаёт настройки доступности курса его владельцу
func (h *handlers) getAvailability(c *fiber.Ctx) error {
	courseID, err := courseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid course id")
	}

	availability, err := h.availability.GetAvailability(c.Context(), userID(c), courseID)
	if err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, fiber.Map{"availability": availability})
}

// addRule добавляет еженедельное окно доступности
func (h *handlers) addRule(c *fiber.Ctx) error {
	courseID, err := courseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid course id")
	}

	var req addRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	rule, err := h.availability.AddRecurringRule(c.Context(), userID(c), courseID, req.Weekday, req.StartTime, req.EndTime)
	if err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, fiber.Map{"rule": rule})
}

// removeRule деактивирует еженедельное правило
func (h *handlers) removeRule(c *fiber.Ctx) error {
	ruleID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid rule id")
	}

	if err := h.availability.DeactivateRecurringRule(c.Context(), userID(c), ruleID); err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, nil)
}

// addDateSlot добавляет разовое изменение доступности на дату
func (h *handlers) addDateSlot(c *fiber.Ctx) error {
	courseID, err := courseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid course id")
	}

	var req addDateSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return badRequest(c, "date must be in YYYY-MM-DD format")
	}

	slot, err := h.availability.AddSpecificSlot(c.Context(), userID(c), courseID, date, req.StartTime, req.EndTime, req.IsAvailable, req.Reason)
	if err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, fiber.Map{"slot": slot})
}

// blockDate блокирует дату целиком
func (h *handlers) blockDate(c *fiber.Ctx) error {
	courseID, err := courseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid course id")
	}

	var req blockDateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return badRequest(c, "date must be in YYYY-MM-DD format")
	}

	blocked, err := h.availability.BlockDate(c.Context(), userID(c), courseID, date, req.Reason)
	if err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, fiber.Map{"blocked_date": blocked})
}

// updatePolicy задаёт политику бронирования курса
func (h *handlers) updatePolicy(c *fiber.Ctx) error {
	courseID, err := courseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid course id")
	}

	var req updatePolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	policy := &model.BookingPolicy{
		CourseID:               courseID,
		MinAdvanceBookingHours: req.MinAdvanceBookingHours,
		MaxAdvanceBookingDays:  req.MaxAdvanceBookingDays,
		SlotDurationHours:      req.SlotDurationHours,
		BufferTimeMinutes:      req.BufferTimeMinutes,
		Timezone:               req.Timezone,
	}

	if err := h.availability.UpdatePolicy(c.Context(), userID(c), policy); err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, fiber.Map{"policy": policy})
}

// getSlots вычисляет бронируемые слоты курса на диапазон дат
func (h *handlers) getSlots(c *fiber.Ctx) error {
	courseID, err := courseIDParam(c)
	if err != nil {
		return badRequest(c, "invalid course id")
	}

	from, err := parseDate(c.Query("from"))
	if err != nil {
		return badRequest(c, "from must be in YYYY-MM-DD format")
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return badRequest(c, "to must be in YYYY-MM-DD format")
	}
	if to.Before(from) {
		return badRequest(c, "to must not be before from")
	}

	list, err := h.slots.ComputeRange(c.Context(), courseID, from, to)
	if err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, fiber.Map{"slots": list})
}
