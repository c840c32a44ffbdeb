package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type reserveRequest struct {
	CourseID  int64  `json:"course_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
}

func bookingIDParam(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// reserveBooking резервирует слот и списывает кредиты
func (h *handlers) reserveBooking(c *fiber.Ctx) error {
	var req reserveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return badRequest(c, "date must be in YYYY-MM-DD format")
	}

	booking, err := h.bookings.ReserveSlot(c.Context(), userID(c), req.CourseID, date, req.StartTime)
	if err != nil {
		return h.jsonError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"booking": booking,
	})
}

// cancelBooking отменяет бронирование участника
func (h *handlers) cancelBooking(c *fiber.Ctx) error {
	bookingID, err := bookingIDParam(c)
	if err != nil {
		return badRequest(c, "invalid booking id")
	}

	refunded, err := h.bookings.CancelBooking(c.Context(), userID(c), bookingID, c.Query("reason"))
	if err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, fiber.Map{"refunded": refunded})
}

// completeBooking отмечает занятие проведённым
func (h *handlers) completeBooking(c *fiber.Ctx) error {
	bookingID, err := bookingIDParam(c)
	if err != nil {
		return badRequest(c, "invalid booking id")
	}

	if err := h.bookings.CompleteClass(c.Context(), userID(c), bookingID); err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, nil)
}

// bookingAccess отдаёт ссылку на видеокомнату занятия
func (h *handlers) bookingAccess(c *fiber.Ctx) error {
	bookingID, err := bookingIDParam(c)
	if err != nil {
		return badRequest(c, "invalid booking id")
	}

	link, err := h.bookings.RoomAccess(c.Context(), userID(c), bookingID)
	if err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, fiber.Map{"room_link": link})
}

// myBookings список бронирований пользователя как студента
func (h *handlers) myBookings(c *fiber.Ctx) error {
	list, err := h.bookings.GetStudentBookings(c.Context(), userID(c))
	if err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, fiber.Map{"bookings": list})
}

// teachingBookings список бронирований пользователя как преподавателя
func (h *handlers) teachingBookings(c *fiber.Ctx) error {
	list, err := h.bookings.GetInstructorBookings(c.Context(), userID(c))
	if err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, fiber.Map{"bookings": list})
}
