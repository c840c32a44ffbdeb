package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vkarpovich/classbooker/internal/model"
	"github.com/vkarpovich/classbooker/internal/service"
	"github.com/vkarpovich/classbooker/internal/workflow"
	"go.uber.org/zap"
)

// jsonOK единый успешный ответ
func jsonOK(c *fiber.Ctx, payload fiber.Map) error {
	if payload == nil {
		payload = fiber.Map{}
	}
	payload["success"] = true
	return c.JSON(payload)
}

// jsonError отображает ошибку бизнес-логики в HTTP-статус.
// Неопознанные ошибки считаются временным сбоем хранилища и отдаются
// с сообщением, допускающим повтор на стороне клиента.
func (h *handlers) jsonError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	message := err.Error()

	if status == fiber.StatusServiceUnavailable {
		h.logger.Error("Request failed with storage error",
			zap.String("path", c.OriginalURL()),
			zap.Error(err))
		message = "temporary failure, please retry"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, service.ErrRuleNotFound),
		errors.Is(err, workflow.ErrNoSession):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrInvalidPolicy):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInsufficientCredits):
		return fiber.StatusPaymentRequired
	case errors.Is(err, service.ErrSlotNoLongerAvailable),
		errors.Is(err, workflow.ErrIllegalTransition),
		errors.Is(err, workflow.ErrStaleConfirm):
		return fiber.StatusConflict
	case errors.Is(err, workflow.ErrDateUnavailable),
		errors.Is(err, workflow.ErrTimeUnavailable):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusServiceUnavailable
	}
}

// badRequest ответ на ошибку валидации запроса до обращения к хранилищу
func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(model.SlotDateLayout, s)
}
