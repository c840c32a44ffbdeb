package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const userIDKey = "userID"

// requireUser извлекает идентификатор пользователя из заголовка X-User-ID.
// Аутентификацию выполняет внешний шлюз, сюда приходит уже проверенный id.
func requireUser(c *fiber.Ctx) error {
	raw := c.Get("X-User-ID")
	if raw == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "X-User-ID header is required",
		})
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "X-User-ID must be a positive integer",
		})
	}

	c.Locals(userIDKey, id)
	return c.Next()
}

func userID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(userIDKey).(int64)
	return id
}
