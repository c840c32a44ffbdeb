package api

import "github.com/gofiber/fiber/v2"

type topUpRequest struct {
	Amount int `json:"amount"`
}

// myCredits отдаёт баланс и историю операций пользователя
func (h *handlers) myCredits(c *fiber.Ctx) error {
	uid := userID(c)

	balance, err := h.ledger.Balance(c.Context(), uid)
	if err != nil {
		return h.jsonError(c, err)
	}

	history, err := h.ledger.History(c.Context(), uid)
	if err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, fiber.Map{
		"balance": balance,
		"history": history,
	})
}

// topUpCredits пополняет баланс пользователя
func (h *handlers) topUpCredits(c *fiber.Ctx) error {
	var req topUpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if req.Amount <= 0 {
		return badRequest(c, "amount must be positive")
	}

	entry, err := h.ledger.TopUp(c.Context(), userID(c), req.Amount)
	if err != nil {
		return h.jsonError(c, err)
	}

	return jsonOK(c, fiber.Map{"entry": entry})
}
