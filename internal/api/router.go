package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"github.com/vkarpovich/classbooker/internal/service"
	"github.com/vkarpovich/classbooker/internal/workflow"
	"go.uber.org/zap"
)

// handlers группирует зависимости HTTP-слоя
type handlers struct {
	availability *service.AvailabilityService
	slots        *service.SlotService
	bookings     *service.BookingService
	ledger       *service.LedgerService
	wizard       *workflow.Wizard
	logger       *zap.Logger
}

// Setup регистрирует маршруты приложения
func Setup(
	app *fiber.App,
	availability *service.AvailabilityService,
	slots *service.SlotService,
	bookings *service.BookingService,
	ledger *service.LedgerService,
	wizard *workflow.Wizard,
	logger *zap.Logger,
) {
	h := &handlers{
		availability: availability,
		slots:        slots,
		bookings:     bookings,
		ledger:       ledger,
		wizard:       wizard,
		logger:       logger,
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Prometheus отдаётся напрямую через fasthttp-адаптер
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	api := app.Group("/api", requireUser)

	// Слоты и настройки доступности
	api.Get("/me/courses", h.myCourses)
	api.Get("/courses/:id/slots", h.getSlots)
	api.Get("/courses/:id/availability", h.getAvailability)
	api.Post("/courses/:id/rules", h.addRule)
	api.Delete("/rules/:id", h.removeRule)
	api.Post("/courses/:id/date-slots", h.addDateSlot)
	api.Post("/courses/:id/blocked-dates", h.blockDate)
	api.Put("/courses/:id/policy", h.updatePolicy)

	// Бронирования
	api.Post("/bookings", h.reserveBooking)
	api.Get("/bookings/my", h.myBookings)
	api.Get("/bookings/teaching", h.teachingBookings)
	api.Delete("/bookings/:id", h.cancelBooking)
	api.Put("/bookings/:id/complete", h.completeBooking)
	api.Get("/bookings/:id/access", h.bookingAccess)

	// Кредиты
	api.Get("/me/credits", h.myCredits)
	api.Post("/me/credits/topup", h.topUpCredits)

	// Пошаговый мастер бронирования
	api.Get("/wizard", h.wizardState)
	api.Post("/wizard/start", h.wizardStart)
	api.Post("/wizard/month", h.wizardMonth)
	api.Post("/wizard/date", h.wizardSelectDate)
	api.Post("/wizard/time", h.wizardSelectTime)
	api.Post("/wizard/confirm", h.wizardConfirm)
	api.Post("/wizard/back", h.wizardBack)
	api.Post("/wizard/reset", h.wizardReset)
}
