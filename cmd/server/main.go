package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vkarpovich/classbooker/internal/api"
	"github.com/vkarpovich/classbooker/internal/app"
	"github.com/vkarpovich/classbooker/internal/cache"
	"github.com/vkarpovich/classbooker/internal/config"
	"github.com/vkarpovich/classbooker/internal/metrics"
	"github.com/vkarpovich/classbooker/internal/repository"
	"github.com/vkarpovich/classbooker/internal/service"
	"github.com/vkarpovich/classbooker/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting classbooker server",
		zap.String("environment", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	metrics.Register()

	// Redis опционален: без него расчёт слотов работает без кэша
	var monthCache service.MonthCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to ping redis", zap.Error(err))
		}
		defer rdb.Close()
		monthCache = cache.NewSlotCache(rdb, 0, logger)
		logger.Info("Slot month cache enabled", zap.String("redis_addr", cfg.RedisAddr))
	} else {
		logger.Warn("REDIS_ADDR is not set, slot month cache disabled")
	}

	courseRepo := repository.NewCourseRepository(pool)
	availRepo := repository.NewAvailabilityRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	ledgerRepo := repository.NewLedgerRepository(pool)

	availabilityService := service.NewAvailabilityService(courseRepo, availRepo, logger)
	slotService := service.NewSlotService(courseRepo, availRepo, bookingRepo, monthCache, logger)
	bookingService := service.NewBookingService(
		pool, courseRepo, availRepo, bookingRepo, ledgerRepo,
		slotService, monthCache, cfg.RoomLinkBase, cfg.RefundCutoffHours, logger,
	)
	ledgerService := service.NewLedgerService(ledgerRepo, logger)

	wizard := workflow.NewWizard(slotService, bookingService, logger)

	scheduler := app.NewScheduler(wizard, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	fiberApp := fiber.New(fiber.Config{
		AppName:      "classbooker",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	api.Setup(fiberApp, availabilityService, slotService, bookingService, ledgerService, wizard, logger)

	go func() {
		if err := fiberApp.Listen(cfg.HTTPAddr); err != nil {
			logger.Fatal("HTTP server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	if err := fiberApp.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("Failed to shut down gracefully", zap.Error(err))
	}
}
