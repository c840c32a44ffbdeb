package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN             string
	RedisAddr         string
	HTTPAddr          string
	Environment       string
	MigrationsPath    string
	RoomLinkBase      string
	RefundCutoffHours int
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:             os.Getenv("DB_DSN"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		HTTPAddr:          os.Getenv("HTTP_ADDR"),
		Environment:       os.Getenv("ENV"),
		MigrationsPath:    os.Getenv("MIGRATIONS_PATH"),
		RoomLinkBase:      os.Getenv("ROOM_LINK_BASE"),
		RefundCutoffHours: 24,
	}

	// Дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}
	if cfg.RoomLinkBase == "" {
		cfg.RoomLinkBase = "https://rooms.classbooker.dev"
	}

	if v := os.Getenv("REFUND_CUTOFF_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours < 0 {
			return nil, fmt.Errorf("REFUND_CUTOFF_HOURS must be a non-negative integer, got %q", v)
		}
		cfg.RefundCutoffHours = hours
	}

	// Обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}
