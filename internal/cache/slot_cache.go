package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vkarpovich/classbooker/internal/model"
	"go.uber.org/zap"
)

// SlotCache хранит вычисленные слоты помесячно в Redis.
// Кэш ускоряет календарь мастера бронирования; любая ошибка Redis
// трактуется как промах, расчёт всегда может пройти без кэша.
type SlotCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewSlotCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *SlotCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SlotCache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *SlotCache) key(courseID int64, monthKey string) string {
	return fmt.Sprintf("slots:%d:%s", courseID, monthKey)
}

// GetMonth получает закэшированные слоты месяца
func (c *SlotCache) GetMonth(ctx context.Context, courseID int64, monthKey string) ([]model.Slot, bool) {
	data, err := c.rdb.Get(ctx, c.key(courseID, monthKey)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Slot cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var list []model.Slot
	if err := json.Unmarshal(data, &list); err != nil {
		c.logger.Warn("Slot cache entry corrupted", zap.Error(err))
		return nil, false
	}

	return list, true
}

// SetMonth кэширует слоты месяца
func (c *SlotCache) SetMonth(ctx context.Context, courseID int64, monthKey string, list []model.Slot) {
	data, err := json.Marshal(list)
	if err != nil {
		c.logger.Warn("Slot cache marshal failed", zap.Error(err))
		return
	}

	if err := c.rdb.Set(ctx, c.key(courseID, monthKey), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Slot cache write failed", zap.Error(err))
	}
}

// InvalidateMonth сбрасывает кэш месяца.
// Вызывается после коммита бронирования, попавшего в этот месяц.
func (c *SlotCache) InvalidateMonth(ctx context.Context, courseID int64, monthKey string) {
	if err := c.rdb.Del(ctx, c.key(courseID, monthKey)).Err(); err != nil {
		c.logger.Warn("Slot cache invalidation failed", zap.Error(err))
	}
}
