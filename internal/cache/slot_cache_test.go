package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkarpovich/classbooker/internal/model"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*SlotCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewSlotCache(rdb, time.Minute, zap.NewNop()), mr
}

func TestSlotCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	list := []model.Slot{
		{CourseID: 7, Date: "2026-03-02", StartTime: "09:00", EndTime: "10:00"},
		{CourseID: 7, Date: "2026-03-02", StartTime: "10:00", EndTime: "11:00"},
	}

	_, ok := c.GetMonth(ctx, 7, "2026-03")
	assert.False(t, ok, "empty cache is a miss")

	c.SetMonth(ctx, 7, "2026-03", list)

	got, ok := c.GetMonth(ctx, 7, "2026-03")
	require.True(t, ok)
	assert.Equal(t, list, got)

	_, ok = c.GetMonth(ctx, 8, "2026-03")
	assert.False(t, ok, "cache is keyed by course")
}

func TestSlotCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.SetMonth(ctx, 7, "2026-03", []model.Slot{{CourseID: 7, Date: "2026-03-02", StartTime: "09:00", EndTime: "10:00"}})
	c.InvalidateMonth(ctx, 7, "2026-03")

	_, ok := c.GetMonth(ctx, 7, "2026-03")
	assert.False(t, ok)
}

func TestSlotCacheCorruptedEntry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("slots:7:2026-03", "not json"))

	_, ok := c.GetMonth(ctx, 7, "2026-03")
	assert.False(t, ok, "corrupted entry is treated as a miss")
}

func TestSlotCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.SetMonth(ctx, 7, "2026-03", []model.Slot{{CourseID: 7, Date: "2026-03-02", StartTime: "09:00", EndTime: "10:00"}})

	mr.FastForward(2 * time.Minute)

	_, ok := c.GetMonth(ctx, 7, "2026-03")
	assert.False(t, ok, "entry expires after its TTL")
}
