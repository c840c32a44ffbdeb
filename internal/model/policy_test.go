package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy(7)

	assert.Equal(t, int64(7), p.CourseID)
	assert.Equal(t, 30, p.MaxAdvanceBookingDays)
	assert.Equal(t, 1, p.SlotDurationHours)
	assert.Equal(t, "UTC", p.Timezone)
	require.NoError(t, p.Validate())
}

func TestPolicyValidate(t *testing.T) {
	valid := func() *BookingPolicy {
		return &BookingPolicy{
			CourseID:               7,
			MinAdvanceBookingHours: 2,
			MaxAdvanceBookingDays:  14,
			SlotDurationHours:      1,
			BufferTimeMinutes:      15,
			Timezone:               "Europe/Moscow",
		}
	}

	require.NoError(t, valid().Validate())

	p := valid()
	p.SlotDurationHours = 0
	assert.Error(t, p.Validate())

	p = valid()
	p.MinAdvanceBookingHours = -1
	assert.Error(t, p.Validate())

	p = valid()
	p.MaxAdvanceBookingDays = 0
	assert.Error(t, p.Validate())

	p = valid()
	p.BufferTimeMinutes = -5
	assert.Error(t, p.Validate())

	p = valid()
	p.Timezone = "Mars/Olympus"
	assert.Error(t, p.Validate())
}

func TestPolicyLocation(t *testing.T) {
	p := DefaultPolicy(7)
	assert.Equal(t, time.UTC, p.Location())

	p.Timezone = "broken"
	assert.Equal(t, time.UTC, p.Location(), "broken timezone falls back to UTC")
}

func TestBookingStartsAt(t *testing.T) {
	b := &Booking{
		Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime: "14:30",
	}

	got := b.StartsAt(time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC), got)
}
