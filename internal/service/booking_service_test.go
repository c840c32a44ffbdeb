package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vkarpovich/classbooker/internal/model"
)

func TestRefundEligible(t *testing.T) {
	booking := &model.Booking{
		Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime: "14:00",
	}

	tests := []struct {
		name   string
		now    time.Time
		cutoff int
		want   bool
	}{
		{
			name:   "cancellation two days before class is refunded",
			now:    time.Date(2026, 2, 28, 14, 0, 0, 0, time.UTC),
			cutoff: 24,
			want:   true,
		},
		{
			name:   "cancellation exactly at the cutoff is refunded",
			now:    time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC),
			cutoff: 24,
			want:   true,
		},
		{
			name:   "late cancellation is not refunded",
			now:    time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			cutoff: 24,
			want:   false,
		},
		{
			name:   "zero cutoff refunds any cancellation before start",
			now:    time.Date(2026, 3, 2, 13, 59, 0, 0, time.UTC),
			cutoff: 0,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &BookingService{
				refundCutoffHours: tt.cutoff,
				now:               func() time.Time { return tt.now },
			}
			assert.Equal(t, tt.want, s.refundEligible(booking, time.UTC))
		})
	}
}
