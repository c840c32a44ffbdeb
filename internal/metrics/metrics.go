package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "classbooker",
			Name:      "booking_created_total",
			Help:      "Count of bookings successfully reserved.",
		},
	)

	bookingCancelled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classbooker",
			Name:      "booking_cancelled_total",
			Help:      "Count of cancelled bookings by refund outcome.",
		},
		[]string{"refunded"},
	)

	bookingCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "classbooker",
			Name:      "booking_completed_total",
			Help:      "Count of classes marked completed.",
		},
	)

	reservationConflict = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "classbooker",
			Name:      "reservation_conflict_total",
			Help:      "Count of reservations lost to a concurrent booking.",
		},
	)

	slotComputation = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "classbooker",
			Name:      "slot_computation_total",
			Help:      "Count of slot range computations.",
		},
	)

	slotCacheHit = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "classbooker",
			Name:      "slot_cache_hit_total",
			Help:      "Count of month slot cache hits.",
		},
	)

	slotCacheMiss = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "classbooker",
			Name:      "slot_cache_miss_total",
			Help:      "Count of month slot cache misses.",
		},
	)
)

// Register регистрирует метрики (идемпотентно)
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingCreated,
			bookingCancelled,
			bookingCompleted,
			reservationConflict,
			slotComputation,
			slotCacheHit,
			slotCacheMiss,
		)
	})
}

func IncBookingCreated() {
	bookingCreated.Inc()
}

func IncBookingCancelled(refunded bool) {
	bookingCancelled.WithLabelValues(strconv.FormatBool(refunded)).Inc()
}

func IncBookingCompleted() {
	bookingCompleted.Inc()
}

func IncReservationConflict() {
	reservationConflict.Inc()
}

func IncSlotComputation() {
	slotComputation.Inc()
}

func IncSlotCacheHit() {
	slotCacheHit.Inc()
}

func IncSlotCacheMiss() {
	slotCacheMiss.Inc()
}
