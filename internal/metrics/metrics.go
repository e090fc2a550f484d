package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "parking"

var (
	once sync.Once

	layoutsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layouts_generated_total",
			Help:      "Count of layout generation runs by template and outcome.",
		},
		[]string{"template", "outcome"},
	)

	boundsWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_bounds_warnings_total",
			Help:      "Count of grid writes skipped because they fell outside the grid.",
		},
		[]string{"template"},
	)

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Count of bookings created by slot kind.",
		},
		[]string{"slot_kind"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Count of booking attempts rejected because the slot was taken.",
		},
	)

	bookingsCancelled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_cancelled_total",
			Help:      "Count of cancelled bookings by reason.",
		},
		[]string{"reason"},
	)

	templateCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_cache_total",
			Help:      "Template catalog cache lookups by result.",
		},
		[]string{"result"},
	)

	paymentEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_events_total",
			Help:      "Payment queue messages by outcome.",
		},
		[]string{"outcome"},
	)

	websocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Number of connected websocket clients.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			layoutsGenerated,
			boundsWarnings,
			bookingsCreated,
			bookingConflicts,
			bookingsCancelled,
			templateCache,
			paymentEvents,
			websocketClients,
		)
	})
}

func IncLayoutGenerated(template, outcome string) {
	layoutsGenerated.WithLabelValues(template, outcome).Inc()
}

func IncBoundsWarning(template string) {
	boundsWarnings.WithLabelValues(template).Inc()
}

func IncBookingCreated(slotKind string) {
	bookingsCreated.WithLabelValues(slotKind).Inc()
}

func IncBookingConflict() {
	bookingConflicts.Inc()
}

func IncBookingCancelled(reason string) {
	bookingsCancelled.WithLabelValues(reason).Inc()
}

func IncTemplateCache(result string) {
	templateCache.WithLabelValues(result).Inc()
}

func IncPaymentEvent(outcome string) {
	paymentEvents.WithLabelValues(outcome).Inc()
}

func SetWebsocketClients(n int) {
	websocketClients.Set(float64(n))
}
