package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/apperr"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiga_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aiga_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiga_booking_transitions_total",
			Help: "Booking lifecycle events by outcome",
		},
		[]string{"event", "result"},
	)

	CapacityRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aiga_capacity_rejections_total",
			Help: "Approvals refused because the class occurrence was full",
		},
	)

	TrainingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiga_training_transitions_total",
			Help: "Individual training request events by outcome",
		},
		[]string{"event", "result"},
	)

	SweptBookingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aiga_swept_bookings_total",
			Help: "Confirmed bookings moved to completed by the sweep",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiga_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aiga_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// result is "ok" or the error code of err.
func result(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.Code(err)
}

func RecordBookingTransition(event string, err error) {
	BookingTransitionsTotal.WithLabelValues(event, result(err)).Inc()
}

func RecordCapacityRejection() {
	CapacityRejectionsTotal.Inc()
}

func RecordTrainingTransition(event string, err error) {
	TrainingTransitionsTotal.WithLabelValues(event, result(err)).Inc()
}

func RecordSweep(completed int) {
	SweptBookingsTotal.Add(float64(completed))
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
