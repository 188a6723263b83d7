package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_bookings_total",
			Help: "Total booking attempts by outcome",
		},
		[]string{"status"},
	)

	cancellationOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_cancellations_total",
			Help: "Total cancellation attempts by outcome",
		},
		[]string{"status"},
	)

	verificationOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_verifications_total",
			Help: "Total check-in attempts by outcome",
		},
		[]string{"status"},
	)

	notificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_publish_failures_total",
			Help: "Ticket events that could not be published to the broker",
		},
	)
)

func TrackBooking(status string)      { bookingOps.WithLabelValues(status).Inc() }
func TrackCancellation(status string) { cancellationOps.WithLabelValues(status).Inc() }
func TrackVerification(status string) { verificationOps.WithLabelValues(status).Inc() }
func TrackNotificationFailure()       { notificationFailures.Inc() }
