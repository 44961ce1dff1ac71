package web

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"brickyard/internal/domain/booking"
)

// Booking lifecycle events.
const (
	eventCreated   = "created"
	eventApproved  = "approved"
	eventCancelled = "cancelled"
	eventExported  = "exported"
)

var bookingEvents = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "brickyard",
		Name:      "booking_events_total",
		Help:      "Booking lifecycle events by type",
	},
	[]string{"event"},
)

// recordBookingEvent counts the event and logs it.
func recordBookingEvent(event string, b booking.Booking) {
	bookingEvents.WithLabelValues(event).Inc()
	slog.Info("booking_event",
		"event", event,
		"booking_id", b.ID,
		"session_id", b.SessionID,
		"family_id", b.FamilyID,
		"status", b.Status,
		"created_at", b.CreatedAt(),
	)
}
