package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "happenings",
			Subsystem: "messages",
			Name:      "processed_total",
			Help:      "Messages handled by the router, failed ones included.",
		},
		[]string{"topic", "handler"},
	)

	MessagesProcessingFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "happenings",
			Subsystem: "messages",
			Name:      "failed_total",
			Help:      "Messages whose handler returned an error.",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingDuration includes retries done by the router middleware.
	MessagesProcessingDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "happenings",
			Subsystem:  "messages",
			Name:       "duration_seconds",
			Help:       "Time spent handling a message.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"topic", "handler"},
	)

	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "happenings",
			Name:      "bookings_created_total",
			Help:      "The total number of bookings created",
		},
	)

	// BookingsStatus counts payment checks by the status they left the booking in.
	BookingsStatus = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "happenings",
			Name:      "bookings_status_total",
			Help:      "The total number of payment checks per resulting booking status",
		},
		[]string{"status"},
	)

	SlotTicketsDrafted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "happenings",
			Name:      "slot_tickets_drafted_total",
			Help:      "The total number of tickets placed in a slot by created bookings",
		},
		[]string{"slot"},
	)

	SlotStateNotFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "happenings",
			Name:      "slot_state_not_found_total",
			Help:      "The total number of slot evaluations for slots missing from the event",
		},
	)
)
