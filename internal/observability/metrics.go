package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wheelsup"

var (
	RidesPostedTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "rides_posted_total", Help: "Rides successfully posted"})
	SeatsBookedTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "seats_booked_total", Help: "Seats successfully booked"})
	MessagesSentTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "messages_sent_total", Help: "Chat messages appended"})
	VisitorsTotal     = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "visitors_counted_total", Help: "First-time visitors counted"})

	BookingRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "booking_rejections_total", Help: "Bookings refused, by reason"},
		[]string{"reason"},
	)
	SuggestionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "suggestion_outcomes_total", Help: "Suggestion gateway calls by operation and outcome"},
		[]string{"operation", "outcome"},
	)
	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "event_publish_failures_total", Help: "Domain events the broker refused"},
		[]string{"type"},
	)

	RideSnapshotSize = promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "ride_snapshot_size", Help: "Rides in the current read model"})
	LiveSubscribers  = promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "live_ride_subscribers", Help: "Open live ride subscriptions"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
