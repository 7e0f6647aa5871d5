package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	outboundRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intesa_outbound_requests_total",
		Help: "Signed redirect forms built for the processor",
	}, []string{
		"mode", // live, test
	})

	callbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intesa_callbacks_total",
		Help: "Processor callbacks by path and classification",
	}, []string{
		"path",    // return, cancel
		"outcome", // accepted, rejected, declined
		"reason",  // order_mismatch, client_mismatch, invalid_signature, processor_declined, or empty
	})

	declineTiersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intesa_decline_tiers_total",
		Help: "Cancel callbacks by decline tier",
	}, []string{
		"tier",
	})

	callbackDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "intesa_callback_duration_seconds",
		Help: "Time to handle a processor callback, including ledger and mail",
		// Buckets: 10ms to 10s
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{
		"path",
	})
)

// RecordOutboundRequest counts a signed redirect form
func RecordOutboundRequest(mode string) {
	outboundRequestsTotal.WithLabelValues(mode).Inc()
}

// RecordCallback counts a classified callback and its handling time
func RecordCallback(path, outcome, reason string, durationSeconds float64) {
	callbacksTotal.WithLabelValues(path, outcome, reason).Inc()
	callbackDuration.WithLabelValues(path).Observe(durationSeconds)
}

// RecordDeclineTier counts a cancel callback by tier
func RecordDeclineTier(tier string) {
	declineTiersTotal.WithLabelValues(tier).Inc()
}
