package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	voteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "awards_vote_requests_total",
		Help: "Cast requests received, by outcome",
	}, []string{"status"})

	voteResetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "awards_vote_resets_total",
		Help: "Reset requests received, by outcome",
	}, []string{"status"})

	listenerFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "awards_listener_failures_total",
		Help: "Bus listeners that returned an error, panicked or timed out",
	}, []string{"listener"})

	publishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "awards_bus_publish_duration_seconds",
		Help:    "Time spent fanning one notification out to all listeners",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
)

func ObserveVoteRequest(status string) {
	voteRequestsTotal.WithLabelValues(status).Inc()
}

func ObserveVoteReset(status string) {
	voteResetsTotal.WithLabelValues(status).Inc()
}

func IncListenerFailure(listener string) {
	listenerFailuresTotal.WithLabelValues(listener).Inc()
}

func ObservePublishDuration(kind string, seconds float64) {
	publishDuration.WithLabelValues(kind).Observe(seconds)
}
