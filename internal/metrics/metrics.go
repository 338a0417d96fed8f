// Package metrics exposes Prometheus collectors for registry operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BadgesIssued counts successful badge issuances.
	BadgesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lapelpin_badges_issued_total",
		Help: "The number of badges issued",
	})

	// IssuanceRejected counts failed issuance attempts by reason.
	IssuanceRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lapelpin_issuance_rejected_total",
		Help: "The number of rejected issuance attempts",
	}, []string{"reason"})

	// BadgesTransferred counts successful badge transfers.
	BadgesTransferred = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lapelpin_badges_transferred_total",
		Help: "The number of badge ownership transfers",
	})

	// FeedSubscribers tracks currently connected issuance feed clients.
	FeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lapelpin_feed_subscribers",
		Help: "The number of connected issuance feed subscribers",
	})
)
