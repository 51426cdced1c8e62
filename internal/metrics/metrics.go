// Package metrics exposes Prometheus instruments for the auction pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BidsProcessed counts arbitrated bids by outcome (leading, outbid, closed, duplicate).
	BidsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auction",
		Name:      "bids_processed_total",
		Help:      "Bids arbitrated, labelled by outcome.",
	}, []string{"outcome"})

	// StageFailures counts failed pipeline steps by stage.
	StageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auction",
		Name:      "stage_failures_total",
		Help:      "Failed pipeline steps, labelled by stage.",
	}, []string{"stage"})

	ActiveCountdowns = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "auction",
		Name:      "active_countdowns",
		Help:      "Countdown watchers currently armed.",
	})

	Finalized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "auction",
		Name:      "items_finalized_total",
		Help:      "Items moved to their terminal status.",
	})

	// StuckItems counts items left dropping because resolution kept failing.
	StuckItems = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "auction",
		Name:      "items_stuck_total",
		Help:      "Items whose expiration could not be resolved.",
	})

	MessagesEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auction",
		Name:      "messages_enqueued_total",
		Help:      "Outbound messages enqueued, labelled by subject.",
	}, []string{"subject"})
)
