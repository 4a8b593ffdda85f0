// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Skip reasons for ballots or entries the tally could not count.
const (
	ReasonMalformed        = "malformed"
	ReasonUnresolved       = "unresolved"
	ReasonUnknownCandidate = "unknown_candidate"
)

// Tally outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeSuperseded  = "superseded"
)

// Metrics provides observability for vote tallying and the live results view.
type Metrics struct {
	// Full recomputation latency including source fetches
	TallyDuration prometheus.Histogram

	// Recomputations by outcome
	TallyOutcome *prometheus.CounterVec

	// Ballots or ballot entries skipped by the latest tally, by reason
	SkippedBallots *prometheus.GaugeVec

	// Official snapshots written
	SnapshotsPosted prometheus.Counter

	// Open live result streams
	LiveSubscribers prometheus.Gauge
}

// New creates a Metrics instance with all collectors registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TallyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "campusvote_tally_duration_seconds",
			Help:    "Duration of a full vote tally including data fetches",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		TallyOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campusvote_tally_outcomes_total",
			Help: "Total tally computations by outcome",
		}, []string{"outcome"}), // outcome: "ok", "unavailable", "superseded"

		SkippedBallots: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "campusvote_tally_skipped",
			Help: "Ballots or ballot entries skipped by the most recent tally by reason",
		}, []string{"reason"}),

		SnapshotsPosted: factory.NewCounter(prometheus.CounterOpts{
			Name: "campusvote_official_snapshots_total",
			Help: "Official results snapshots posted",
		}),

		LiveSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "campusvote_live_subscribers",
			Help: "Currently connected live results streams",
		}),
	}
}

// ObserveTally records the duration and outcome of a tally.
func (m *Metrics) ObserveTally(outcome string, d time.Duration) {
	if m != nil {
		m.TallyDuration.Observe(d.Seconds())
		m.TallyOutcome.WithLabelValues(outcome).Inc()
	}
}

// SetSkipped records how many ballots or entries the latest tally skipped for
// a reason. Every tally sees every ballot, so counts replace rather than add.
func (m *Metrics) SetSkipped(reason string, n int) {
	if m != nil {
		m.SkippedBallots.WithLabelValues(reason).Set(float64(n))
	}
}

// IncrementSnapshots records a posted official snapshot.
func (m *Metrics) IncrementSnapshots() {
	if m != nil {
		m.SnapshotsPosted.Inc()
	}
}

// SubscriberJoined and SubscriberLeft track open live streams.
func (m *Metrics) SubscriberJoined() {
	if m != nil {
		m.LiveSubscribers.Inc()
	}
}

func (m *Metrics) SubscriberLeft() {
	if m != nil {
		m.LiveSubscribers.Dec()
	}
}
