package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LoyaltyMetrics bundles the prometheus vectors for the tier engine, the
// ledger and the distribution workflow. All recording methods tolerate a nil
// receiver so wiring metrics stays optional in tests.
type LoyaltyMetrics struct {
	TierChangesTotal   *prometheus.CounterVec
	TierChangesSkipped *prometheus.CounterVec

	LedgerEntriesTotal *prometheus.CounterVec
	LedgerAmountTotal  *prometheus.CounterVec
	LedgerSyncFailures prometheus.Counter

	DistributionsTotal *prometheus.CounterVec

	SweepRunsTotal *prometheus.CounterVec
	SweepDuration  *prometheus.HistogramVec
}

func NewLoyaltyMetrics() *LoyaltyMetrics {
	return &LoyaltyMetrics{
		TierChangesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loyalty_tier_changes_total",
				Help: "Accepted tier changes by change type and source",
			},
			[]string{"change_type", "source"},
		),
		TierChangesSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loyalty_tier_changes_skipped_total",
				Help: "Tier change requests superseded by a higher-priority override",
			},
			[]string{"source"},
		),
		LedgerEntriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loyalty_ledger_entries_total",
				Help: "Ledger entries written by event type",
			},
			[]string{"event_type"},
		),
		LedgerAmountTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loyalty_ledger_amount_total",
				Help: "Absolute credit amount moved by event type and direction",
			},
			[]string{"event_type", "direction"},
		),
		LedgerSyncFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loyalty_ledger_sync_failures_total",
				Help: "Failed pushes of ledger entries to the external credit account",
			},
		),
		DistributionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loyalty_distributions_total",
				Help: "Distribution status transitions",
			},
			[]string{"status"},
		),
		SweepRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loyalty_sweep_runs_total",
				Help: "Background sweep executions by sweep name",
			},
			[]string{"sweep"},
		),
		SweepDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loyalty_sweep_duration_seconds",
				Help:    "Background sweep execution time",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"sweep"},
		),
	}
}

func (m *LoyaltyMetrics) RecordTierChange(changeType, source string) {
	if m == nil {
		return
	}
	m.TierChangesTotal.WithLabelValues(changeType, source).Inc()
}

func (m *LoyaltyMetrics) RecordTierChangeSkipped(source string) {
	if m == nil {
		return
	}
	m.TierChangesSkipped.WithLabelValues(source).Inc()
}

func (m *LoyaltyMetrics) RecordLedgerEntry(eventType string, amount float64) {
	if m == nil {
		return
	}
	m.LedgerEntriesTotal.WithLabelValues(eventType).Inc()
	direction := "credit"
	if amount < 0 {
		direction = "debit"
		amount = -amount
	}
	m.LedgerAmountTotal.WithLabelValues(eventType, direction).Add(amount)
}

func (m *LoyaltyMetrics) RecordSyncFailure() {
	if m == nil {
		return
	}
	m.LedgerSyncFailures.Inc()
}

func (m *LoyaltyMetrics) RecordDistribution(status string) {
	if m == nil {
		return
	}
	m.DistributionsTotal.WithLabelValues(status).Inc()
}

func (m *LoyaltyMetrics) RecordSweep(sweep string, started time.Time) {
	if m == nil {
		return
	}
	m.SweepRunsTotal.WithLabelValues(sweep).Inc()
	m.SweepDuration.WithLabelValues(sweep).Observe(time.Since(started).Seconds())
}
