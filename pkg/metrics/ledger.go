package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records the behaviour of the stock ledger's optimistic
// transactions and the alert transitions they produce.
type LedgerMetrics struct {
	adjustDuration   *prometheus.HistogramVec
	conflicts        prometheus.Counter
	retriesExhausted prometheus.Counter
	alertTransitions *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	adjustDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stock_adjust_duration_seconds",
		Help:    "Duration of stock ledger adjust operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"movement_type"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_adjust_conflicts_total",
		Help: "Optimistic transaction conflicts observed during adjust.",
	})
	retriesExhausted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_adjust_retries_exhausted_total",
		Help: "Adjust operations aborted after exhausting conflict retries.",
	})
	alertTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_alert_transitions_total",
		Help: "Stock alert state transitions derived from ledger mutations.",
	}, []string{"transition"})
	reg.MustRegister(adjustDuration, conflicts, retriesExhausted, alertTransitions)
	return &LedgerMetrics{
		adjustDuration:   adjustDuration,
		conflicts:        conflicts,
		retriesExhausted: retriesExhausted,
		alertTransitions: alertTransitions,
	}
}

// ObserveAdjust records the duration of one adjust call.
func (m *LedgerMetrics) ObserveAdjust(movementType string, duration time.Duration) {
	if m == nil || m.adjustDuration == nil {
		return
	}
	m.adjustDuration.WithLabelValues(normalizeLabel(movementType)).Observe(duration.Seconds())
}

// IncConflict counts one optimistic-transaction conflict.
func (m *LedgerMetrics) IncConflict() {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.Inc()
}

// IncRetriesExhausted counts one adjust aborted with a concurrency error.
func (m *LedgerMetrics) IncRetriesExhausted() {
	if m == nil || m.retriesExhausted == nil {
		return
	}
	m.retriesExhausted.Inc()
}

// IncAlertTransition counts one alert transition ("opened", "reopened",
// "escalated", "resolved").
func (m *LedgerMetrics) IncAlertTransition(transition string) {
	if m == nil || m.alertTransitions == nil {
		return
	}
	m.alertTransitions.WithLabelValues(normalizeLabel(transition)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
