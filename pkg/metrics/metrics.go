// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is separate from the default registerer so tests can read values
// without global collisions.
var Registry = prometheus.NewRegistry()

var (
	WithdrawalDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blackwallet",
		Name:      "withdrawal_decisions_total",
		Help:      "Spend-limit decisions by outcome (allow, warn, block, insufficient_balance).",
	}, []string{"decision"})

	LedgerEntries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blackwallet",
		Name:      "ledger_entries_total",
		Help:      "Ledger transactions appended by type.",
	}, []string{"type"})

	ChainTransactions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blackwallet",
		Name:      "chain_transactions_total",
		Help:      "Relayer transactions by method and result.",
	}, []string{"method", "result"})

	ChainConfirmSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blackwallet",
		Name:      "chain_confirm_seconds",
		Help:      "Time from broadcast to receipt for relayer transactions.",
		Buckets:   []float64{1, 2, 5, 10, 20, 40, 80, 160},
	}, []string{"method"})

	ApprovalEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blackwallet",
		Name:      "approval_events_total",
		Help:      "Emergency approval workflow events (requested, approved, rejected, expired, chain_failed).",
	}, []string{"event"})

	EmailDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blackwallet",
		Name:      "email_deliveries_total",
		Help:      "Approval link deliveries by result.",
	}, []string{"result"})

	HTTPRequestSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blackwallet",
		Name:      "http_request_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	Registry.MustRegister(
		WithdrawalDecisions,
		LedgerEntries,
		ChainTransactions,
		ChainConfirmSeconds,
		ApprovalEvents,
		EmailDeliveries,
		HTTPRequestSeconds,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
