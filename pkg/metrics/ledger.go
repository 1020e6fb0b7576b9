package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "inventory"

// Ledger outcomes.
const (
	OutcomePosted       = "posted"
	OutcomeInsufficient = "insufficient_stock"
	OutcomeRejected     = "rejected"
	OutcomeFailed       = "failed"
)

// LedgerMetrics counts stock movements and purchase-order transitions.
type LedgerMetrics struct {
	transactions *prometheus.CounterVec
	units        *prometheus.CounterVec
	transitions  *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on reg. A nil registerer yields a no-op recorder.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	transactions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_transactions_total",
		Help:      "Stock transaction attempts by direction and outcome.",
	}, []string{"direction", "outcome"})
	units := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_units_moved_total",
		Help:      "Units moved by committed stock transactions.",
	}, []string{"direction"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchase_order_transitions_total",
		Help:      "Purchase order status transitions.",
	}, []string{"from", "to"})
	reg.MustRegister(transactions, units, transitions)
	return &LedgerMetrics{transactions: transactions, units: units, transitions: transitions}
}

// ObserveTransaction records one ledger attempt. Units are only counted when posted.
func (m *LedgerMetrics) ObserveTransaction(direction, outcome string, quantity int) {
	if m == nil || m.transactions == nil {
		return
	}
	direction = normalizeLabel(direction)
	m.transactions.WithLabelValues(direction, normalizeLabel(outcome)).Inc()
	if outcome == OutcomePosted && quantity > 0 {
		m.units.WithLabelValues(direction).Add(float64(quantity))
	}
}

func (m *LedgerMetrics) ObserveTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
