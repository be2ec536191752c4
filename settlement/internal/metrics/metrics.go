package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics methods are safe on a nil receiver.
type Metrics struct {
	txAttempts  *prometheus.CounterVec
	txConflicts *prometheus.CounterVec
	txExhausted *prometheus.CounterVec
	networkUp   *prometheus.GaugeVec
	rpcErrors   *prometheus.CounterVec
	events      *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		txAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "settlement",
			Name:      "ledger_tx_attempts_total",
			Help:      "Ledger transaction attempts by operation",
		}, []string{"operation"}),
		txConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "settlement",
			Name:      "ledger_tx_conflicts_total",
			Help:      "Ledger transaction attempts aborted by a write conflict",
		}, []string{"operation"}),
		txExhausted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "settlement",
			Name:      "ledger_tx_exhausted_total",
			Help:      "Ledger transactions that ran out of retry attempts",
		}, []string{"operation"}),
		networkUp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "settlement",
			Name:      "network_up",
			Help:      "1 when the network rpc is connected",
		}, []string{"network"}),
		rpcErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "settlement",
			Name:      "rpc_errors_total",
			Help:      "Failed rpc calls by network and method",
		}, []string{"network", "method"}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "settlement",
			Name:      "events_published_total",
			Help:      "Balance events by sink and result",
		}, []string{"sink", "result"}),
	}
}

func (m *Metrics) TxAttempt(op string) {
	if m == nil {
		return
	}
	m.txAttempts.WithLabelValues(op).Inc()
}

func (m *Metrics) TxConflict(op string) {
	if m == nil {
		return
	}
	m.txConflicts.WithLabelValues(op).Inc()
}

func (m *Metrics) TxExhausted(op string) {
	if m == nil {
		return
	}
	m.txExhausted.WithLabelValues(op).Inc()
}

func (m *Metrics) NetworkUp(network string, up bool) {
	if m == nil {
		return
	}
	var v float64
	if up {
		v = 1
	}
	m.networkUp.WithLabelValues(network).Set(v)
}

func (m *Metrics) RpcError(network, method string) {
	if m == nil {
		return
	}
	m.rpcErrors.WithLabelValues(network, method).Inc()
}

func (m *Metrics) Event(sink string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.events.WithLabelValues(sink, result).Inc()
}
