// Package metrics exposes Prometheus collectors for signal, order, and
// simulation activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SignalsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantsim_signals_emitted_total",
			Help: "Total number of signals emitted by the voting engine (by direction).",
		},
		[]string{"direction"},
	)

	OrdersRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantsim_orders_rejected_total",
			Help: "Total number of signals rejected by the risk sizing engine (by reason).",
		},
		[]string{"reason"},
	)

	TradesClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantsim_trades_closed_total",
			Help: "Total number of simulated trades closed (by exit reason).",
		},
		[]string{"reason"},
	)

	EquityGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quantsim_equity",
			Help: "Mark-to-market equity of the most recent simulation step.",
		},
	)
)

func init() {
	prometheus.MustRegister(SignalsEmitted, OrdersRejected, TradesClosed, EquityGauge)
}
