package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signals handled by outcome and reason"},
		[]string{"outcome", "reason"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders accepted by the exchange"},
		[]string{"symbol", "side"},
	)
	OracleFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "oracle_failures_total", Help: "Failed snapshot reads by oracle"},
		[]string{"oracle"},
	)
	LockWaitSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "symbol_lock_wait_seconds",
			Help:    "Time spent waiting for the per-symbol section",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
	)
	TickerUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticker_updates_total", Help: "Ticker frames received from the market stream"},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(SignalsTotal, OrdersTotal, OracleFailuresTotal, LockWaitSeconds, TickerUpdatesTotal)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
