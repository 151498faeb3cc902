package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kalamkart_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kalamkart_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kalamkart_orders_placed_total",
		Help: "Orders successfully placed",
	})

	EmailDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kalamkart_email_deliveries_total",
			Help: "Email delivery attempts by kind and result (sent, retry, dead, failed).",
		},
		[]string{"kind", "result"},
	)

	RepairActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kalamkart_repair_actions_total",
			Help: "Objects fixed up by the scheduled repair pass.",
		},
		[]string{"action"},
	)
)

var once sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			OrdersPlaced,
			EmailDeliveries,
			RepairActions,
		)
	})
}
