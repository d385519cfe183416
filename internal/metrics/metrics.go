package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	requestActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "request_actions_total",
			Help:      "Approve/reject/sign actions by outcome.",
		},
		[]string{"action", "outcome"},
	)

	ledgerPostings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "ledger",
			Name:      "postings_total",
			Help:      "Ledger transactions posted by direction.",
		},
		[]string{"type"},
	)

	ledgerBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "portal",
			Subsystem: "ledger",
			Name:      "balance",
			Help:      "Current company ledger balance.",
		},
	)

	ledgerConsistent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "portal",
			Subsystem: "ledger",
			Name:      "consistent",
			Help:      "1 when the last reconciliation matched the stored balance, 0 otherwise.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		requestActions,
		ledgerPostings,
		ledgerBalance,
		ledgerConsistent,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	ledgerConsistent.Set(1)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request counts and latency keyed by the matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordAction counts a processed approve/reject/sign action.
func RecordAction(action, outcome string) {
	requestActions.WithLabelValues(action, outcome).Inc()
}

// RecordPosting counts a ledger transaction and publishes the resulting balance.
func RecordPosting(txType string, balance decimal.Decimal) {
	ledgerPostings.WithLabelValues(txType).Inc()
	SetBalance(balance)
}

func SetBalance(balance decimal.Decimal) {
	ledgerBalance.Set(balance.InexactFloat64())
}

func SetLedgerConsistent(ok bool) {
	if ok {
		ledgerConsistent.Set(1)
		return
	}
	ledgerConsistent.Set(0)
}
