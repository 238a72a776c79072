package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transfer metrics
	Transfers        *prometheus.CounterVec
	TransferDuration *prometheus.HistogramVec
	TransferAmount   prometheus.Histogram
	LimitRejections  *prometheus.CounterVec

	// Payroll metrics
	PayrollPostings *prometheus.CounterVec
	PayrollLines    *prometheus.CounterVec

	// Gateway metrics
	GatewayRequests *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
	GatewayRetries  *prometheus.CounterVec

	// Reconciliation metrics
	ReconciliationCases       *prometheus.CounterVec
	ReconciliationEscalations prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Database metrics
	DBRetries prometheus.Counter

	// Redis metrics
	RedisErrors *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them with reg.
// A nil registerer falls back to the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Transfer metrics
		Transfers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transferhub_transfers_total",
				Help: "Gateway money movements by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		TransferDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transferhub_transfer_duration_seconds",
				Help:    "Duration of debit and refund operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		TransferAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "transferhub_transfer_amount",
			Help:    "Completed transfer amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		LimitRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transferhub_limit_rejections_total",
				Help: "Debits rejected by pricing or limit rules",
			},
			[]string{"reason"},
		),

		// Payroll metrics
		PayrollPostings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transferhub_payroll_postings_total",
				Help: "Salary cycle postings by outcome",
			},
			[]string{"outcome"},
		),
		PayrollLines: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transferhub_payroll_lines_total",
				Help: "Salary lines submitted to the gateway by result",
			},
			[]string{"result"},
		),

		// Gateway metrics
		GatewayRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transferhub_gateway_requests_total",
				Help: "Core banking gateway calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		GatewayDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transferhub_gateway_duration_seconds",
				Help:    "Core banking gateway call duration",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		GatewayRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transferhub_gateway_retries_total",
				Help: "Gateway calls retried after a transport failure",
			},
			[]string{"operation"},
		),

		// Reconciliation metrics
		ReconciliationCases: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transferhub_reconciliation_cases_total",
				Help: "Reconciliation cases opened by kind",
			},
			[]string{"kind"},
		),
		ReconciliationEscalations: factory.NewCounter(prometheus.CounterOpts{
			Name: "transferhub_reconciliation_escalations_total",
			Help: "Open reconciliation cases escalated to operators",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transferhub_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transferhub_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "transferhub_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Database metrics
		DBRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "transferhub_db_retries_total",
			Help: "Database transactions retried after a serialization failure or deadlock",
		}),

		// Redis metrics
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transferhub_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "transferhub_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
}
