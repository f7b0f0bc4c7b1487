package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionsCreated *prometheus.CounterVec
	TransactionsDeleted prometheus.Counter
	TransactionAmount   *prometheus.HistogramVec

	// Loan metrics
	LoansCreated        *prometheus.CounterVec
	LoanPaymentsCreated *prometheus.CounterVec
	LoansClosed         prometheus.Counter
	LoansDeleted        prometheus.Counter
	LoanDeleteFallback  prometheus.Counter
	LoanStatsCacheHits  *prometheus.CounterVec

	// Engine-wide
	OperationDuration *prometheus.HistogramVec
	OperationErrors   *prometheus.CounterVec
	UnitOfWorkRetries *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec
	OutboxBacklog   prometheus.Gauge

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates the metrics and registers them with reg.
// A nil reg registers with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		TransactionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_transactions_created_total",
				Help: "Total number of ledger transactions created by type",
			},
			[]string{"type"},
		),
		TransactionsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "pocketledger_transactions_deleted_total",
			Help: "Total number of ledger transactions soft-deleted",
		}),
		TransactionAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pocketledger_transaction_amount",
				Help:    "Transaction amounts",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"type"},
		),

		LoansCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_loans_created_total",
				Help: "Total number of loans created by kind",
			},
			[]string{"kind"},
		),
		LoanPaymentsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_loan_payments_created_total",
				Help: "Total number of loan payments by loan kind",
			},
			[]string{"kind"},
		),
		LoansClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "pocketledger_loans_closed_total",
			Help: "Total number of loans paid off",
		}),
		LoansDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "pocketledger_loans_deleted_total",
			Help: "Total number of loans soft-deleted",
		}),
		LoanDeleteFallback: factory.NewCounter(prometheus.CounterOpts{
			Name: "pocketledger_loan_delete_fallback_total",
			Help: "Loans soft-deleted without reverting their disbursement",
		}),
		LoanStatsCacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_loan_stats_cache_total",
				Help: "Loan stats cache lookups by result",
			},
			[]string{"result"},
		),

		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pocketledger_operation_duration_seconds",
				Help:    "Duration of ledger operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		OperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_operation_errors_total",
				Help: "Total number of ledger operation errors by kind",
			},
			[]string{"operation", "kind"},
		),
		UnitOfWorkRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_unit_of_work_retries_total",
				Help: "Units of work re-run after losing a lock race, by SQLSTATE",
			},
			[]string{"sqlstate"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_events_published_total",
				Help: "Outbox events published by type",
			},
			[]string{"event_type"},
		),
		EventsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_events_failed_total",
				Help: "Outbox events that failed to publish by type",
			},
			[]string{"event_type"},
		),
		OutboxBacklog: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pocketledger_outbox_backlog",
			Help: "Outbox events not yet published, sampled after each drain",
		}),

		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocketledger_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "pocketledger_rate_limit_hits_total",
			Help: "Total rate limit rejections",
		}),
	}
}
