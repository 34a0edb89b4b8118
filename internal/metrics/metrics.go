package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardling_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "boardling_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	InvoicesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardling_invoices_created_total",
			Help: "Total number of invoices created",
		},
		[]string{"kind"},
	)

	InvoicesPaidTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardling_invoices_paid_total",
			Help: "Total number of invoices confirmed paid",
		},
		[]string{"kind"},
	)

	InvoicesExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "boardling_invoices_expired_total",
			Help: "Total number of invoices expired by the sweep",
		},
	)

	WithdrawalsRequestedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "boardling_withdrawals_requested_total",
			Help: "Total number of accepted withdrawal requests",
		},
	)

	WithdrawalsResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardling_withdrawals_resolved_total",
			Help: "Total number of withdrawals resolved",
		},
		[]string{"status"},
	)

	PayoutQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "boardling_payout_queue_length",
			Help: "Current length of the payout queue",
		},
	)

	PrivacyModeChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardling_privacy_mode_changes_total",
			Help: "Total number of privacy mode changes",
		},
		[]string{"mode"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordInvoiceCreated(kind string) {
	InvoicesCreatedTotal.WithLabelValues(kind).Inc()
}

func RecordInvoicePaid(kind string) {
	InvoicesPaidTotal.WithLabelValues(kind).Inc()
}

func RecordInvoicesExpired(n int64) {
	InvoicesExpiredTotal.Add(float64(n))
}

func RecordWithdrawalRequested() {
	WithdrawalsRequestedTotal.Inc()
}

func RecordWithdrawalResolved(status string) {
	WithdrawalsResolvedTotal.WithLabelValues(status).Inc()
}

func SetPayoutQueueLength(n int64) {
	PayoutQueueLength.Set(float64(n))
}

func RecordPrivacyModeChange(mode string) {
	PrivacyModeChangesTotal.WithLabelValues(mode).Inc()
}
