package processor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for paymentsProcessedTotal.
const (
	outcomeSuccess  = "success"
	outcomeFailure  = "failure"
	outcomeError    = "error"
	outcomeRejected = "rejected"
)

var (
	paymentsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_processed_total",
		Help: "Total number of payments processed, by method and outcome.",
	}, []string{"method", "outcome"})

	paymentProcessingDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_processing_duration_seconds",
		Help:    "Wall-clock time spent in ProcessPayment, retries and backoff included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	paymentRetryAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_retry_attempts_total",
		Help: "Attempts made after the first one by the retry decorator.",
	}, []string{"method"})
)

// GetPaymentsProcessedTotal exposes the processed-payments counter for tests.
func GetPaymentsProcessedTotal() *prometheus.CounterVec {
	return paymentsProcessedTotal
}

// GetPaymentProcessingDurationSeconds exposes the duration histogram for tests.
func GetPaymentProcessingDurationSeconds() *prometheus.HistogramVec {
	return paymentProcessingDurationSeconds
}

// GetPaymentRetryAttemptsTotal exposes the retry counter for tests.
func GetPaymentRetryAttemptsTotal() *prometheus.CounterVec {
	return paymentRetryAttemptsTotal
}
