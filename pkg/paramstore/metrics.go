package paramstore

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/systmms/paramstore-keyring/pkg/keyring"
)

const (
	opSet      = "set"
	opGet      = "get"
	opDelete   = "delete"
	opValidate = "validate"
)

var (
	// operationsTotal counts remote operations by backend, operation and result.
	operationsTotal *prometheus.CounterVec

	// operationDuration tracks remote call latency.
	operationDuration *prometheus.HistogramVec

	metricsOnce       sync.Once
	metricsRegistered atomic.Bool
)

// InitMetrics registers the Prometheus metrics for Parameter Store operations.
// Until it is called, operations are not recorded.
func InitMetrics() {
	metricsOnce.Do(func() {
		operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paramstore_keyring_operations_total",
			Help: "Total number of Parameter Store keyring operations by result",
		}, []string{"backend", "operation", "result"})

		operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paramstore_keyring_operation_duration_seconds",
			Help:    "Latency of Parameter Store keyring operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend", "operation"})

		metricsRegistered.Store(true)
	})
}

// OperationsCounter returns the operations counter for testing.
// Returns nil if metrics have not been initialized.
func OperationsCounter() *prometheus.CounterVec {
	return operationsTotal
}

func observe(backend, op string, start time.Time, errp *error) {
	if !metricsRegistered.Load() {
		return
	}

	result := "success"
	if errp != nil && *errp != nil {
		result = "error"
		if keyring.IsNotFound(*errp) {
			result = "not_found"
		}
	}

	operationsTotal.WithLabelValues(backend, op, result).Inc()
	operationDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}
