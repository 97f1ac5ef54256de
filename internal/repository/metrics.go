package repository

import (
	"github.com/conectamentor/mentoria-api/pkg/metrics"
)

// recordMetrics records a DB operation's duration with its outcome
func recordMetrics(operation, status string, duration float64) {
	metrics.DBOperationDuration.WithLabelValues(operation, status).Observe(duration)
}
