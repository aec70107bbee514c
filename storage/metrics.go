package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// statementsCounter counts statements by outcome ("ok" or "error").
//
// Metric name: litecollections_storage_statements_total
var statementsCounter = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Namespace: "litecollections",
		Subsystem: "storage",
		Name:      "statements_total",
		Help:      "Total number of statements executed against container storage",
	},
	[]string{"outcome"},
)

// statementDuration observes wall time per statement, including the
// surrounding transaction.
//
// Metric name: litecollections_storage_statement_duration_seconds
var statementDuration = promauto.NewHistogram( //nolint:gochecknoglobals
	prometheus.HistogramOpts{
		Namespace: "litecollections",
		Subsystem: "storage",
		Name:      "statement_duration_seconds",
		Help:      "Duration of statements executed against container storage",
		Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 10), //nolint:mnd
	},
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}
