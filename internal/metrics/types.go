package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the harvester.
// Per-stage metrics carry a "stage" label.
type Service struct {
	StageRuns       *prometheus.CounterVec
	Batches         *prometheus.CounterVec
	ItemsFetched    *prometheus.CounterVec
	ItemsFailed     *prometheus.CounterVec
	RowsWritten     *prometheus.CounterVec
	FrontierSize    *prometheus.GaugeVec
	PacingDelay     prometheus.Histogram
	Throttled       prometheus.Counter
	ReconcileDeltas *prometheus.CounterVec
	NotifSent       prometheus.Counter
	NotifFailed     prometheus.Counter
}
