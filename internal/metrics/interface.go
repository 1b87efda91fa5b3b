package metrics

// Metrics defines the interface for collecting harvester metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncStageRuns(stage string)
	IncBatches(stage string)
	IncItemsFetched(stage string)
	IncItemsFailed(stage string)
	AddRowsWritten(stage string, n int)
	SetFrontierSize(stage string, n int)
	ObservePacingDelay(seconds float64)
	IncThrottled()
	ObserveReconcile(inserted, updated, deleted int)
	IncNotifSent()
	IncNotifFailed()
}

// CounterStore persists cumulative counters across process restarts.
type CounterStore interface {
	Add(key string, n int)
	GetAll() (map[string]int, error)
}
