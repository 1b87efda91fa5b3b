package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu            sync.Mutex
	stageRuns     map[string]int
	batches       map[string]int
	itemsFetched  map[string]int
	itemsFailed   map[string]int
	rowsWritten   map[string]int
	frontierSizes map[string]int
	pacingDelays  []float64
	throttled     int
	reconciled    [3]int
	notifSent     int
	notifFailed   int
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		stageRuns:     make(map[string]int),
		batches:       make(map[string]int),
		itemsFetched:  make(map[string]int),
		itemsFailed:   make(map[string]int),
		rowsWritten:   make(map[string]int),
		frontierSizes: make(map[string]int),
		pacingDelays:  make([]float64, 0),
	}
}

func (m *Mock) IncStageRuns(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stageRuns[stage]++
}

func (m *Mock) IncBatches(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[stage]++
}

func (m *Mock) IncItemsFetched(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemsFetched[stage]++
}

func (m *Mock) IncItemsFailed(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemsFailed[stage]++
}

func (m *Mock) AddRowsWritten(stage string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rowsWritten[stage] += n
}

func (m *Mock) SetFrontierSize(stage string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frontierSizes[stage] = n
}

func (m *Mock) ObservePacingDelay(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pacingDelays = append(m.pacingDelays, seconds)
}

func (m *Mock) IncThrottled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.throttled++
}

func (m *Mock) ObserveReconcile(inserted, updated, deleted int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconciled[0] += inserted
	m.reconciled[1] += updated
	m.reconciled[2] += deleted
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifSent++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifFailed++
}

// StageRuns returns the number of times IncStageRuns was called for a stage.
func (m *Mock) StageRuns(stage string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stageRuns[stage]
}

// Batches returns the number of times IncBatches was called for a stage.
func (m *Mock) Batches(stage string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches[stage]
}

// ItemsFetched returns the number of times IncItemsFetched was called for a stage.
func (m *Mock) ItemsFetched(stage string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.itemsFetched[stage]
}

// ItemsFailed returns the number of times IncItemsFailed was called for a stage.
func (m *Mock) ItemsFailed(stage string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.itemsFailed[stage]
}

// RowsWritten returns the sum passed to AddRowsWritten for a stage.
func (m *Mock) RowsWritten(stage string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rowsWritten[stage]
}

// FrontierSize returns the last value passed to SetFrontierSize for a stage.
func (m *Mock) FrontierSize(stage string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frontierSizes[stage]
}

// PacingDelays returns every observed pacing delay.
func (m *Mock) PacingDelays() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.pacingDelays...)
}

// Throttled returns the number of times IncThrottled was called.
func (m *Mock) Throttled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.throttled
}

// Reconciled returns the summed inserted, updated and deleted counts.
func (m *Mock) Reconciled() (inserted, updated, deleted int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reconciled[0], m.reconciled[1], m.reconciled[2]
}

// NotifSent returns the number of times IncNotifSent was called.
func (m *Mock) NotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifSent
}

// NotifFailed returns the number of times IncNotifFailed was called.
func (m *Mock) NotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifFailed
}
