package notifier

import (
	"sync"

	"github.com/mauv0809/ladder-harvester/internal/ladder"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendStageReportFunc func(report ladder.StageReport, dryRun bool) error
	SendFatalAlertFunc  func(stage ladder.Stage, runID string, cause error, dryRun bool) error

	// Call records
	SendStageReportCalls []ladder.StageReport
	SendFatalAlertCalls  []FatalAlertCall
	SendSummaryCalls     []ladder.Summary
}

// FatalAlertCall holds the arguments for a call to SendFatalAlert.
type FatalAlertCall struct {
	Stage ladder.Stage
	RunID string
	Cause error
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStageReportCalls = nil
	m.SendFatalAlertCalls = nil
	m.SendSummaryCalls = nil
}

func (m *Mock) SendStageReport(report ladder.StageReport, dryRun bool) error {
	m.mu.Lock()
	m.SendStageReportCalls = append(m.SendStageReportCalls, report)
	fn := m.SendStageReportFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(report, dryRun)
	}
	return nil
}

func (m *Mock) SendFatalAlert(stage ladder.Stage, runID string, cause error, dryRun bool) error {
	m.mu.Lock()
	m.SendFatalAlertCalls = append(m.SendFatalAlertCalls, FatalAlertCall{Stage: stage, RunID: runID, Cause: cause})
	fn := m.SendFatalAlertFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(stage, runID, cause, dryRun)
	}
	return nil
}

func (m *Mock) SendSummary(summary ladder.Summary, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSummaryCalls = append(m.SendSummaryCalls, summary)
	return nil
}
