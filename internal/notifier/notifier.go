package notifier

import "github.com/mauv0809/ladder-harvester/internal/ladder"

// Notifier defines a high-level interface for sending notifications about harvest runs.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// After every stage run
	SendStageReport(report ladder.StageReport, dryRun bool) error
	// When a stage aborts on a failure every further call would repeat
	SendFatalAlert(stage ladder.Stage, runID string, cause error, dryRun bool) error
	// After a full harvest
	SendSummary(summary ladder.Summary, dryRun bool) error
}
