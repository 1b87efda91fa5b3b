package notifier

import (
	"github.com/charmbracelet/log"
	"github.com/mauv0809/ladder-harvester/internal/ladder"
)

var _ Notifier = Noop{}

// Noop logs instead of notifying. It is used when no Slack channel is configured.
type Noop struct{}

func (Noop) SendStageReport(report ladder.StageReport, dryRun bool) error {
	log.Debug("Notifications disabled, skipping stage report", "stage", report.Stage, "run_id", report.RunID)
	return nil
}

func (Noop) SendFatalAlert(stage ladder.Stage, runID string, cause error, dryRun bool) error {
	log.Debug("Notifications disabled, skipping fatal alert", "stage", stage, "run_id", runID)
	return nil
}

func (Noop) SendSummary(summary ladder.Summary, dryRun bool) error {
	return nil
}
