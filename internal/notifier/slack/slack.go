package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ladder-harvester/internal/ladder"
	"github.com/mauv0809/ladder-harvester/internal/metrics"
	"github.com/mauv0809/ladder-harvester/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendStageReport(report ladder.StageReport, dryRun bool) error {
	_, _, err := s.sendMessage(formatStageReport(report), dryRun)
	return err
}

func (s *Notifier) SendFatalAlert(stage ladder.Stage, runID string, cause error, dryRun bool) error {
	_, _, err := s.sendMessage(formatFatalAlert(stage, runID, cause), dryRun)
	return err
}

func (s *Notifier) SendSummary(summary ladder.Summary, dryRun bool) error {
	_, _, err := s.sendMessage(formatSummary(summary), dryRun)
	return err
}

// formatStageReport creates the Block Kit message for a finished stage run.
func formatStageReport(r ladder.StageReport) slack.Message {
	blocks := make([]slack.Block, 0, 3)

	header := fmt.Sprintf("Harvest stage %s finished", r.Stage)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", header, false, false)))

	var fields []*slack.TextBlockObject
	if r.Reconcile != nil {
		fields = append(fields,
			field("Players", fmt.Sprintf("%d → %d", r.Reconcile.Before, r.Reconcile.After)),
			field("Inserted", r.Reconcile.Inserted),
			field("Updated", r.Reconcile.Updated),
			field("Deleted", r.Reconcile.Deleted),
		)
	} else {
		fields = append(fields,
			field("Frontier", r.FrontierSize),
			field("Batches", fmt.Sprintf("%d / %d", r.BatchesRun, r.BatchesPlanned)),
			field("Fetched", r.Fetched),
			field("Failed", r.Failed),
			field("Written", r.Written),
			field("Remaining", r.Remaining),
		)
	}
	blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))

	ctxText := fmt.Sprintf("run %s · %s", r.RunID, r.Duration.Round(time.Second))
	if r.Error != "" {
		ctxText += " · stopped: " + r.Error
	}
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("mrkdwn", ctxText, false, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatFatalAlert creates the message sent when a stage aborts.
func formatFatalAlert(stage ladder.Stage, runID string, cause error) slack.Message {
	text := fmt.Sprintf(":rotating_light: *Harvest stage %s aborted*\n```%v```\nEvery further request would fail the same way. Check the Riot API key.", stage, cause)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
		slack.NewContextBlock("", slack.NewTextBlockObject("mrkdwn", "run "+runID, false, false)),
	)
}

// formatSummary creates the store progress message.
func formatSummary(sum ladder.Summary) slack.Message {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", "Ladder store summary", false, false)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			field("Players", sum.Players),
			field("Without identifier", sum.PlayersWithoutIdentifier),
			field("Match refs", sum.MatchRefs),
			field("Without detail", sum.MatchesWithoutDetail),
		}, nil),
	}

	if len(sum.ByRegionTier) > 0 {
		lines := make([]string, 0, len(sum.ByRegionTier))
		for _, c := range sum.ByRegionTier {
			lines = append(lines, fmt.Sprintf("• %s %s: %d", c.Region, c.Tier, c.Count))
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", strings.Join(lines, "\n"), false, false), nil, nil))
	}
	return slack.NewBlockMessage(blocks...)
}

func field(label string, value any) *slack.TextBlockObject {
	return slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*%s*\n%v", label, value), false, false)
}
