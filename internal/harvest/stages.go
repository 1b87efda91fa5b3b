package harvest

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/ladder-harvester/internal/ladder"
	"github.com/mauv0809/ladder-harvester/internal/pubsub"
	"github.com/mauv0809/ladder-harvester/internal/riot"
)

// RunRoster fetches the top-of-ladder roster and reconciles the players table against it.
// The store is backed up first. An empty roster is never reconciled, so a failed fetch
// cannot wipe the table.
func (h *Harvester) RunRoster(ctx context.Context, dryRun bool) (ladder.StageReport, error) {
	report := ladder.StageReport{
		Stage:     ladder.StageRoster,
		RunID:     uuid.NewString(),
		StartedAt: h.clock.Now(),
	}
	logger := log.With("stage", ladder.StageRoster, "run_id", report.RunID)
	h.metrics.IncStageRuns(string(ladder.StageRoster))

	if h.backup != nil && !dryRun {
		path, err := h.backup(h.clock.Now())
		if err != nil {
			return h.finish(logger, report, dryRun, fmt.Errorf("failed to back up store: %w", err))
		}
		if path == "" {
			logger.Info("No store file to back up yet")
		} else {
			logger.Info("Backed up store", "path", path)
		}
		report.BackupPath = path
	}

	players, err := h.client.ListTopPlayers(ctx)
	if err != nil {
		if riot.IsFatal(err) {
			err = fmt.Errorf("%w: %w", ErrFatalFetch, err)
			h.alert(logger, ladder.StageRoster, report.RunID, err, dryRun)
		}
		return h.finish(logger, report, dryRun, fmt.Errorf("failed to fetch roster: %w", err))
	}
	report.Fetched = len(players)
	report.FrontierSize = len(players)
	h.metrics.SetFrontierSize(string(ladder.StageRoster), len(players))

	if len(players) == 0 {
		logger.Warn("Roster fetch returned no players, skipping reconciliation")
		return h.finish(logger, report, dryRun, nil)
	}
	if dryRun {
		logger.Info("[Dry Run] Skipping reconciliation", "players", len(players))
		return h.finish(logger, report, dryRun, nil)
	}

	stats, err := h.store.ReconcilePlayers(ctx, players, h.clock.Now())
	if err != nil {
		return h.finish(logger, report, dryRun, fmt.Errorf("failed to reconcile roster: %w", err))
	}
	report.Reconcile = &stats
	report.Written = stats.Inserted + stats.Updated + stats.Deleted
	h.metrics.ObserveReconcile(stats.Inserted, stats.Updated, stats.Deleted)
	h.metrics.AddRowsWritten(string(ladder.StageRoster), report.Written)
	if h.counters != nil {
		h.counters.Add("roster_written", report.Written)
	}
	logger.Info("Reconciled roster",
		"before", stats.Before,
		"after", stats.After,
		"inserted", stats.Inserted,
		"updated", stats.Updated,
		"deleted", stats.Deleted,
	)
	if err := h.pubsub.SendMessage(pubsub.EventRosterReconciled, stats); err != nil {
		logger.Warn("Failed to publish roster reconciliation", "error", err)
	}
	return h.finish(logger, report, dryRun, nil)
}

// RunIdentifiers resolves the global id of every player that lacks one.
func (h *Harvester) RunIdentifiers(ctx context.Context, limit BatchLimit, dryRun bool) (ladder.StageReport, error) {
	return runStage(ctx, h, stage[ladder.PlayerKey, ladder.IdentifierResult]{
		name:     ladder.StageIdentifiers,
		frontier: h.store.PlayersNeedingIdentifier,
		fetch: func(ctx context.Context, p ladder.PlayerKey) ([]ladder.IdentifierResult, error) {
			globalID, err := h.client.FetchPlayerIdentifier(ctx, p.SourcePlayerID, p.Region)
			if err != nil {
				return nil, err
			}
			return []ladder.IdentifierResult{{SourcePlayerID: p.SourcePlayerID, Region: p.Region, GlobalID: globalID}}, nil
		},
		commit: func(ctx context.Context, rows []ladder.IdentifierResult) (int, error) {
			return h.store.SetGlobalIDs(ctx, rows, h.clock.Now())
		},
		describe: func(p ladder.PlayerKey) []any {
			return []any{"player", p.SourcePlayerID, "region", p.Region}
		},
	}, limit, dryRun)
}

// RunMatchIDs discovers the matches every resolved player played since its frontier cursor.
func (h *Harvester) RunMatchIDs(ctx context.Context, limit BatchLimit, dryRun bool) (ladder.StageReport, error) {
	return runStage(ctx, h, stage[ladder.MatchFrontier, ladder.MatchRef]{
		name:     ladder.StageMatches,
		frontier: h.store.PlayersNeedingMatches,
		fetch: func(ctx context.Context, f ladder.MatchFrontier) ([]ladder.MatchRef, error) {
			ids, err := h.client.ListMatchIDs(ctx, f.GlobalID, f.Region, f.Since)
			if err != nil {
				return nil, err
			}
			now := h.clock.Now()
			refs := make([]ladder.MatchRef, 0, len(ids))
			for _, id := range ids {
				refs = append(refs, ladder.MatchRef{MatchID: id, OwnerGlobalID: f.GlobalID, Region: f.Region, CreatedAt: now})
			}
			return refs, nil
		},
		commit: h.store.InsertMatchRefs,
		describe: func(f ladder.MatchFrontier) []any {
			return []any{"player", f.SourcePlayerID, "region", f.Region, "since", f.Since}
		},
	}, limit, dryRun)
}

// RunMatchDetails fetches the detail of every match reference that has none.
func (h *Harvester) RunMatchDetails(ctx context.Context, limit BatchLimit, dryRun bool) (ladder.StageReport, error) {
	return runStage(ctx, h, stage[ladder.MatchKey, ladder.MatchDetail]{
		name:     ladder.StageDetails,
		frontier: h.store.MatchesNeedingDetail,
		fetch: func(ctx context.Context, m ladder.MatchKey) ([]ladder.MatchDetail, error) {
			rec, err := h.client.FetchMatchDetail(ctx, m.MatchID, m.Region)
			if err != nil {
				return nil, err
			}
			detail, err := ladder.MatchDetailFromRecord(rec, h.clock.Now())
			if err != nil {
				return nil, err
			}
			return []ladder.MatchDetail{detail}, nil
		},
		commit: h.store.InsertMatchDetails,
		describe: func(m ladder.MatchKey) []any {
			return []any{"match", m.MatchID, "region", m.Region}
		},
	}, limit, dryRun)
}

// Run runs a single stage by name. The roster stage ignores the batch limit.
func (h *Harvester) Run(ctx context.Context, name ladder.Stage, limit BatchLimit, dryRun bool) (ladder.StageReport, error) {
	switch name {
	case ladder.StageRoster:
		return h.RunRoster(ctx, dryRun)
	case ladder.StageIdentifiers:
		return h.RunIdentifiers(ctx, limit, dryRun)
	case ladder.StageMatches:
		return h.RunMatchIDs(ctx, limit, dryRun)
	case ladder.StageDetails:
		return h.RunMatchDetails(ctx, limit, dryRun)
	default:
		return ladder.StageReport{}, fmt.Errorf("unknown stage %q", name)
	}
}

// RunAll runs the roster stage (when withRoster is set) and then every frontier stage in
// dependency order, stopping at the first stage that fails. The store summary is sent when
// all stages succeed.
func (h *Harvester) RunAll(ctx context.Context, limit BatchLimit, withRoster, dryRun bool) ([]ladder.StageReport, error) {
	stages := ladder.FrontierStages
	if withRoster {
		stages = append([]ladder.Stage{ladder.StageRoster}, stages...)
	}

	reports := make([]ladder.StageReport, 0, len(stages))
	for _, name := range stages {
		report, err := h.Run(ctx, name, limit, dryRun)
		reports = append(reports, report)
		if err != nil {
			return reports, err
		}
	}

	summary, err := h.store.Summary(ctx)
	if err != nil {
		log.Warn("Failed to summarise store", "error", err)
		return reports, nil
	}
	if err := h.notifier.SendSummary(summary, dryRun); err != nil {
		log.Warn("Failed to send summary", "error", err)
	}
	return reports, nil
}
