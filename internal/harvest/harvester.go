package harvest

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/ladder-harvester/internal/ladder"
	"github.com/mauv0809/ladder-harvester/internal/metrics"
	"github.com/mauv0809/ladder-harvester/internal/notifier"
	"github.com/mauv0809/ladder-harvester/internal/pubsub"
	"github.com/mauv0809/ladder-harvester/internal/ratelimit"
	"github.com/mauv0809/ladder-harvester/internal/riot"
)

// New creates a new Harvester. Optional collaborators that are not set are replaced by no-ops.
func New(opts Options) *Harvester {
	h := &Harvester{
		store:    opts.Store,
		client:   opts.Client,
		budget:   opts.Budget,
		metrics:  opts.Metrics,
		counters: opts.Counters,
		notifier: opts.Notifier,
		pubsub:   opts.PubSub,
		backup:   opts.Backup,
		clock:    opts.Clock,
		sleep:    opts.Sleep,
	}
	if h.budget == nil {
		h.budget = ratelimit.New(0, 0, h.clock)
	}
	if h.metrics == nil {
		h.metrics = metrics.Noop{}
	}
	if h.notifier == nil {
		h.notifier = notifier.Noop{}
	}
	if h.pubsub == nil {
		h.pubsub = pubsub.Noop{}
	}
	if h.clock == nil {
		h.clock = ratelimit.SystemClock{}
	}
	if h.sleep == nil {
		h.sleep = ratelimit.Sleep
	}
	return h
}

// runStage drives one stage's frontier to exhaustion or to the batch limit.
//
// Items are fetched one at a time. A failed item is logged and skipped. The successes of a
// batch are committed in one transaction; a commit failure halts the run. Between batches the
// run sleeps until the rate budget window that started with the batch has passed.
// Cancellation is honoured between batches and during that sleep, never inside a batch.
func runStage[T, R any](ctx context.Context, h *Harvester, s stage[T, R], limit BatchLimit, dryRun bool) (ladder.StageReport, error) {
	report := ladder.StageReport{
		Stage:     s.name,
		RunID:     uuid.NewString(),
		StartedAt: h.clock.Now(),
	}
	logger := log.With("stage", s.name, "run_id", report.RunID)
	h.metrics.IncStageRuns(string(s.name))

	items, err := s.frontier(ctx)
	if err != nil {
		return h.finish(logger, report, dryRun, fmt.Errorf("failed to resolve %s frontier: %w", s.name, err))
	}

	batchSize := h.budget.BatchSize(0)
	total := (len(items) + batchSize - 1) / batchSize
	report.FrontierSize = len(items)
	report.BatchesPlanned = limit.Plan(total)
	report.Remaining = len(items)
	h.metrics.SetFrontierSize(string(s.name), len(items))

	logger.Info("Planned stage run",
		"frontier", len(items),
		"batch_size", batchSize,
		"batches_total", total,
		"batches", report.BatchesPlanned,
		"limit", limit,
		"estimated", h.budget.EstimatedDuration(report.BatchesPlanned),
	)
	if len(items) == 0 {
		logger.Info("Frontier is empty, nothing to fetch")
		return h.finish(logger, report, dryRun, nil)
	}
	if dryRun {
		logger.Info("[Dry Run] Skipping fetch and store writes")
		return h.finish(logger, report, dryRun, nil)
	}

	for i := 0; i < report.BatchesPlanned; i++ {
		if err := ctx.Err(); err != nil {
			return h.finish(logger, report, dryRun, err)
		}

		batchStart := h.budget.RecordBatchStart()
		lo := i * batchSize
		hi := min(lo+batchSize, len(items))
		logger.Info("Processing batch", "batch", i+1, "of", report.BatchesPlanned, "items", hi-lo)

		var (
			rows      []R
			fatalErr  error
			attempted int
		)
		fetchCtx := context.WithoutCancel(ctx)
		for _, item := range items[lo:hi] {
			out, err := s.fetch(fetchCtx, item)
			if err != nil && riot.IsFatal(err) {
				// The item stays in the frontier, so it counts as remaining.
				fatalErr = fmt.Errorf("%w: %w", ErrFatalFetch, err)
				break
			}
			attempted++
			if err != nil {
				report.Failed++
				h.metrics.IncItemsFailed(string(s.name))
				logger.Error("Failed to fetch item, skipping", append(s.describe(item), "error", err)...)
				continue
			}
			report.Fetched++
			h.metrics.IncItemsFetched(string(s.name))
			rows = append(rows, out...)
		}

		// The fetched rows are committed even when a fatal failure ends the batch early.
		written, err := s.commit(fetchCtx, rows)
		if err != nil {
			logger.Error("Failed to commit batch", "batch", i+1, "rows", len(rows), "error", err)
			return h.finish(logger, report, dryRun, fmt.Errorf("failed to commit batch %d of stage %s: %w", i+1, s.name, err))
		}
		report.BatchesRun++
		report.Written += written
		report.Remaining = len(items) - (lo + attempted)
		h.metrics.IncBatches(string(s.name))
		h.metrics.AddRowsWritten(string(s.name), written)
		if h.counters != nil {
			h.counters.Add(string(s.name)+"_written", written)
		}
		logger.Info("Committed batch", "batch", i+1, "of", report.BatchesPlanned, "rows", len(rows), "written", written)

		if fatalErr != nil {
			h.alert(logger, s.name, report.RunID, fatalErr, dryRun)
			return h.finish(logger, report, dryRun, fatalErr)
		}
		if err := ctx.Err(); err != nil {
			return h.finish(logger, report, dryRun, err)
		}

		if i+1 < report.BatchesPlanned {
			delay := h.budget.DelayBeforeNext(batchStart)
			h.metrics.ObservePacingDelay(delay.Seconds())
			logger.Info("Pacing before next batch", "delay", delay)
			if err := h.sleep(ctx, delay); err != nil {
				return h.finish(logger, report, dryRun, err)
			}
		}
	}

	if report.Remaining > 0 {
		logger.Info("Items remaining for a future run", "remaining", report.Remaining)
	}
	return h.finish(logger, report, dryRun, nil)
}

// finish stamps the report, logs it and fans it out to the notifier and pubsub.
// Notification failures never fail the run.
func (h *Harvester) finish(logger *log.Logger, report ladder.StageReport, dryRun bool, runErr error) (ladder.StageReport, error) {
	report.Duration = h.clock.Now().Sub(report.StartedAt)
	if runErr != nil {
		report.Error = runErr.Error()
	}

	logger.Info("Stage run finished",
		"frontier", report.FrontierSize,
		"batches", report.BatchesRun,
		"fetched", report.Fetched,
		"failed", report.Failed,
		"written", report.Written,
		"remaining", report.Remaining,
		"duration", report.Duration,
		"error", report.Error,
	)

	if err := h.notifier.SendStageReport(report, dryRun); err != nil {
		logger.Warn("Failed to send stage report", "error", err)
	}
	if !dryRun {
		if err := h.pubsub.SendMessage(pubsub.EventStageCompleted, report); err != nil {
			logger.Warn("Failed to publish stage report", "error", err)
		}
	}
	return report, runErr
}

func (h *Harvester) alert(logger *log.Logger, name ladder.Stage, runID string, cause error, dryRun bool) {
	logger.Error("Aborting stage on fatal fetch failure", "error", cause)
	if err := h.notifier.SendFatalAlert(name, runID, cause, dryRun); err != nil {
		logger.Warn("Failed to send fatal alert", "error", err)
	}
}

// IsFatal reports whether a run error was caused by a fatal fetch failure.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatalFetch)
}
