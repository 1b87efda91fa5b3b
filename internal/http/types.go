package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/mauv0809/ladder-harvester/internal/harvest"
	"github.com/mauv0809/ladder-harvester/internal/ladder"
	"github.com/mauv0809/ladder-harvester/internal/metrics"
)

// Harvester is the part of *harvest.Harvester the server triggers.
type Harvester interface {
	Run(ctx context.Context, stage ladder.Stage, limit harvest.BatchLimit, dryRun bool) (ladder.StageReport, error)
	RunAll(ctx context.Context, limit harvest.BatchLimit, withRoster, dryRun bool) ([]ladder.StageReport, error)
}

type Server struct {
	Store          ladder.Store
	Counters       metrics.CounterStore
	MetricsHandler http.Handler
	Harvester      Harvester
	Router         *http.ServeMux

	// runMu allows one harvest run at a time against the store.
	runMu sync.Mutex
	// baseCtx outlives requests so background runs survive the trigger request. Close cancels it.
	baseCtx context.Context
	cancel  context.CancelFunc
	runs    sync.WaitGroup
}

// runResponse is the body returned by the run endpoints.
type runResponse struct {
	Status  string               `json:"status"`
	Stage   string               `json:"stage"`
	Batches string               `json:"batches"`
	DryRun  bool                 `json:"dry_run"`
	Reports []ladder.StageReport `json:"reports,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// summaryResponse is the body returned by /summary.
type summaryResponse struct {
	ladder.Summary
	Counters map[string]int `json:"counters,omitempty"`
}
