package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ladder-harvester/internal/harvest"
	"github.com/mauv0809/ladder-harvester/internal/ladder"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// SummaryHandler reports per-stage progress of the store and the cumulative counters.
func (s *Server) SummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := s.Store.Summary(r.Context())
		if err != nil {
			log.Error("Failed to summarise store", "error", err)
			http.Error(w, "Failed to summarise store", http.StatusInternalServerError)
			return
		}
		resp := summaryResponse{Summary: summary}
		if s.Counters != nil {
			counters, err := s.Counters.GetAll()
			if err != nil {
				log.Warn("Failed to read counters", "error", err)
			}
			resp.Counters = counters
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// RunHandler triggers a stage run, or all stages for /run/all.
//
// Query parameters: batches (a positive number or "all", required except for the roster),
// roster (false skips the roster in /run/all), wait (true runs synchronously and returns the
// reports), dry_run and verbose. A second trigger while a run is in progress gets 409.
func (s *Server) RunHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("stage")
		params := runParamsFromContext(r.Context())

		if name != "all" && !isKnownStage(ladder.Stage(name)) {
			http.Error(w, fmt.Sprintf("Unknown stage %q", name), http.StatusNotFound)
			return
		}

		limit := harvest.AllBatches()
		if name != string(ladder.StageRoster) {
			var err error
			limit, err = harvest.ParseBatchLimit(params.Batches)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		if !s.runMu.TryLock() {
			log.Warn("Rejecting run, another run is in progress", "stage", name)
			http.Error(w, "A harvest run is already in progress", http.StatusConflict)
			return
		}

		resp := runResponse{Stage: name, Batches: limit.String(), DryRun: params.DryRun}
		run := func(ctx context.Context) ([]ladder.StageReport, error) {
			if name == "all" {
				return s.Harvester.RunAll(ctx, limit, params.WithRoster, params.DryRun)
			}
			report, err := s.Harvester.Run(ctx, ladder.Stage(name), limit, params.DryRun)
			return []ladder.StageReport{report}, err
		}

		if !params.Wait {
			s.runs.Add(1)
			go func() {
				defer s.runs.Done()
				defer s.runMu.Unlock()
				if _, err := run(s.baseCtx); err != nil {
					log.Error("Background harvest run failed", "stage", name, "error", err)
				}
			}()
			resp.Status = "started"
			writeJSON(w, http.StatusAccepted, resp)
			return
		}

		defer s.runMu.Unlock()
		reports, err := run(r.Context())
		resp.Reports = reports
		if err != nil {
			log.Error("Harvest run failed", "stage", name, "error", err)
			resp.Status = "failed"
			resp.Error = err.Error()
			status := http.StatusInternalServerError
			if harvest.IsFatal(err) {
				status = http.StatusBadGateway
			}
			writeJSON(w, status, resp)
			return
		}
		resp.Status = "completed"
		writeJSON(w, http.StatusOK, resp)
	}
}

func isKnownStage(stage ladder.Stage) bool {
	if stage == ladder.StageRoster {
		return true
	}
	for _, s := range ladder.FrontierStages {
		if s == stage {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}
