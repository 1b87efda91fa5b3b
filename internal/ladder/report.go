package ladder

import "time"

// Stage names one enrichment phase of the harvest.
type Stage string

const (
	StageRoster      Stage = "roster"
	StageIdentifiers Stage = "identifiers"
	StageMatches     Stage = "matches"
	StageDetails     Stage = "details"
)

// FrontierStages are the stages driven from a frontier, in dependency order.
var FrontierStages = []Stage{StageIdentifiers, StageMatches, StageDetails}

// StageReport is the outcome of one stage run.
type StageReport struct {
	Stage          Stage           `msgpack:"stage" json:"stage"`
	RunID          string          `msgpack:"run_id" json:"run_id"`
	StartedAt      time.Time       `msgpack:"started_at" json:"started_at"`
	Duration       time.Duration   `msgpack:"duration" json:"duration"`
	FrontierSize   int             `msgpack:"frontier_size" json:"frontier_size"`
	BatchesPlanned int             `msgpack:"batches_planned" json:"batches_planned"`
	BatchesRun     int             `msgpack:"batches_run" json:"batches_run"`
	Fetched        int             `msgpack:"fetched" json:"fetched"`
	Failed         int             `msgpack:"failed" json:"failed"`
	Written        int             `msgpack:"written" json:"written"`
	Remaining      int             `msgpack:"remaining" json:"remaining"`
	Reconcile      *ReconcileStats `msgpack:"reconcile,omitempty" json:"reconcile,omitempty"`
	BackupPath     string          `msgpack:"backup_path,omitempty" json:"backup_path,omitempty"`
	Error          string          `msgpack:"error,omitempty" json:"error,omitempty"`
}
