package domain

import "time"

// RunStatus is the lifecycle state of an import run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Trigger sources for an import run.
const (
	TriggerCron   = "cron"
	TriggerManual = "manual"
	TriggerAPI    = "api"
)

// ImportRun aggregates the outcome of one orchestrator execution.
type ImportRun struct {
	ID          string     `db:"id" json:"id"`
	TriggeredBy string     `db:"triggered_by" json:"triggered_by"`
	Status      RunStatus  `db:"status" json:"status"`
	Processed   int        `db:"processed" json:"processed"`
	Created     int        `db:"created" json:"created"`
	Duplicates  int        `db:"duplicates" json:"duplicates"`
	Failed      int        `db:"failed" json:"failed"`
	Error       *string    `db:"error" json:"error,omitempty"`
	StartedAt   time.Time  `db:"started_at" json:"started_at"`
	FinishedAt  *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}
