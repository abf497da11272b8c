package models

import (
	"time"
)

// SourceSystem identifies which tracking system produced an execution record
type SourceSystem string

const (
	SourceWorkflow SourceSystem = "workflow"
	SourceSession  SourceSystem = "session"
	SourceBatchJob SourceSystem = "batch_job"
)

// Outcome is the normalized execution result. Every raw status maps to
// exactly one Outcome; values outside the known tables map to OutcomeUnknown.
type Outcome string

const (
	OutcomeSucceeded  Outcome = "succeeded"
	OutcomeFailed     Outcome = "failed"
	OutcomeStopped    Outcome = "stopped"
	OutcomeAborted    Outcome = "aborted"
	OutcomeTerminated Outcome = "terminated"
	OutcomeDisabled   Outcome = "disabled"
	OutcomeRunning    Outcome = "running"
	OutcomeUnknown    Outcome = "unknown"
)

// Glyph returns the chat rendering for an outcome. Anything other than
// success renders as a failure mark; the notification summaries deliberately
// collapse running/disabled/unknown into the failure column.
func (o Outcome) Glyph() string {
	switch o {
	case OutcomeSucceeded:
		return "✅"
	case OutcomeFailed, OutcomeStopped, OutcomeAborted, OutcomeTerminated,
		OutcomeDisabled, OutcomeRunning, OutcomeUnknown:
		return "❌"
	default:
		return "❌"
	}
}

// String returns the status text used on dashboard views
func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "Succeeded"
	case OutcomeFailed:
		return "Failed"
	case OutcomeStopped:
		return "Stopped"
	case OutcomeAborted:
		return "Aborted"
	case OutcomeTerminated:
		return "Terminated"
	case OutcomeDisabled:
		return "Disabled"
	case OutcomeRunning:
		return "Running"
	default:
		return "Unknown"
	}
}

// ExecutionRecord is one workflow, session, or batch-job run as fetched from
// a repository database. Records are immutable once fetched and are discarded
// after the cycle's summary is produced.
type ExecutionRecord struct {
	Source      SourceSystem `json:"source"`
	GroupName   string       `json:"group_name"` // repository folder or job group
	ItemName    string       `json:"item_name"`  // workflow, session, or job display name
	RunID       string       `json:"run_id,omitempty"`
	StartTime   time.Time    `json:"start_time"`
	EndTime     *time.Time   `json:"end_time,omitempty"`
	Status      Outcome      `json:"status"`
	RawMessage  string       `json:"raw_message,omitempty"`
	RejectCount int          `json:"reject_count"`
}

// Duration returns the run time, or zero when the run has no end time yet
func (r ExecutionRecord) Duration() time.Duration {
	if r.EndTime == nil {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// ReportWindow is a half-open interval [Start, End) selecting which records
// belong to a reporting cycle. Computed fresh from wall clock, never persisted.
type ReportWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window
func (w ReportWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ServiceStatus is the result of one integration-service probe
type ServiceStatus struct {
	Environment string `json:"environment"`
	Reachable   bool   `json:"reachable"`
}

// Deployment is one application deployed on an app server. An environment
// that cannot be reached at all is represented by a single sentinel row with
// OK=false and Enabled=false so downstream rendering always has a row.
type Deployment struct {
	Environment string `json:"environment"`
	Name        string `json:"name"`
	OK          bool   `json:"ok"`
	Enabled     bool   `json:"enabled"`
}

// SentinelDeployment builds the placeholder row for an unreachable environment
func SentinelDeployment(env string) Deployment {
	return Deployment{Environment: env, Name: "N/A", OK: false, Enabled: false}
}
