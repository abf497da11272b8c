package report

import (
	"time"

	"github.com/domzcondes/opsmon/pkg/models"
)

// SourceCount holds the top-line numbers for one record source. Failed
// counts every record whose outcome is not Succeeded; running and disabled
// runs land in the failed column on purpose, so the overnight notification
// errs toward flagging rather than hiding.
type SourceCount struct {
	Total  int `json:"total"`
	Failed int `json:"failed"`
}

// Succeeded returns the complement of Failed
func (c SourceCount) Succeeded() int {
	return c.Total - c.Failed
}

// EnvironmentSummary aggregates deployment health for one app-server
// environment. Passing counts deployments that are both OK and enabled.
type EnvironmentSummary struct {
	Environment string              `json:"environment"`
	Passing     int                 `json:"passing"`
	Failing     int                 `json:"failing"`
	Deployments []models.Deployment `json:"deployments"`
}

// OrderedItem is one slot of the canonical batch-job listing. Fetched is
// false when the job did not run in the window; it still renders (with the
// failure glyph) but does not count toward totals.
type OrderedItem struct {
	Name    string         `json:"name"`
	Outcome models.Outcome `json:"outcome"`
	Fetched bool           `json:"fetched"`
}

// Summary is the read-only aggregate behind both the chat notifications and
// the dashboard. Never mutated after BuildSummary returns.
type Summary struct {
	Date time.Time `json:"date"`

	Services     []models.ServiceStatus `json:"services"`
	Environments []EnvironmentSummary   `json:"environments"`

	Workflows       SourceCount              `json:"workflows"`
	Sessions        SourceCount              `json:"sessions"`
	WorkflowRecords []models.ExecutionRecord `json:"workflow_records"`
	SessionRecords  []models.ExecutionRecord `json:"session_records"`

	Jobs         SourceCount              `json:"jobs"`
	JobItems     []OrderedItem            `json:"job_items"`
	JobRecords   []models.ExecutionRecord `json:"job_records"`
	TotalRejects int                      `json:"total_rejects"`
}

// countFailed counts records whose outcome is anything but Succeeded
func countFailed(records []models.ExecutionRecord) int {
	failed := 0
	for _, rec := range records {
		if rec.Status != models.OutcomeSucceeded {
			failed++
		}
	}
	return failed
}

// orderJobs lays fetched batch jobs onto the canonical order list. Jobs
// absent from the list are omitted here but still counted in totals by the
// caller; listed jobs that did not run get the default failure outcome.
func orderJobs(records []models.ExecutionRecord, order []string) []OrderedItem {
	byName := make(map[string]models.Outcome, len(records))
	for _, rec := range records {
		byName[rec.ItemName] = rec.Status
	}

	items := make([]OrderedItem, 0, len(order))
	for _, name := range order {
		outcome, ok := byName[name]
		if !ok {
			outcome = models.OutcomeFailed
		}
		items = append(items, OrderedItem{Name: name, Outcome: outcome, Fetched: ok})
	}
	return items
}

// summarizeEnvironments folds deployment rows into per-environment counts,
// preserving the order environments first appear in.
func summarizeEnvironments(deployments []models.Deployment) []EnvironmentSummary {
	index := make(map[string]int)
	var envs []EnvironmentSummary

	for _, dep := range deployments {
		i, ok := index[dep.Environment]
		if !ok {
			i = len(envs)
			index[dep.Environment] = i
			envs = append(envs, EnvironmentSummary{Environment: dep.Environment})
		}
		envs[i].Deployments = append(envs[i].Deployments, dep)
		if dep.OK && dep.Enabled {
			envs[i].Passing++
		} else {
			envs[i].Failing++
		}
	}
	return envs
}

// BuildSummary aggregates one cycle's probe results and execution records.
// Workflows and sessions keep adapter order (start time descending); batch
// jobs are re-ordered by the canonical list. The same Summary feeds the
// terse chat text, the detailed post, and the dashboard, and building it
// twice from identical input yields identical output.
func BuildSummary(
	date time.Time,
	services []models.ServiceStatus,
	deployments []models.Deployment,
	workflows, sessions, jobs []models.ExecutionRecord,
	jobOrder []string,
) *Summary {
	totalRejects := 0
	for _, rec := range jobs {
		totalRejects += rec.RejectCount
	}

	return &Summary{
		Date:         date,
		Services:     services,
		Environments: summarizeEnvironments(deployments),

		Workflows:       SourceCount{Total: len(workflows), Failed: countFailed(workflows)},
		Sessions:        SourceCount{Total: len(sessions), Failed: countFailed(sessions)},
		WorkflowRecords: workflows,
		SessionRecords:  sessions,

		Jobs:         SourceCount{Total: len(jobs), Failed: countFailed(jobs)},
		JobItems:     orderJobs(jobs, jobOrder),
		JobRecords:   jobs,
		TotalRejects: totalRejects,
	}
}
