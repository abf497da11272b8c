package monitor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/domzcondes/opsmon/pkg/config"
	"github.com/domzcondes/opsmon/pkg/logging"
	"github.com/domzcondes/opsmon/pkg/metrics"
	"github.com/domzcondes/opsmon/pkg/models"
	"github.com/domzcondes/opsmon/pkg/notify"
	"github.com/domzcondes/opsmon/pkg/report"
	"github.com/domzcondes/opsmon/pkg/store"
)

// ServiceChecker probes integration-service liveness
type ServiceChecker interface {
	Check(ctx context.Context) []models.ServiceStatus
}

// DeploymentChecker probes app-server deployment status
type DeploymentChecker interface {
	Check(ctx context.Context) []models.Deployment
}

// Runner executes one monitoring cycle end to end: probe, fetch, aggregate,
// render, deliver. Every step is best effort; a failed probe, source, or
// delivery is logged and the rest of the cycle continues. Nothing in a
// cycle is fatal to the process.
type Runner struct {
	cfg *config.Config

	etl store.Source
	hub store.Source

	services    ServiceChecker
	deployments DeploymentChecker

	sink notify.Sink

	metrics *metrics.CycleMetrics
	log     *logging.Logger

	now func() time.Time
}

// NewRunner wires a cycle runner. The now function is injectable so tests
// can pin the reporting window.
func NewRunner(
	cfg *config.Config,
	etl, hub store.Source,
	services ServiceChecker,
	deployments DeploymentChecker,
	sink notify.Sink,
	m *metrics.CycleMetrics,
	log *logging.Logger,
) *Runner {
	return &Runner{
		cfg:         cfg,
		etl:         etl,
		hub:         hub,
		services:    services,
		deployments: deployments,
		sink:        sink,
		metrics:     m,
		log:         log,
		now:         time.Now,
	}
}

// SetClock overrides the wall clock, for tests
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// fetch pulls one source's records, converting a failure into "no data"
// plus a log line so the rest of the cycle proceeds.
func (r *Runner) fetch(
	ctx context.Context,
	log *logging.Logger,
	source string,
	fn func(context.Context, models.ReportWindow) ([]models.ExecutionRecord, error),
	window models.ReportWindow,
) ([]models.ExecutionRecord, bool) {
	records, err := fn(ctx, window)
	if err != nil {
		log.Error("source unavailable, reporting without its data", map[string]interface{}{
			"source": source,
			"error":  err.Error(),
		})
		r.metrics.SourceError(source)
		return nil, false
	}
	return records, true
}

// RunCycle executes one full monitoring cycle. It never returns an error:
// per-step failures degrade the report rather than aborting it, and the
// return value only signals whether the cycle was completely clean.
func (r *Runner) RunCycle(ctx context.Context) bool {
	started := r.now()
	cycleID := uuid.New().String()
	log := r.log.WithField("cycle_id", cycleID)

	r.metrics.CycleStarted()
	log.Info("monitoring cycle started")

	clean := true
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("cycle panicked", map[string]interface{}{"panic": rec})
			clean = false
		}
		r.metrics.CycleFinished(time.Since(started), clean)
	}()

	window := report.NotificationWindow(started)

	serviceStatuses := r.services.Check(ctx)
	for _, status := range serviceStatuses {
		r.metrics.ServiceReachable(status.Environment, status.Reachable)
		if !status.Reachable {
			clean = false
		}
	}

	deployments := r.deployments.Check(ctx)

	workflows, ok := r.fetch(ctx, log, string(models.SourceWorkflow), r.etl.FetchWorkflowRuns, window)
	clean = clean && ok
	sessions, ok := r.fetch(ctx, log, string(models.SourceSession), r.etl.FetchSessionRuns, window)
	clean = clean && ok
	jobs, ok := r.fetch(ctx, log, string(models.SourceBatchJob), r.hub.FetchBatchJobs, window)
	clean = clean && ok

	summary := report.BuildSummary(started, serviceStatuses, deployments, workflows, sessions, jobs, r.cfg.JobOrder)

	r.metrics.RecordCounts(string(models.SourceWorkflow), summary.Workflows.Total, summary.Workflows.Failed)
	r.metrics.RecordCounts(string(models.SourceSession), summary.Sessions.Total, summary.Sessions.Failed)
	r.metrics.RecordCounts(string(models.SourceBatchJob), summary.Jobs.Total, summary.Jobs.Failed)

	// Terse summaries go to the chat channel, detailed ones to the post
	// channel. Each delivery is independent; one failure never blocks the
	// next.
	deliveries := []struct {
		target string
		text   string
		name   string
	}{
		{r.cfg.Webhooks.Chat, summary.RenderWorkflowChat(false), "etl chat"},
		{r.cfg.Webhooks.Chat, summary.RenderJobChat(false), "hub chat"},
		{r.cfg.Webhooks.Post, summary.RenderWorkflowChat(true), "etl post"},
		{r.cfg.Webhooks.Post, summary.RenderJobChat(true), "hub post"},
	}
	for _, d := range deliveries {
		if d.target == "" {
			continue
		}
		if !r.sink.Deliver(ctx, d.target, d.text) {
			log.Error("delivery failed, continuing cycle", map[string]interface{}{"delivery": d.name})
			r.metrics.DeliveryFailure()
			clean = false
		}
	}

	log.Info("monitoring cycle finished", map[string]interface{}{
		"duration":         time.Since(started).String(),
		"workflows_failed": summary.Workflows.Failed,
		"sessions_failed":  summary.Sessions.Failed,
		"jobs_failed":      summary.Jobs.Failed,
		"clean":            clean,
	})
	return clean
}

// Snapshot builds the dashboard read model over the wider dashboard window
func (r *Runner) Snapshot(ctx context.Context) *report.Summary {
	now := r.now()
	window := report.DashboardWindow(now)
	log := r.log.WithField("view", "dashboard")

	serviceStatuses := r.services.Check(ctx)
	deployments := r.deployments.Check(ctx)

	workflows, _ := r.fetch(ctx, log, string(models.SourceWorkflow), r.etl.FetchWorkflowRuns, window)
	sessions, _ := r.fetch(ctx, log, string(models.SourceSession), r.etl.FetchSessionRuns, window)
	jobs, _ := r.fetch(ctx, log, string(models.SourceBatchJob), r.hub.FetchBatchJobs, window)

	return report.BuildSummary(now, serviceStatuses, deployments, workflows, sessions, jobs, r.cfg.JobOrder)
}
