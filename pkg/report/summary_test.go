package report

import (
	"strings"
	"testing"
	"time"

	"github.com/domzcondes/opsmon/pkg/models"
)

var testDate = time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)

// TestBuildSummary_CanonicalJobOrder verifies the ordered listing follows
// the canonical list: unlisted jobs are omitted from the listing but still
// counted, and listed-but-missing jobs render as failed without counting.
func TestBuildSummary_CanonicalJobOrder(t *testing.T) {
	order := []string{"A", "B", "C"}
	jobs := []models.ExecutionRecord{
		{Source: models.SourceBatchJob, ItemName: "C", Status: models.OutcomeSucceeded, StartTime: testDate},
		{Source: models.SourceBatchJob, ItemName: "A", Status: models.OutcomeFailed, StartTime: testDate},
	}

	s := BuildSummary(testDate, nil, nil, nil, nil, jobs, order)

	if s.Jobs.Total != 2 {
		t.Errorf("total = %d, want 2 (only fetched records count)", s.Jobs.Total)
	}
	if len(s.JobItems) != 3 {
		t.Fatalf("ordered items = %d, want 3", len(s.JobItems))
	}

	want := []OrderedItem{
		{Name: "A", Outcome: models.OutcomeFailed, Fetched: true},
		{Name: "B", Outcome: models.OutcomeFailed, Fetched: false},
		{Name: "C", Outcome: models.OutcomeSucceeded, Fetched: true},
	}
	for i, w := range want {
		if s.JobItems[i] != w {
			t.Errorf("item %d = %+v, want %+v", i, s.JobItems[i], w)
		}
	}
}

// TestBuildSummary_UnlistedJobOmittedFromListing verifies completeness of
// totals does not imply completeness of the itemized list
func TestBuildSummary_UnlistedJobOmittedFromListing(t *testing.T) {
	jobs := []models.ExecutionRecord{
		{Source: models.SourceBatchJob, ItemName: "stray-job", Status: models.OutcomeSucceeded, StartTime: testDate},
	}

	s := BuildSummary(testDate, nil, nil, nil, nil, jobs, []string{"A"})

	if s.Jobs.Total != 1 {
		t.Errorf("total = %d, want 1", s.Jobs.Total)
	}
	for _, item := range s.JobItems {
		if item.Name == "stray-job" {
			t.Error("unlisted job must not appear in the ordered listing")
		}
	}
}

// TestBuildSummary_FailedCoarsening verifies that every non-succeeded
// outcome lands in the failed count, running and disabled included
func TestBuildSummary_FailedCoarsening(t *testing.T) {
	workflows := []models.ExecutionRecord{
		{ItemName: "wf1", Status: models.OutcomeSucceeded, StartTime: testDate},
		{ItemName: "wf2", Status: models.OutcomeRunning, StartTime: testDate},
		{ItemName: "wf3", Status: models.OutcomeDisabled, StartTime: testDate},
		{ItemName: "wf4", Status: models.OutcomeFailed, StartTime: testDate},
		{ItemName: "wf5", Status: models.OutcomeUnknown, StartTime: testDate},
	}

	s := BuildSummary(testDate, nil, nil, workflows, nil, nil, nil)

	if s.Workflows.Total != 5 || s.Workflows.Failed != 4 {
		t.Errorf("workflows = %d/%d failed, want 4/5", s.Workflows.Failed, s.Workflows.Total)
	}
	if s.Workflows.Succeeded() != 1 {
		t.Errorf("succeeded = %d, want 1", s.Workflows.Succeeded())
	}
}

// TestBuildSummary_WorkflowOrderPreserved verifies adapter order survives
// aggregation for workflows and sessions
func TestBuildSummary_WorkflowOrderPreserved(t *testing.T) {
	workflows := []models.ExecutionRecord{
		{ItemName: "late", Status: models.OutcomeSucceeded, StartTime: testDate.Add(-time.Hour)},
		{ItemName: "early", Status: models.OutcomeSucceeded, StartTime: testDate.Add(-2 * time.Hour)},
	}

	s := BuildSummary(testDate, nil, nil, workflows, nil, nil, nil)

	if s.WorkflowRecords[0].ItemName != "late" || s.WorkflowRecords[1].ItemName != "early" {
		t.Error("workflow records must keep adapter order")
	}
}

// TestBuildSummary_EnvironmentCounts verifies passing requires both OK and
// enabled, and that a sentinel row shows up as one failing deployment
func TestBuildSummary_EnvironmentCounts(t *testing.T) {
	deployments := []models.Deployment{
		{Environment: "SIT", Name: "hub-server", OK: true, Enabled: true},
		{Environment: "SIT", Name: "hub-console", OK: true, Enabled: false},
		{Environment: "SIT", Name: "hub-cleanse", OK: false, Enabled: true},
		models.SentinelDeployment("PRD"),
	}

	s := BuildSummary(testDate, nil, deployments, nil, nil, nil, nil)

	if len(s.Environments) != 2 {
		t.Fatalf("environments = %d, want 2", len(s.Environments))
	}

	sit := s.Environments[0]
	if sit.Environment != "SIT" || sit.Passing != 1 || sit.Failing != 2 {
		t.Errorf("SIT = %d passing / %d failing, want 1/2", sit.Passing, sit.Failing)
	}

	prd := s.Environments[1]
	if prd.Environment != "PRD" || prd.Passing != 0 || prd.Failing != 1 {
		t.Errorf("PRD sentinel = %d passing / %d failing, want 0/1", prd.Passing, prd.Failing)
	}
	if len(prd.Deployments) != 1 {
		t.Errorf("unreachable environment must yield exactly one row, got %d", len(prd.Deployments))
	}
}

// TestBuildSummary_RejectTotals verifies reject counts are summed across jobs
func TestBuildSummary_RejectTotals(t *testing.T) {
	jobs := []models.ExecutionRecord{
		{ItemName: "A", Status: models.OutcomeSucceeded, RejectCount: 3, StartTime: testDate},
		{ItemName: "B", Status: models.OutcomeSucceeded, RejectCount: 0, StartTime: testDate},
		{ItemName: "C", Status: models.OutcomeFailed, RejectCount: 12, StartTime: testDate},
	}

	s := BuildSummary(testDate, nil, nil, nil, nil, jobs, nil)

	if s.TotalRejects != 15 {
		t.Errorf("total rejects = %d, want 15", s.TotalRejects)
	}
}

// TestRender_Idempotent verifies identical input renders byte-identical
// text in both granularities
func TestRender_Idempotent(t *testing.T) {
	services := []models.ServiceStatus{{Environment: "DEV", Reachable: true}, {Environment: "PRD", Reachable: false}}
	deployments := []models.Deployment{{Environment: "SIT", Name: "hub-server", OK: true, Enabled: true}}
	workflows := []models.ExecutionRecord{{ItemName: "wf_load", Status: models.OutcomeSucceeded, StartTime: testDate}}
	jobs := []models.ExecutionRecord{{ItemName: "Party", Status: models.OutcomeSucceeded, StartTime: testDate}}
	order := []string{"Party", "Postal Address"}

	first := BuildSummary(testDate, services, deployments, workflows, nil, jobs, order)
	second := BuildSummary(testDate, services, deployments, workflows, nil, jobs, order)

	for _, detailed := range []bool{false, true} {
		if first.RenderWorkflowChat(detailed) != second.RenderWorkflowChat(detailed) {
			t.Errorf("workflow chat (detailed=%v) not idempotent", detailed)
		}
		if first.RenderJobChat(detailed) != second.RenderJobChat(detailed) {
			t.Errorf("job chat (detailed=%v) not idempotent", detailed)
		}
	}
}

// TestRenderWorkflowChat_Content spot-checks the terse and detailed layouts
func TestRenderWorkflowChat_Content(t *testing.T) {
	services := []models.ServiceStatus{{Environment: "DEV", Reachable: true}}
	workflows := []models.ExecutionRecord{
		{ItemName: "wf_stage_load", Status: models.OutcomeSucceeded, StartTime: testDate},
		{ItemName: "wf_match_merge", Status: models.OutcomeFailed, StartTime: testDate},
	}

	s := BuildSummary(testDate, services, nil, workflows, nil, nil, nil)

	terse := s.RenderWorkflowChat(false)
	if !strings.Contains(terse, "March 10, 2024") {
		t.Error("terse text missing date header")
	}
	if !strings.Contains(terse, "**Workflows Failed:** 1 / 2") {
		t.Errorf("terse text missing counts:\n%s", terse)
	}
	if strings.Contains(terse, "wf_stage_load") {
		t.Error("terse text must not itemize workflows")
	}

	detailed := s.RenderWorkflowChat(true)
	if !strings.Contains(detailed, "wf_stage_load | ✅") || !strings.Contains(detailed, "wf_match_merge | ❌") {
		t.Errorf("detailed text missing itemized rows:\n%s", detailed)
	}
}

// TestRenderJobChat_Content spot-checks environment lines and the canonical
// listing with a missing job
func TestRenderJobChat_Content(t *testing.T) {
	deployments := []models.Deployment{
		{Environment: "SIT", Name: "hub-server", OK: true, Enabled: true},
		{Environment: "SIT", Name: "hub-console", OK: false, Enabled: true},
	}
	jobs := []models.ExecutionRecord{
		{ItemName: "Party", Status: models.OutcomeSucceeded, StartTime: testDate},
	}

	s := BuildSummary(testDate, nil, deployments, nil, nil, jobs, []string{"Party", "Postal Address"})

	terse := s.RenderJobChat(false)
	if !strings.Contains(terse, "SIT 1 passing | 1 failing") {
		t.Errorf("terse text missing environment counts:\n%s", terse)
	}
	if !strings.Contains(terse, "Failed: 0 / 1") {
		t.Errorf("terse text missing job counts:\n%s", terse)
	}

	detailed := s.RenderJobChat(true)
	if !strings.Contains(detailed, "Party | ✅") {
		t.Error("detailed text missing fetched job row")
	}
	if !strings.Contains(detailed, "Postal Address | ❌") {
		t.Error("listed-but-missing job must render with the failure glyph")
	}
}
