package store

import (
	"context"
	"sort"
	"sync"

	"github.com/domzcondes/opsmon/pkg/models"
	"github.com/domzcondes/opsmon/pkg/report"
)

// MemorySource is an in-memory Source for tests and dry runs
type MemorySource struct {
	mu        sync.RWMutex
	workflows []models.ExecutionRecord
	sessions  []models.ExecutionRecord
	jobs      []models.ExecutionRecord

	// FailFetch makes every fetch return this error, simulating an
	// unreachable repository
	FailFetch error
}

// NewMemorySource creates an empty in-memory source
func NewMemorySource() *MemorySource {
	return &MemorySource{}
}

// AddWorkflowRun appends a workflow record
func (s *MemorySource) AddWorkflowRun(rec models.ExecutionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Source = models.SourceWorkflow
	s.workflows = append(s.workflows, rec)
}

// AddSessionRun appends a session record
func (s *MemorySource) AddSessionRun(rec models.ExecutionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Source = models.SourceSession
	s.sessions = append(s.sessions, rec)
}

// AddBatchJob appends a batch-job record, normalizing from its raw message
func (s *MemorySource) AddBatchJob(rec models.ExecutionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Source = models.SourceBatchJob
	rec.Status = report.NormalizeJobMessage(rec.RawMessage)
	rec.RejectCount = parseRejects(rec.RawMessage)
	s.jobs = append(s.jobs, rec)
}

func (s *MemorySource) fetch(records []models.ExecutionRecord, window models.ReportWindow) ([]models.ExecutionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FailFetch != nil {
		return nil, s.FailFetch
	}

	selected := report.FilterWindow(records, window)
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].StartTime.After(selected[j].StartTime)
	})
	return selected, nil
}

// FetchWorkflowRuns returns workflow records in the window, start time descending
func (s *MemorySource) FetchWorkflowRuns(ctx context.Context, window models.ReportWindow) ([]models.ExecutionRecord, error) {
	return s.fetch(s.workflows, window)
}

// FetchSessionRuns returns session records in the window, start time descending
func (s *MemorySource) FetchSessionRuns(ctx context.Context, window models.ReportWindow) ([]models.ExecutionRecord, error) {
	return s.fetch(s.sessions, window)
}

// FetchBatchJobs returns batch-job records in the window, start time descending
func (s *MemorySource) FetchBatchJobs(ctx context.Context, window models.ReportWindow) ([]models.ExecutionRecord, error) {
	return s.fetch(s.jobs, window)
}

// HealthCheck always succeeds
func (s *MemorySource) HealthCheck() error { return nil }

// Close is a no-op
func (s *MemorySource) Close() error { return nil }
