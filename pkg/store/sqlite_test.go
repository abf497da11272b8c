package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/domzcondes/opsmon/pkg/models"
)

func newTestSource(t *testing.T, cfg Config) *SQLiteSource {
	t.Helper()
	cfg.Type = "sqlite"
	if cfg.DSN == "" {
		cfg.DSN = filepath.Join(t.TempDir(), "replica.db")
	}
	src, err := NewSQLiteSource(cfg)
	if err != nil {
		t.Fatalf("failed to create sqlite source: %v", err)
	}
	t.Cleanup(func() { src.Close() })
	return src
}

func TestSQLiteSource_WorkflowRuns(t *testing.T) {
	src := newTestSource(t, Config{})

	window := models.ReportWindow{
		Start: time.Date(2024, 3, 9, 22, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	end := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	mustInsert := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	mustInsert(src.InsertWorkflowRun("HR_PROD", "wf_stage_load", 101, window.Start.Add(30*time.Minute), &end, 1))
	mustInsert(src.InsertWorkflowRun("HR_PROD", "wf_match_merge", 102, window.Start.Add(90*time.Minute), nil, 3))
	// Outside the window
	mustInsert(src.InsertWorkflowRun("HR_PROD", "wf_old", 100, window.Start.Add(-time.Hour), nil, 1))
	// Housekeeping folders are excluded
	mustInsert(src.InsertWorkflowRun("Monitoring", "wf_meta", 103, window.Start.Add(time.Hour), nil, 1))

	records, err := src.FetchWorkflowRuns(context.Background(), window)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// Start time descending
	if records[0].ItemName != "wf_match_merge" || records[1].ItemName != "wf_stage_load" {
		t.Errorf("unexpected order: %s, %s", records[0].ItemName, records[1].ItemName)
	}
	if records[0].Status != models.OutcomeFailed {
		t.Errorf("status code 3 should normalize to failed, got %s", records[0].Status)
	}
	if records[1].Status != models.OutcomeSucceeded {
		t.Errorf("status code 1 should normalize to succeeded, got %s", records[1].Status)
	}
	if records[1].EndTime == nil {
		t.Error("end time should survive the round trip")
	}
	if records[1].RunID != "101" {
		t.Errorf("run id = %q, want 101", records[1].RunID)
	}
}

func TestSQLiteSource_FolderFilter(t *testing.T) {
	src := newTestSource(t, Config{Folder: "HR_PROD"})

	window := models.ReportWindow{
		Start: time.Date(2024, 3, 9, 22, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	if err := src.InsertWorkflowRun("HR_PROD", "wf_in", 1, window.Start.Add(time.Minute), nil, 1); err != nil {
		t.Fatal(err)
	}
	if err := src.InsertWorkflowRun("FIN_PROD", "wf_other", 2, window.Start.Add(time.Minute), nil, 1); err != nil {
		t.Fatal(err)
	}

	records, err := src.FetchWorkflowRuns(context.Background(), window)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(records) != 1 || records[0].ItemName != "wf_in" {
		t.Errorf("folder filter leaked records: %v", records)
	}
}

func TestSQLiteSource_SessionRuns(t *testing.T) {
	src := newTestSource(t, Config{})

	window := models.ReportWindow{
		Start: time.Date(2024, 3, 9, 22, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	if err := src.InsertSessionRun("HR_PROD", "s_party_load", 101, window.Start.Add(15*time.Minute), 15); err != nil {
		t.Fatal(err)
	}

	records, err := src.FetchSessionRuns(context.Background(), window)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Source != models.SourceSession {
		t.Errorf("source = %s, want %s", records[0].Source, models.SourceSession)
	}
	if records[0].Status != models.OutcomeTerminated {
		t.Errorf("status code 15 should normalize to terminated, got %s", records[0].Status)
	}
}

func TestSQLiteSource_BatchJobs(t *testing.T) {
	src := newTestSource(t, Config{JobGroups: []string{"StgBatchGroup"}})

	window := models.ReportWindow{
		Start: time.Date(2024, 3, 9, 22, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	end := window.Start.Add(20 * time.Minute)
	if err := src.InsertBatchJob("StgBatchGroup", "Party", window.Start.Add(5*time.Minute), &end,
		"Stage job completed with 7 rejected records"); err != nil {
		t.Fatal(err)
	}
	if err := src.InsertBatchJob("StgBatchGroup", "Postal Address", window.Start.Add(10*time.Minute), nil,
		"Load failed: connection refused"); err != nil {
		t.Fatal(err)
	}
	// Group outside the configured filter
	if err := src.InsertBatchJob("OtherGroup", "Stray", window.Start.Add(5*time.Minute), nil, "completed"); err != nil {
		t.Fatal(err)
	}

	records, err := src.FetchBatchJobs(context.Background(), window)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	// Start time descending: Postal Address first
	if records[0].ItemName != "Postal Address" || records[0].Status != models.OutcomeFailed {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].ItemName != "Party" || records[1].Status != models.OutcomeSucceeded {
		t.Errorf("unexpected second record: %+v", records[1])
	}
	if records[1].RejectCount != 7 {
		t.Errorf("reject count = %d, want 7", records[1].RejectCount)
	}
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		msg  string
		want int
	}{
		{"Stage job completed with 7 rejected records", 7},
		{"completed with 0 rejected records.", 0},
		{"Batch completed successfully", 0},
		{"", 0},
		{"with many rejected records", 0},
	}
	for _, tc := range cases {
		if got := parseRejects(tc.msg); got != tc.want {
			t.Errorf("parseRejects(%q) = %d, want %d", tc.msg, got, tc.want)
		}
	}
}

func TestNewSource_UnsupportedType(t *testing.T) {
	if _, err := NewSource(Config{Type: "oracle"}); err == nil {
		t.Error("expected error for unsupported source type")
	}
}
