package report

import (
	"testing"
	"time"

	"github.com/domzcondes/opsmon/pkg/models"
)

// TestNotificationWindow pins the 2-hour slice ending at midnight
func TestNotificationWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)
	w := NotificationWindow(now)

	wantStart := time.Date(2024, 3, 9, 22, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	if !w.Start.Equal(wantStart) {
		t.Errorf("window start = %v, want %v", w.Start, wantStart)
	}
	if !w.End.Equal(wantEnd) {
		t.Errorf("window end = %v, want %v", w.End, wantEnd)
	}
}

// TestDashboardWindow pins the wider yesterday-22:00 to today-10:00 slice
func TestDashboardWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)
	w := DashboardWindow(now)

	wantStart := time.Date(2024, 3, 9, 22, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)

	if !w.Start.Equal(wantStart) || !w.End.Equal(wantEnd) {
		t.Errorf("window = [%v, %v), want [%v, %v)", w.Start, w.End, wantStart, wantEnd)
	}
	if !w.Start.Before(w.End) {
		t.Error("window start must precede end")
	}
}

// TestFilterWindow_Boundaries verifies half-open interval semantics on the
// exact boundary instants
func TestFilterWindow_Boundaries(t *testing.T) {
	window := models.ReportWindow{
		Start: time.Date(2024, 3, 9, 22, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	at := func(hour, min int, day int) time.Time {
		return time.Date(2024, 3, day, hour, min, 0, 0, time.UTC)
	}

	records := []models.ExecutionRecord{
		{ItemName: "before", StartTime: at(21, 59, 9)},
		{ItemName: "at-start", StartTime: at(22, 0, 9)},
		{ItemName: "inside", StartTime: at(23, 59, 9)},
		{ItemName: "at-end", StartTime: at(0, 0, 10)},
	}

	filtered := FilterWindow(records, window)

	if len(filtered) != 2 {
		t.Fatalf("expected 2 records in window, got %d", len(filtered))
	}
	if filtered[0].ItemName != "at-start" || filtered[1].ItemName != "inside" {
		t.Errorf("unexpected records retained: %s, %s", filtered[0].ItemName, filtered[1].ItemName)
	}
}

// TestFilterWindow_ZeroStartExcluded verifies records with no start time
// never pass the filter
func TestFilterWindow_ZeroStartExcluded(t *testing.T) {
	window := NotificationWindow(time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC))

	records := []models.ExecutionRecord{
		{ItemName: "no-start"},
		{ItemName: "ok", StartTime: time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)},
	}

	filtered := FilterWindow(records, window)
	if len(filtered) != 1 || filtered[0].ItemName != "ok" {
		t.Errorf("expected only the record with a start time, got %v", filtered)
	}
}
