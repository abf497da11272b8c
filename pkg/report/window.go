package report

import (
	"time"

	"github.com/domzcondes/opsmon/pkg/models"
)

// NotificationWindow returns the reporting window for the daily chat cycle:
// the two hours ending at today's midnight. The cycle runs at 06:00 and
// covers the prior night's 22:00-00:00 batch run.
func NotificationWindow(now time.Time) models.ReportWindow {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return models.ReportWindow{
		Start: midnight.Add(-2 * time.Hour),
		End:   midnight,
	}
}

// DashboardWindow returns the wider window used by interactive views:
// yesterday 22:00 through today 10:00. The dashboard and the chat cycle have
// different freshness requirements, so this stays a separate policy from
// NotificationWindow.
func DashboardWindow(now time.Time) models.ReportWindow {
	yesterday := now.AddDate(0, 0, -1)
	return models.ReportWindow{
		Start: time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 22, 0, 0, 0, now.Location()),
		End:   time.Date(now.Year(), now.Month(), now.Day(), 10, 0, 0, 0, now.Location()),
	}
}

// FilterWindow retains records whose start time falls in [window.Start,
// window.End). Records with a zero start time are excluded.
func FilterWindow(records []models.ExecutionRecord, window models.ReportWindow) []models.ExecutionRecord {
	filtered := make([]models.ExecutionRecord, 0, len(records))
	for _, rec := range records {
		if rec.StartTime.IsZero() {
			continue
		}
		if window.Contains(rec.StartTime) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}
