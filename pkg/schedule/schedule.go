package schedule

import (
	"context"
	"time"

	"github.com/domzcondes/opsmon/pkg/logging"
)

// Daily fires a function once per day at a fixed local wall-clock time.
// The next timer is armed only after the function returns, so a slow run
// never stacks a second one behind it.
type Daily struct {
	hour   int
	minute int
	log    *logging.Logger

	now func() time.Time
}

// NewDaily creates a scheduler for the given local wall-clock time
func NewDaily(hour, minute int, log *logging.Logger) *Daily {
	return &Daily{hour: hour, minute: minute, log: log, now: time.Now}
}

// SetClock overrides the wall clock, for tests
func (d *Daily) SetClock(now func() time.Time) {
	d.now = now
}

// NextRun returns the first scheduled instant strictly after now
func (d *Daily) NextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), d.hour, d.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run blocks, invoking fn at each scheduled time until ctx is cancelled
func (d *Daily) Run(ctx context.Context, fn func(context.Context)) {
	for {
		next := d.NextRun(d.now())
		wait := next.Sub(d.now())
		d.log.Info("next run scheduled", map[string]interface{}{
			"at": next.Format(time.RFC3339),
			"in": wait.Round(time.Second).String(),
		})

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			d.log.Info("scheduler stopped")
			return
		case <-timer.C:
			fn(ctx)
		}
	}
}
