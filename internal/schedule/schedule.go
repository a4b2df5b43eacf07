package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// standardParser accepts classic 5-field cron expressions.
var standardParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow,
)

// Parse validates a 5-field UTC cron expression.
func Parse(expr string) (cron.Schedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, fmt.Errorf("cron expression is required")
	}

	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "CRON_TZ=") || strings.Contains(upper, "TZ=") {
		return nil, fmt.Errorf("cron expression must be UTC-only (timezone prefixes are not allowed)")
	}

	schedule, err := standardParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return schedule, nil
}

// Next returns the first firing time after now, evaluated in UTC.
func Next(expr string, now time.Time) (time.Time, error) {
	schedule, err := Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.Next(now.UTC()), nil
}

// Runner re-executes a job on a cron schedule until the context is canceled.
// One tick runs at a time; a tick that overruns into the next slot simply
// delays it.
type Runner struct {
	schedule cron.Schedule
	log      *slog.Logger
	job      func(context.Context)
}

// NewRunner builds a Runner for the given expression.
func NewRunner(expr string, log *slog.Logger, job func(context.Context)) (*Runner, error) {
	schedule, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{schedule: schedule, log: log, job: job}, nil
}

// Run blocks, firing the job at each scheduled time, until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	for {
		now := time.Now().UTC()
		next := r.schedule.Next(now)
		r.log.Info("waiting for next scheduled run", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		r.job(ctx)
	}
}
