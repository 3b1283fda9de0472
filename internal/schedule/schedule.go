// Package schedule runs the report jobs on cron specs.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"kioskcal/internal/config"
	appLog "kioskcal/internal/log"
	"kioskcal/internal/report"
)

// RunFunc executes one report run.
type RunFunc func(ctx context.Context, req report.Request) (report.Summary, error)

// Job binds a cron spec to a report kind.
type Job struct {
	Spec string
	Kind report.Kind
}

// Jobs lists the enabled jobs of cfg. Rolling month charts run on the
// monthly spec.
func Jobs(cfg config.ScheduleConfig) []Job {
	all := []Job{
		{Spec: cfg.Monthly, Kind: report.KindRolling},
		{Spec: cfg.Calendar, Kind: report.KindCalendar},
		{Spec: cfg.Weekly, Kind: report.KindWeekly},
		{Spec: cfg.Daily, Kind: report.KindDaily},
	}
	out := make([]Job, 0, len(all))
	for _, j := range all {
		if j.Spec != "" {
			out = append(out, j)
		}
	}
	return out
}

// Scheduler wraps a cron instance.
type Scheduler struct {
	cron *cron.Cron
}

// New registers jobs on a cron running in loc. Each job gets a context
// derived from ctx with a timeout.
func New(ctx context.Context, loc *time.Location, jobs []Job, run RunFunc, timeout time.Duration) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	for _, j := range jobs {
		_, err := c.AddFunc(j.Spec, func() {
			jobCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			sum, err := run(jobCtx, report.Request{Kind: j.Kind})
			if err != nil {
				appLog.Error("scheduled report failed", err, "kind", j.Kind)
				return
			}
			appLog.Info("scheduled report done",
				"kind", j.Kind,
				"files", len(sum.Files),
				"published", sum.Published,
				"took", time.Since(start).Round(time.Millisecond),
			)
		})
		if err != nil {
			return nil, fmt.Errorf("schedule: bad spec %q for %s: %w", j.Spec, j.Kind, err)
		}
		appLog.Info("scheduled report", "kind", j.Kind, "spec", j.Spec)
	}
	return &Scheduler{cron: c}, nil
}

// Start runs the cron in its own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops the cron and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Next returns the next activation time of every job, in registration
// order.
func (s *Scheduler) Next() []time.Time {
	entries := s.cron.Entries()
	out := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Schedule.Next(time.Now()))
	}
	return out
}
