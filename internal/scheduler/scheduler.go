// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of periodic work reporting named counters.
type Job interface {
	Run(ctx context.Context) map[string]int
}

// Scheduler wraps robfig/cron and logs the result of every job run.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

// New creates an empty Scheduler. Schedules are evaluated in UTC.
func New(log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:  log,
	}
}

// Add registers job under name with a standard cron spec or descriptor ("@daily").
// A run that starts is completed even if ctx is cancelled meanwhile.
func (s *Scheduler) Add(ctx context.Context, name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.log.Info("job started", "job", name)
		counters := job.Run(context.WithoutCancel(ctx))
		args := []any{"job", name}
		for k, v := range counters {
			args = append(args, k, v)
		}
		s.log.Info("job finished", args...)
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.log.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// Run starts the scheduler and blocks until ctx is cancelled,
// then waits for running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
}
