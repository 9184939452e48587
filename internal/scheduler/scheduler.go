// Package scheduler runs a job on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is the unit of work run on every tick.
type Job func(ctx context.Context) error

// Scheduler runs a single job on a cron schedule. A tick that fires while the
// previous run is still going is skipped, and a panicking job is recovered.
type Scheduler struct {
	cron   *cron.Cron
	entry  cron.EntryID
	job    Job
	logger *slog.Logger
	ctx    context.Context
}

// New creates a scheduler. spec is a standard five-field cron expression or a
// descriptor such as "@hourly" or "@every 3h".
func New(spec string, job Job, logger *slog.Logger) (*Scheduler, error) {
	cl := cronLogger{logger: logger}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		job:    job,
		logger: logger,
		ctx:    context.Background(),
	}

	id, err := s.cron.AddFunc(spec, s.run)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.entry = id

	return s, nil
}

// Every returns the schedule spec for a fixed interval.
func Every(d time.Duration) string {
	return "@every " + d.String()
}

// Start begins running the job in the background. ctx is passed to every run.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	s.logger.Info("scheduler started", "next_run", s.Next())
}

// Stop stops the scheduler. The returned context is done once a running job
// has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Next returns the time of the next scheduled run, or the zero time if the
// scheduler has not been started.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

func (s *Scheduler) run() {
	start := time.Now()
	if err := s.job(s.ctx); err != nil {
		s.logger.Error("scheduled job failed", "error", err, "duration", time.Since(start))
		return
	}
	s.logger.Debug("scheduled job completed", "duration", time.Since(start), "next_run", s.Next())
}

// cronLogger adapts slog to the cron.Logger interface. Routine cron messages
// are logged at debug level.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
