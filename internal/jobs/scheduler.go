// AngelaMos | 2026
// scheduler.go

// Package jobs runs background work on a cron schedule. Every run gets its
// own identity context, empty at start and reset when the run ends.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/carterperez-dev/templates/teams-backend/internal/identity"
)

var ErrUnknownJob = errors.New("unknown job")

type JobFunc func(ctx context.Context) error

type Job struct {
	Name     string
	Schedule string
	Func     JobFunc
	EntryID  cron.EntryID
}

type Scheduler struct {
	cron        *cron.Cron
	jobs        map[string]*Job
	newIdentity func() *identity.Context
	logger      *slog.Logger
	timeout     time.Duration
	mu          sync.RWMutex
}

// cronLogger routes robfig/cron's own messages through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

// NewScheduler builds a scheduler whose runs are bounded by timeout (zero
// means unbounded). newIdentity must return a fresh context per call.
func NewScheduler(
	newIdentity func() *identity.Context,
	timeout time.Duration,
	logger *slog.Logger,
) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "jobs")
	cl := cronLogger{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		jobs:        make(map[string]*Job),
		newIdentity: newIdentity,
		logger:      logger,
		timeout:     timeout,
	}
}

func (s *Scheduler) Register(name, schedule string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("register job %s: already registered", name)
	}

	job := &Job{Name: name, Schedule: schedule, Func: fn}

	entryID, err := s.cron.AddFunc(schedule, func() {
		//nolint:errcheck // logged inside run
		_ = s.run(context.Background(), job)
	})
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}

	job.EntryID = entryID
	s.jobs[name] = job

	s.logger.Info("job registered", "name", name, "schedule", schedule)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.jobs))
}

// Stop waits for running jobs or for ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
		return
	}
	s.logger.Info("scheduler stopped")
}

// RunNow runs a registered job synchronously, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("run %s: %w", name, ErrUnknownJob)
	}
	return s.run(ctx, job)
}

func (s *Scheduler) run(ctx context.Context, job *Job) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ident := s.newIdentity()
	ident.Reset()
	defer ident.Reset()
	ctx = identity.WithContext(ctx, ident)

	start := time.Now()
	err := job.Func(ctx)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("job failed",
			"name", job.Name,
			"duration", duration,
			"error", err,
		)
		return err
	}

	s.logger.Debug("job completed", "name", job.Name, "duration", duration)
	return nil
}
