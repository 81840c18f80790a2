// Package jobs schedules periodic maintenance with cron.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron"

	"workspace-backend/internal/shared/metrics"
	"workspace-backend/internal/shared/telemetry"
)

// Job is a named unit of maintenance work.
type Job struct {
	Name     string
	Schedule string
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

const defaultJobTimeout = 10 * time.Minute

// Purger removes entries older than a retention window.
type Purger interface {
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

// Expirer removes read notifications older than a retention window.
type Expirer interface {
	ExpireRead(ctx context.Context, retention time.Duration) (int64, error)
}

// Reconciler repairs denormalized counters and reports how many it fixed.
type Reconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

// AnalyticsPurge deletes analytics logs past retention once a day.
func AnalyticsPurge(p Purger, retention time.Duration) Job {
	return Job{
		Name:     "analytics.purge",
		Schedule: "@daily",
		Run: func(ctx context.Context) error {
			n, err := p.Purge(ctx, retention)
			if err != nil {
				return err
			}
			telemetry.Info("jobs.analytics.purged", map[string]any{"deleted": n, "retention": retention.String()})
			return nil
		},
	}
}

// NotificationExpiry deletes read notifications past retention every hour.
func NotificationExpiry(e Expirer, retention time.Duration) Job {
	return Job{
		Name:     "notifications.expire",
		Schedule: "@hourly",
		Run: func(ctx context.Context) error {
			n, err := e.ExpireRead(ctx, retention)
			if err != nil {
				return err
			}
			telemetry.Info("jobs.notifications.expired", map[string]any{"deleted": n, "retention": retention.String()})
			return nil
		},
	}
}

// CounterReconcile recounts like and bookmark counters every six hours.
func CounterReconcile(r Reconciler) Job {
	return Job{
		Name:     "interactions.reconcile",
		Schedule: "@every 6h",
		Run: func(ctx context.Context) error {
			fixed, err := r.Reconcile(ctx)
			if err != nil {
				return err
			}
			if fixed > 0 {
				telemetry.Warn("jobs.interactions.drift", map[string]any{"cards": fixed})
			}
			return nil
		},
	}
}

// Scheduler runs jobs on their cron schedules. Runs of the same job never overlap.
type Scheduler struct {
	cron    *cron.Cron
	jobs    []Job
	running sync.Map

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler validates every schedule up front.
func NewScheduler(jobs ...Job) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), jobs: jobs}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	var errs []error
	for _, job := range jobs {
		if job.Run == nil {
			errs = append(errs, fmt.Errorf("job %s: no run function", job.Name))
			continue
		}
		if err := s.cron.AddFunc(job.Schedule, func() { s.trigger(job) }); err != nil {
			errs = append(errs, fmt.Errorf("job %s: %w", job.Name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}

// Jobs returns the registered jobs.
func (s *Scheduler) Jobs() []Job {
	return append([]Job(nil), s.jobs...)
}

// Start begins firing schedules in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	telemetry.Info("jobs.started", map[string]any{"count": len(s.jobs)})
}

// Stop halts scheduling, cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
	telemetry.Info("jobs.stopped", nil)
}

// RunNow executes a job immediately with the same logging as a scheduled run.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name == name {
			return Execute(ctx, job)
		}
	}
	return fmt.Errorf("unknown job %q", name)
}

// trigger registers with wg under mu so Stop never waits on a group that is
// still growing.
func (s *Scheduler) trigger(job Job) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if _, busy := s.running.LoadOrStore(job.Name, struct{}{}); busy {
		s.mu.Unlock()
		telemetry.Warn("jobs.skipped_overlap", map[string]any{"job": job.Name})
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer func() {
		s.running.Delete(job.Name)
		s.wg.Done()
	}()
	_ = Execute(s.ctx, job)
}

// Execute runs a job under its timeout, recovering panics and logging the outcome.
func Execute(ctx context.Context, job Job) (err error) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
		fields := map[string]any{"job": job.Name, "durationMs": time.Since(start).Milliseconds()}
		if err != nil {
			fields["error"] = err.Error()
			metrics.IncJobFailed()
			telemetry.Error("jobs.failed", fields)
			return
		}
		metrics.IncJobCompleted()
		telemetry.Info("jobs.completed", fields)
	}()
	return job.Run(ctx)
}
