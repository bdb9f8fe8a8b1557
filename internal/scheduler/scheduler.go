package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Refresher is the part of the dashboard controller the job drives.
type Refresher interface {
	Refresh(ctx context.Context) error
	Flush(ctx context.Context) error
}

// Scheduler periodically refreshes the active view and retries pending writes.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Refresher
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. A zero interval disables it.
func New(target Refresher, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
		timeout:   30 * time.Second,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: auto refresh disabled")
		return nil
	}

	// The first run is skipped; the session was just refreshed on startup.
	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("scheduler: auto refresh every %s", s.interval)
	return nil
}

// RunOnce refreshes the active view and flushes pending writes. Errors are
// logged; the controller already reported them as notifications.
func (s *Scheduler) RunOnce(ctx context.Context) {
	log.Println("scheduler: running refresh job")
	if err := s.target.Refresh(ctx); err != nil {
		log.Printf("scheduler: refresh failed: %v", err)
	}
	if err := s.target.Flush(ctx); err != nil {
		log.Printf("scheduler: flush failed: %v", err)
	}
	log.Println("scheduler: completed refresh job")
}

// Running reports whether the periodic job is active.
func (s *Scheduler) Running() bool {
	return s.scheduler.IsRunning()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil && s.scheduler.IsRunning() {
		s.scheduler.Stop()
	}
}
