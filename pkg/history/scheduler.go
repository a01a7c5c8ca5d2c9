package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner is the part of Store the scheduler needs.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler prunes history entries older than the retention period on a
// cron schedule.
type Scheduler struct {
	pruner        Pruner
	retentionDays int
	schedule      string
	cron          *cron.Cron
	mu            sync.Mutex
	logger        *slog.Logger
	running       bool
	now           func() time.Time
}

// NewScheduler creates a retention scheduler.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//   - "0 0 * * 0"    - Weekly on Sunday at midnight
func NewScheduler(pruner Pruner, retentionDays int, schedule string) *Scheduler {
	return &Scheduler{
		pruner:        pruner,
		retentionDays: retentionDays,
		schedule:      schedule,
		cron:          cron.New(),
		logger:        slog.Default().With("component", "history.scheduler"),
		now:           time.Now,
	}
}

// Start schedules pruning. An empty schedule or zero retention leaves the
// scheduler idle. The scheduler stops when ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" || s.retentionDays <= 0 {
		s.logger.Info("history retention not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("history retention scheduler started",
		"schedule", s.schedule,
		"retention_days", s.retentionDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunOnce prunes entries older than the retention period and returns how
// many were deleted.
func (s *Scheduler) RunOnce(ctx context.Context) int64 {
	if s.retentionDays <= 0 {
		return 0
	}
	cutoff := s.now().AddDate(0, 0, -s.retentionDays)

	deleted, err := s.pruner.Prune(ctx, cutoff)
	if err != nil {
		s.logger.Error("history pruning failed", "error", err)
		return 0
	}
	if deleted > 0 {
		s.logger.Info("history pruning completed", "deleted_count", deleted)
	} else {
		s.logger.Debug("history pruning completed, no entries deleted")
	}
	return deleted
}

// Stop stops the scheduler and waits for a running prune to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("history retention scheduler stopped")
	}
}

// IsRunning reports whether pruning is scheduled.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled prune, or nil when idle.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
