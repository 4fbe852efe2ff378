// Package scheduler provides cron-based pruning of old price history.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shoptrack/backend/internal/repository"
)

// Config holds the retention scheduler configuration
type Config struct {
	// Schedule is a cron expression for when to prune (e.g., "0 3 * * *" for 3 AM daily)
	Schedule string
	// RetentionDays is how many days of price points to keep
	RetentionDays int
	// Timeout is the maximum duration for a prune run
	Timeout time.Duration
	// Enabled determines if the scheduler should run
	Enabled bool
}

// DefaultConfig returns the default retention configuration
func DefaultConfig() Config {
	return Config{
		Schedule:      "0 3 * * *", // Daily at 3 AM
		RetentionDays: 90,
		Timeout:       5 * time.Minute,
		Enabled:       true,
	}
}

// Scheduler manages the scheduled price history retention job
type Scheduler struct {
	cron    *cron.Cron
	history repository.PriceHistoryRepository
	config  Config
	logger  *slog.Logger
	entryID cron.EntryID
}

// New creates a new Scheduler instance
func New(cfg Config, history repository.PriceHistoryRepository, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:    cron.New(),
		history: history,
		config:  cfg,
		logger:  logger,
	}
}

// Start begins the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Retention scheduler is disabled, skipping start")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runPruneJob()
	})
	if err != nil {
		return err
	}

	s.entryID = entryID
	s.cron.Start()

	s.logger.Info("Retention scheduler started",
		slog.String("schedule", s.config.Schedule),
		slog.Int("retention_days", s.config.RetentionDays),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping retention scheduler...")
	return s.cron.Stop()
}

// RunNow triggers an immediate prune (useful for manual triggers)
func (s *Scheduler) RunNow() {
	go s.runPruneJob()
}

// runPruneJob executes one retention pass
func (s *Scheduler) runPruneJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	startTime := time.Now()

	removed, err := s.history.DeleteOlderThan(ctx, s.config.RetentionDays)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Retention job failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
		)
		return
	}

	s.logger.Info("Retention job completed",
		slog.Int64("points_removed", removed),
		slog.Duration("duration", duration),
	)
}

// GetNextRunTime returns the next scheduled run time
func (s *Scheduler) GetNextRunTime() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// IsRunning returns true if the scheduler is running
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
