// Package scheduler runs the periodic background jobs of the server.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/smart-park/backend/internal/storage/models"
)

// Job names.
const (
	JobOccupancySnapshot = "occupancy-snapshot"
	JobCheckpoint        = "wal-checkpoint"
)

const defaultCheckpointInterval = 10 * time.Minute

// SummarySource provides the current occupancy counts.
type SummarySource interface {
	Summary(ctx context.Context) (models.OccupancySummary, error)
}

// OccupancyPublisher pushes occupancy counts to clients.
type OccupancyPublisher interface {
	BroadcastOccupancy(summary models.OccupancySummary)
}

// Checkpointer folds the write-ahead log back into the database file.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// Config sets the job intervals. A zero interval disables the job.
type Config struct {
	SnapshotInterval   time.Duration
	CheckpointInterval time.Duration
}

// Scheduler manages periodic jobs.
type Scheduler struct {
	cron      *cron.Cron
	logger    *zap.Logger
	summaries SummarySource
	publisher OccupancyPublisher
	store     Checkpointer
	cfg       Config

	jobs   map[string]cron.EntryID
	jobsMu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler. publisher and store may be nil, which disables
// the jobs that need them.
func New(summaries SummarySource, publisher OccupancyPublisher, store Checkpointer, cfg Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CheckpointInterval < 0 {
		cfg.CheckpointInterval = defaultCheckpointInterval
	}

	return &Scheduler{
		cron:      cron.New(),
		logger:    logger,
		summaries: summaries,
		publisher: publisher,
		store:     store,
		cfg:       cfg,
		jobs:      make(map[string]cron.EntryID),
	}
}

// Start registers the enabled jobs and starts the cron runner.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if s.publisher != nil && s.summaries != nil && s.cfg.SnapshotInterval > 0 {
		if err := s.schedule(JobOccupancySnapshot, s.cfg.SnapshotInterval, s.PublishOccupancy); err != nil {
			return err
		}
	}
	if s.store != nil && s.cfg.CheckpointInterval > 0 {
		if err := s.schedule(JobCheckpoint, s.cfg.CheckpointInterval, s.Checkpoint); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Strings("jobs", s.Jobs()))
	return nil
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) schedule(name string, every time.Duration, job func(context.Context)) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	id, err := s.cron.AddFunc(intervalSpec(every), func() { job(s.ctx) })
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", name, err)
	}
	s.jobs[name] = id
	return nil
}

// PublishOccupancy sends the current occupancy counts to clients.
func (s *Scheduler) PublishOccupancy(ctx context.Context) {
	summary, err := s.summaries.Summary(ctx)
	if err != nil {
		s.logger.Warn("Loading occupancy summary failed", zap.Error(err))
		return
	}
	s.publisher.BroadcastOccupancy(summary)
	s.logger.Debug("Occupancy snapshot published", zap.Int("free", summary.Free), zap.Int("taken", summary.Taken()))
}

// Checkpoint truncates the write-ahead log.
func (s *Scheduler) Checkpoint(ctx context.Context) {
	if err := s.store.Checkpoint(ctx); err != nil {
		s.logger.Warn("WAL checkpoint failed", zap.Error(err))
		return
	}
	s.logger.Debug("WAL checkpoint completed")
}

// Jobs returns the names of the scheduled jobs.
func (s *Scheduler) Jobs() []string {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NextRun returns the next run time of a job, or nil if it is not scheduled.
func (s *Scheduler) NextRun(name string) *time.Time {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	if id, ok := s.jobs[name]; ok {
		entry := s.cron.Entry(id)
		if !entry.Next.IsZero() {
			return &entry.Next
		}
	}
	return nil
}

func intervalSpec(d time.Duration) string {
	return "@every " + d.String()
}
