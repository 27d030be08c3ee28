package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/smart-park/backend/internal/storage/models"
)

type fakeSummaries struct {
	summary models.OccupancySummary
	err     error
}

func (f fakeSummaries) Summary(context.Context) (models.OccupancySummary, error) {
	return f.summary, f.err
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []models.OccupancySummary
}

func (r *recordingPublisher) BroadcastOccupancy(s models.OccupancySummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, s)
}

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

type countingStore struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingStore) Checkpoint(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func TestStartRegistersJobs(t *testing.T) {
	s := New(fakeSummaries{}, &recordingPublisher{}, &countingStore{}, Config{
		SnapshotInterval:   time.Minute,
		CheckpointInterval: time.Hour,
	}, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Equal(t, []string{JobOccupancySnapshot, JobCheckpoint}, s.Jobs())

	next := s.NextRun(JobOccupancySnapshot)
	require.NotNil(t, next)
	assert.WithinDuration(t, time.Now().Add(time.Minute), *next, 5*time.Second)
	assert.Nil(t, s.NextRun("unknown"))
}

func TestDisabledJobs(t *testing.T) {
	s := New(fakeSummaries{}, nil, &countingStore{}, Config{SnapshotInterval: time.Minute}, nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Empty(t, s.Jobs())
}

func TestSnapshotRuns(t *testing.T) {
	pub := &recordingPublisher{}
	s := New(fakeSummaries{summary: models.OccupancySummary{Total: 5, Free: 5}}, pub, nil, Config{SnapshotInterval: time.Second}, nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.Eventually(t, func() bool { return pub.count() > 0 }, 3*time.Second, 20*time.Millisecond)
	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Equal(t, 5, pub.sent[0].Free)
}

func TestPublishOccupancyError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	pub := &recordingPublisher{}
	s := New(fakeSummaries{err: errors.New("closed")}, pub, nil, Config{}, zap.New(core))

	s.PublishOccupancy(context.Background())

	assert.Zero(t, pub.count())
	assert.Equal(t, 1, logs.FilterMessage("Loading occupancy summary failed").Len())
}

func TestCheckpoint(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := &countingStore{err: errors.New("busy")}
	s := New(nil, nil, store, Config{}, zap.New(core))

	s.Checkpoint(context.Background())

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 1, logs.FilterMessage("WAL checkpoint failed").Len())
}
