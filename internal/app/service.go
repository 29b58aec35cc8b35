// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	refreshqueue "github.com/okian/riskview/internal/adapters/mq/queue"
	workerpool "github.com/okian/riskview/internal/adapters/mq/worker"
	"github.com/okian/riskview/internal/adapters/repository"
	"github.com/okian/riskview/internal/domain/aggregate"
	"github.com/okian/riskview/internal/domain/classify"
	"github.com/okian/riskview/internal/domain/filter"
	"github.com/okian/riskview/internal/domain/model"
	"github.com/okian/riskview/pkg/logger"
	"github.com/okian/riskview/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultWorkerCount = 1
	defaultQueueSize   = 16
	stopTimeout        = 10 * time.Second
)

// Resolver looks a single subject up across detail endpoints.
type Resolver interface {
	Resolve(ctx context.Context, s model.Session, subjectID int, endpoints []string) (model.SubjectRecord, bool)
}

// Service owns the snapshot and runs aggregation cycles on demand, on a
// schedule and off the refresh queue.
type Service struct {
	mu sync.RWMutex

	// Core components
	aggregator      *aggregate.Aggregator
	providers       []aggregate.Provider
	resolver        Resolver
	detailEndpoints []string
	store           repository.Store
	queue           *refreshqueue.InMemoryQueue
	pool            *workerpool.Pool
	poller          *workerpool.Poller

	// Configuration
	workerCount     int
	queueSize       int
	refreshInterval time.Duration
	pollSession     model.Session

	// State
	seq     atomic.Uint64
	cycles  atomic.Int64
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: defaultWorkerCount,
		queueSize:   defaultQueueSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.aggregator == nil {
		s.aggregator = aggregate.New()
	}
	if s.store == nil {
		s.store = repository.NewSnapshotStore()
	}
	return s
}

// Start initializes and starts the refresh workers and the poller.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = refreshqueue.NewInMemoryQueue(refreshqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, workerpool.CycleFunc(s.Cycle), s.store)
	s.pool.Start(ctx)

	s.poller = workerpool.NewPoller(s.refreshInterval, s, workerpool.WithPollSession(s.pollSession))
	go s.poller.Run(ctx)

	s.started = true
	s.logger.Info(ctx, "riskview service started",
		logger.Int("providers", len(s.providers)),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("refreshInterval", s.refreshInterval),
		logger.String("mergePolicy", string(s.aggregator.Policy())),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	// The poller calls back into RequestRefresh, so it is stopped without
	// holding the lock.
	s.started = false
	poller, pool := s.poller, s.pool
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping riskview service...")
	poller.Stop()
	if err := pool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
	}
	s.logger.Info(ctx, "riskview service stopped")
}

// Cycle runs one aggregation cycle without publishing it.
func (s *Service) Cycle(ctx context.Context, session model.Session) model.AggregateResult {
	s.cycles.Add(1)
	return s.aggregator.Aggregate(ctx, s.providers, session)
}

// Refresh runs a cycle synchronously and publishes it. The fresh result is
// returned even when a newer cycle got published first. A cycle whose caller
// went away is returned but never published: its providers failed because of
// the cancellation, not upstream.
func (s *Service) Refresh(ctx context.Context, session model.Session) model.AggregateResult {
	seq := s.seq.Add(1)
	result := s.Cycle(ctx, session)
	result.Seq = seq
	if err := ctx.Err(); err != nil {
		s.logger.Warn(ctx, "cycle abandoned; snapshot kept",
			logger.Uint64("seq", seq),
			logger.Error(err),
		)
		return result
	}
	s.store.Publish(ctx, result)
	return result
}

// RequestRefresh queues an asynchronous refresh. It reports false when the
// service is not running or the queue is full.
func (s *Service) RequestRefresh(ctx context.Context, session model.Session, reason string) (string, bool) {
	s.mu.RLock()
	q := s.queue
	started := s.started
	s.mu.RUnlock()
	if !started {
		return "", false
	}

	req := model.RefreshRequest{
		ID:          uuid.NewString(),
		Seq:         s.seq.Add(1),
		Reason:      reason,
		Session:     session,
		RequestedAt: time.Now(),
	}
	if !q.Enqueue(ctx, req) {
		s.logger.Warn(ctx, "refresh rejected", logger.String("reason", reason))
		return "", false
	}
	return req.ID, true
}

// Subjects filters the latest snapshot. With nothing published yet it runs a
// cycle first so the first caller never sees an empty view.
func (s *Service) Subjects(ctx context.Context, session model.Session, search, category string) (model.Listing, error) {
	cat, err := filter.ParseCategory(category)
	if err != nil {
		return model.Listing{}, err
	}
	snap, ok := s.store.Latest(ctx)
	if !ok {
		snap = s.Refresh(ctx, session)
	}
	return model.NewListing(snap, filter.Filter(snap.Records(), search, cat)), nil
}

// Subject looks one subject up through the detail endpoints, falling back to
// the published snapshot.
func (s *Service) Subject(ctx context.Context, session model.Session, id int) (model.SubjectRecord, error) {
	if id <= 0 {
		return model.SubjectRecord{}, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	if s.resolver != nil && len(s.detailEndpoints) > 0 {
		if rec, ok := s.resolver.Resolve(ctx, session, id, s.detailEndpoints); ok {
			return classify.Classify(rec), nil
		}
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return model.SubjectRecord{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return rec, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":         s.started,
		"providers":       len(s.providers),
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"refreshInterval": s.refreshInterval.String(),
		"mergePolicy":     string(s.aggregator.Policy()),
		"cycles":          s.cycles.Load(),
		"seq":             s.seq.Load(),
		"subjects":        s.store.Count(ctx),
		"history":         s.store.History(ctx),
	}
	if snap, ok := s.store.Latest(ctx); ok {
		stats["cycleId"] = snap.CycleID.String()
		stats["usedDegradedDataset"] = snap.UsedDegradedDataset
		stats["usedSalvage"] = snap.UsedSalvage
		stats["completedAt"] = snap.CompletedAt
		stats["reports"] = snap.Reports
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["processed"] = s.pool.Processed()
		stats["dropped"] = s.pool.Dropped()
		metrics.UpdateRefreshWorkers(s.pool.Size())
	}
	return stats
}
