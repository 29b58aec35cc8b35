package repository

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/riskview/internal/domain/model"
	"github.com/okian/riskview/pkg/logger"
	"github.com/okian/riskview/pkg/metrics"
)

const defaultHistorySize = 20

// SnapshotStore is an in-memory Store. Readers load the current snapshot
// through an atomic pointer; publishers serialise on a mutex so the sequence
// check and the swap happen together.
type SnapshotStore struct {
	mu          sync.Mutex
	current     atomic.Pointer[model.AggregateResult]
	history     []Cycle
	historySize int
	logger      logger.Logger
}

// NewSnapshotStore constructs an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{historySize: defaultHistorySize}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("repository")
	}
	s.history = make([]Cycle, 0, s.historySize)
	return s
}

// Publish implements Store.Publish. A result whose Seq is not newer than the
// stored one finished late and is dropped.
func (s *SnapshotStore) Publish(ctx context.Context, result model.AggregateResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev := s.current.Load(); prev != nil && result.Seq <= prev.Seq {
		metrics.RecordStaleSnapshotDrop()
		s.logger.Info(ctx, "dropping stale snapshot",
			logger.String("cycle_id", result.CycleID.String()),
			logger.Uint64("seq", result.Seq),
			logger.Uint64("current_seq", prev.Seq),
		)
		return false
	}

	snap := result
	s.current.Store(&snap)

	c := Cycle{
		CycleID:             result.CycleID,
		Seq:                 result.Seq,
		Subjects:            result.Len(),
		UsedDegradedDataset: result.UsedDegradedDataset,
		UsedSalvage:         result.UsedSalvage,
		CompletedAt:         result.CompletedAt,
	}
	if len(s.history) == s.historySize {
		copy(s.history, s.history[1:])
		s.history = s.history[:len(s.history)-1]
	}
	s.history = append(s.history, c)

	metrics.UpdateSnapshot(result.Len(), result.Seq, result.CompletedAt)
	return true
}

// Latest implements Store.Latest.
func (s *SnapshotStore) Latest(_ context.Context) (model.AggregateResult, bool) {
	snap := s.current.Load()
	if snap == nil {
		return model.AggregateResult{}, false
	}
	return *snap, true
}

// Get implements Store.Get.
func (s *SnapshotStore) Get(_ context.Context, id int) (model.SubjectRecord, error) {
	snap := s.current.Load()
	if snap == nil {
		metrics.RecordErrorByComponent("repository", "no_snapshot")
		return model.SubjectRecord{}, ErrNoSnapshot
	}
	rec, ok := snap.Get(id)
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.SubjectRecord{}, ErrNotFound
	}
	return rec, nil
}

// Count implements Store.Count.
func (s *SnapshotStore) Count(_ context.Context) int {
	snap := s.current.Load()
	if snap == nil {
		return 0
	}
	return snap.Len()
}

// History implements Store.History.
func (s *SnapshotStore) History(_ context.Context) []Cycle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Cycle, len(s.history))
	for i, c := range s.history {
		out[len(s.history)-1-i] = c
	}
	return out
}
