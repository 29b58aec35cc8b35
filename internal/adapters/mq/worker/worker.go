// Package worker runs aggregation cycles off the refresh queue and schedules
// periodic refreshes.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/riskview/internal/adapters/mq/queue"
	"github.com/okian/riskview/internal/domain/model"
	"github.com/okian/riskview/pkg/logger"
	"github.com/okian/riskview/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 1
	poolShutdownTimeout = 30 * time.Second
)

// Cycler runs one aggregation cycle for a session.
type Cycler interface {
	Cycle(ctx context.Context, s model.Session) model.AggregateResult
}

// CycleFunc adapts a function to Cycler.
type CycleFunc func(ctx context.Context, s model.Session) model.AggregateResult

// Cycle calls f.
func (f CycleFunc) Cycle(ctx context.Context, s model.Session) model.AggregateResult {
	return f(ctx, s)
}

// Publisher stores a finished cycle, dropping it when a newer one exists.
type Publisher interface {
	Publish(ctx context.Context, result model.AggregateResult) bool
}

// Queue defines how workers receive refresh requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Request
}

// Worker processes refresh requests.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after its in-flight cycle.
	Shutdown(ctx context.Context) error
}

// RefreshWorker implements Worker.
type RefreshWorker struct {
	queue     Queue
	cycler    Cycler
	publisher Publisher
	name      string

	processed atomic.Int64
	dropped   atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewRefreshWorker creates a new worker with configuration options.
func NewRefreshWorker(q Queue, cycler Cycler, publisher Publisher, opts ...Option) *RefreshWorker {
	w := &RefreshWorker{
		queue:     q,
		cycler:    cycler,
		publisher: publisher,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *RefreshWorker) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			w.process(ctx, req)
		}
	}
}

// Shutdown stops the worker.
func (w *RefreshWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns how many requests this worker completed.
func (w *RefreshWorker) Processed() int64 { return w.processed.Load() }

// process runs one cycle and publishes it under the request's sequence.
func (w *RefreshWorker) process(ctx context.Context, req queue.Request) { //nolint:gocritic // hugeParam: Request is passed by value for channel semantics
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordErrorByComponent("worker", "panic")
			w.logger.Error(ctx, "refresh cycle panicked",
				logger.String("request_id", req.ID),
				logger.Any("panic", r),
			)
		}
	}()

	result := w.cycler.Cycle(ctx, req.Session)
	result.Seq = req.Seq
	w.processed.Add(1)

	// A cycle cut short by shutdown saw every provider as unavailable.
	if ctx.Err() != nil {
		w.dropped.Add(1)
		w.logger.Info(ctx, "refresh abandoned at shutdown", logger.String("request_id", req.ID))
		return
	}
	if !w.publisher.Publish(ctx, result) {
		w.dropped.Add(1)
		return
	}
	w.logger.Debug(ctx, "refresh published",
		logger.String("request_id", req.ID),
		logger.String("reason", req.Reason),
		logger.Uint64("seq", req.Seq),
		logger.Duration("queued", time.Since(req.RequestedAt)),
	)
}

// Pool manages multiple refresh workers sharing one queue.
type Pool struct {
	workers []*RefreshWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, q Queue, cycler Cycler, publisher Publisher) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*RefreshWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewRefreshWorker(q, cycler, publisher,
			WithName("refresh-worker-"+strconv.Itoa(i)),
		)
	}
	metrics.UpdateRefreshWorkers(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns how many requests the pool completed.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Dropped returns how many completed cycles were discarded as stale.
func (p *Pool) Dropped() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.dropped.Load()
	}
	return n
}

// Shutdown closes the queue and waits for every worker to finish.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateRefreshWorkers(0)
	return nil
}
