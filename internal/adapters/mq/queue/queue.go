// Package queue carries refresh requests from triggers (HTTP, poller) to the
// refresh workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/riskview/internal/domain/model"
	"github.com/okian/riskview/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 16
)

// Rejection reasons reported in metrics.
const (
	rejectClosed    = "closed"
	rejectFull      = "queue_full"
	rejectCancelled = "context_cancelled"
)

// Request is the payload flowing through the queue.
type Request = model.RefreshRequest

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a request to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, r Request) bool

	// Dequeue returns the channel requests are delivered on.
	// The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Request

	// Len returns the current number of queued requests.
	Len(ctx context.Context) int

	// Close stops accepting requests and closes the dequeue channel.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	requests chan Request
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.requests = make(chan Request, q.capacity)
	metrics.UpdateRefreshQueue(0, q.capacity)
	return q
}

// Enqueue adds a request without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Request) bool { //nolint:gocritic // hugeParam: Request is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordRefreshRejected(rejectClosed)
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordRefreshRejected(rejectCancelled)
		return false
	}

	select {
	case q.requests <- r:
		metrics.RecordRefreshEnqueued()
		metrics.UpdateRefreshQueue(len(q.requests), q.capacity)
		return true
	default:
		metrics.RecordRefreshRejected(rejectFull)
		metrics.RecordErrorByComponent("queue", rejectFull)
		return false
	}
}

// Dequeue returns the channel requests are delivered on.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Request {
	return q.requests
}

// Len returns the current number of queued requests.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.requests)
	metrics.UpdateRefreshQueue(size, q.capacity)
	return size
}

// Capacity returns the maximum number of queued requests.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close gracefully shuts down the queue. Queued requests stay readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.requests)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
