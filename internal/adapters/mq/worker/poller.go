package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/riskview/internal/domain/model"
	"github.com/okian/riskview/pkg/logger"
)

// PollReason is the reason attached to scheduled refreshes.
const PollReason = "poll"

// Trigger requests an asynchronous refresh.
type Trigger interface {
	RequestRefresh(ctx context.Context, s model.Session, reason string) (string, bool)
}

// Poller requests a refresh on a fixed interval. A zero interval disables it.
type Poller struct {
	interval time.Duration
	trigger  Trigger
	session  model.Session
	logger   logger.Logger

	once    sync.Once
	running atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

// NewPoller creates a poller firing every interval.
func NewPoller(interval time.Duration, trigger Trigger, opts ...PollerOption) *Poller {
	p := &Poller{
		interval: interval,
		trigger:  trigger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("poller")
	}
	return p
}

// Run blocks until ctx is cancelled or Stop is called.
func (p *Poller) Run(ctx context.Context) {
	p.running.Store(true)
	defer close(p.done)
	if p.interval <= 0 {
		p.logger.Info(ctx, "polling disabled")
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			if _, ok := p.trigger.RequestRefresh(ctx, p.session, PollReason); !ok {
				p.logger.Warn(ctx, "scheduled refresh rejected, queue busy")
			}
		}
	}
}

// Stop ends Run and waits for it to return if it was started.
func (p *Poller) Stop() {
	p.once.Do(func() { close(p.stop) })
	if p.running.Load() {
		<-p.done
	}
}
