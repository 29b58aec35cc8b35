// Package aggregate fans a cycle out to every provider concurrently, merges
// what comes back in priority order and guarantees a non-empty, fully
// classified result.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/riskview/internal/domain/classify"
	"github.com/okian/riskview/internal/domain/degraded"
	"github.com/okian/riskview/internal/domain/model"
	"github.com/okian/riskview/pkg/logger"
	"github.com/okian/riskview/pkg/metrics"
)

// Provider is one source consulted by a cycle.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, s model.Session) model.Outcome
}

// Aggregator runs aggregation cycles. It holds no per-cycle state and is
// safe for concurrent use.
type Aggregator struct {
	policy  Policy
	salvage Provider
	logger  logger.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithPolicy sets the merge policy.
func WithPolicy(p Policy) Option {
	return func(a *Aggregator) {
		if p != "" {
			a.policy = p
		}
	}
}

// WithSalvage sets the provider consulted when every provider yields nothing.
func WithSalvage(p Provider) Option {
	return func(a *Aggregator) { a.salvage = p }
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New returns an Aggregator using the overwrite policy unless told otherwise.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{policy: Overwrite}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("aggregate")
	}
	return a
}

// Policy returns the configured merge policy.
func (a *Aggregator) Policy() Policy { return a.policy }

// Aggregate runs one cycle. It returns only after every provider finished and
// never fails: when nothing usable comes back it falls back to the salvage
// provider, then to the degraded dataset.
func (a *Aggregator) Aggregate(ctx context.Context, providers []Provider, s model.Session) model.AggregateResult {
	start := time.Now()
	outcomes := fanOut(ctx, providers, s)

	m := newMerged(len(providers))
	reports := make([]model.ProviderReport, 0, len(outcomes)+1)
	for _, out := range outcomes {
		reports = append(reports, out.Report())
		if !out.OK() {
			continue
		}
		for _, rec := range out.Records {
			m.add(rec, a.policy)
		}
	}

	result := model.AggregateResult{
		CycleID:   uuid.New(),
		StartedAt: start,
	}
	mode := metrics.ModeLive

	if m.len() == 0 && a.salvage != nil {
		out := safeFetch(ctx, a.salvage, s)
		reports = append(reports, out.Report())
		if out.OK() {
			for _, rec := range out.Records {
				m.add(rec, a.policy)
			}
		}
		if m.len() > 0 {
			result.UsedSalvage = true
			mode = metrics.ModeSalvage
			a.logger.Warn(ctx, "providers empty, using salvaged incidents",
				logger.Int("subjects", m.len()))
		}
	}

	if m.len() == 0 {
		for _, rec := range degraded.Dataset() {
			m.add(rec, Overwrite)
		}
		result.UsedDegradedDataset = true
		mode = metrics.ModeDegraded
		a.logger.Warn(ctx, "no provider produced data, serving degraded dataset",
			logger.Int("providers", len(providers)))
	}

	for _, id := range m.order {
		m.index[id] = classify.Classify(m.index[id])
	}

	result.Order = m.order
	result.Index = m.index
	result.Reports = reports
	result.CompletedAt = time.Now()

	elapsed := result.CompletedAt.Sub(start)
	metrics.RecordAggregationCycle(mode)
	metrics.RecordAggregationLatency(float64(elapsed.Milliseconds()))
	a.logger.Info(ctx, "aggregation cycle complete",
		logger.String("cycle_id", result.CycleID.String()),
		logger.String("mode", mode),
		logger.Int("subjects", result.Len()),
		logger.Duration("duration", elapsed),
	)
	return result
}

// fanOut runs every provider concurrently. Each writes only its own slot so
// the merge order depends on provider order, not completion order.
func fanOut(ctx context.Context, providers []Provider, s model.Session) []model.Outcome {
	outcomes := make([]model.Outcome, len(providers))
	var g errgroup.Group
	for i, p := range providers {
		g.Go(func() error {
			outcomes[i] = safeFetch(ctx, p, s)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
	return outcomes
}

// safeFetch shields the cycle from a provider that panics despite its contract.
func safeFetch(ctx context.Context, p Provider, s model.Session) (out model.Outcome) {
	if p == nil {
		return model.Unavailable("", "nil provider")
	}
	var name string
	defer func() {
		if r := recover(); r != nil {
			out = model.Unavailable(name, fmt.Sprintf("panic: %v", r))
		}
	}()
	name = p.Name()
	return p.Fetch(ctx, s)
}
