package service

import (
	"time"

	"github.com/okian/riskview/internal/adapters/repository"
	"github.com/okian/riskview/internal/domain/aggregate"
	"github.com/okian/riskview/internal/domain/model"
	"github.com/okian/riskview/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithProviders sets the collection providers in priority order.
func WithProviders(providers ...aggregate.Provider) Option {
	return func(s *Service) {
		s.providers = append(s.providers, providers...)
	}
}

// WithAggregator sets the aggregator running each cycle.
func WithAggregator(a *aggregate.Aggregator) Option {
	return func(s *Service) {
		if a != nil {
			s.aggregator = a
		}
	}
}

// WithResolver sets the detail resolver and the endpoints it tries.
func WithResolver(r Resolver, endpoints []string) Option {
	return func(s *Service) {
		s.resolver = r
		s.detailEndpoints = endpoints
	}
}

// WithStore sets the snapshot store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkerCount sets the number of refresh workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending refresh requests.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRefreshInterval sets the polling interval; zero disables polling.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.refreshInterval = d
		}
	}
}

// WithPollSession sets the session scheduled refreshes run under.
func WithPollSession(session model.Session) Option {
	return func(s *Service) { s.pollSession = session }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
