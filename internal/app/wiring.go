package service

import (
	"fmt"

	"github.com/okian/riskview/internal/adapters/provider"
	"github.com/okian/riskview/internal/adapters/resolver"
	"github.com/okian/riskview/internal/config"
	"github.com/okian/riskview/internal/domain/aggregate"
	"github.com/okian/riskview/internal/domain/model"
)

// OptionsFromConfig builds the providers, aggregator and resolver described
// by cfg.
func OptionsFromConfig(cfg *config.Config) ([]Option, error) {
	policy, err := aggregate.ParsePolicy(cfg.MergePolicy)
	if err != nil {
		return nil, fmt.Errorf("merge policy: %w", err)
	}

	providers := make([]aggregate.Provider, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		providers = append(providers, provider.NewHTTPClient(p.Name, p.URL, providerOptions(cfg, p)...))
	}

	aggOpts := []aggregate.Option{aggregate.WithPolicy(policy)}
	if cfg.Salvage != nil {
		aggOpts = append(aggOpts, aggregate.WithSalvage(
			provider.NewIncidentLog(cfg.Salvage.URL, providerOptions(cfg, *cfg.Salvage)...),
		))
	}

	opts := []Option{
		WithProviders(providers...),
		WithAggregator(aggregate.New(aggOpts...)),
		WithWorkerCount(cfg.RefreshWorkers),
		WithQueueSize(cfg.RefreshQueueSize),
		WithRefreshInterval(cfg.RefreshInterval()),
		WithPollSession(model.Session{
			Token:        cfg.PollToken,
			Role:         cfg.PollRole,
			AcademicYear: cfg.PollAcademicYear,
		}),
	}
	if len(cfg.DetailEndpoints) > 0 {
		opts = append(opts, WithResolver(
			resolver.New(resolver.WithTimeout(cfg.DetailTimeout())),
			cfg.DetailEndpoints,
		))
	}
	return opts, nil
}

func providerOptions(cfg *config.Config, p config.Provider) []provider.Option { //nolint:gocritic // hugeParam: config value read once at startup
	return []provider.Option{
		provider.WithMethod(p.Method),
		provider.WithDataKey(p.DataKey),
		provider.WithBody(p.Body),
		provider.WithTimeout(p.Timeout(cfg.DefaultTimeout())),
	}
}
