// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and environment on top.
// - Validation uses struct tags checked by go-playground/validator.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"time"
)

// Merge policies understood by the aggregator.
const (
	MergeOverwrite = "overwrite"
	MergeEnrich    = "enrich"
)

// Provider describes one remote endpoint feeding the aggregator.
type Provider struct {
	// Name identifies the provider in logs and metrics.
	Name string `koanf:"name" validate:"required"`

	// URL is the absolute endpoint address.
	URL string `koanf:"url" validate:"required,url"`

	// Method is GET or POST.
	Method string `koanf:"method" validate:"omitempty,oneof=GET POST get post"`

	// DataKey, when set, names the field of an object-shaped data payload
	// that holds the record array.
	DataKey string `koanf:"data_key"`

	// TimeoutMS bounds the single call; 0 falls back to DefaultTimeoutMS.
	TimeoutMS int `koanf:"timeout_ms" validate:"gte=0"`

	// Body is sent as JSON for POST providers.
	Body map[string]any `koanf:"body"`
}

// Timeout returns the provider timeout, or fallback when unset.
func (p Provider) Timeout(fallback time.Duration) time.Duration {
	if p.TimeoutMS > 0 {
		return time.Duration(p.TimeoutMS) * time.Millisecond
	}
	return fallback
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Providers lists collection providers in priority order, most
	// authoritative first.
	Providers []Provider `koanf:"providers" validate:"dive"`

	// Salvage is the optional raw incident-log provider queried only when
	// every provider contributed zero subjects.
	Salvage *Provider `koanf:"salvage" validate:"omitempty"`

	// DetailEndpoints are URL templates containing {id}, tried in order
	// for single-subject lookups.
	DetailEndpoints []string `koanf:"detail_endpoints" validate:"dive,required,contains={id}"`

	// DetailTimeoutMS bounds each detail endpoint attempt.
	DetailTimeoutMS int `koanf:"detail_timeout_ms" validate:"gte=0"`

	// DefaultTimeoutMS applies to providers without their own timeout.
	DefaultTimeoutMS int `koanf:"default_timeout_ms" validate:"gt=0"`

	// MergePolicy is "overwrite" (later provider wins) or "enrich".
	MergePolicy string `koanf:"merge_policy" validate:"oneof=overwrite enrich"`

	// RefreshIntervalMS drives background re-aggregation; 0 disables it.
	RefreshIntervalMS int `koanf:"refresh_interval_ms" validate:"gte=0"`

	// RefreshQueueSize bounds pending refresh requests.
	RefreshQueueSize int `koanf:"refresh_queue_size" validate:"gt=0"`

	// RefreshWorkers sets the number of refresh workers.
	RefreshWorkers int `koanf:"refresh_workers" validate:"gt=0"`

	// Scheduled refreshes have no caller, so they run under this session.
	PollToken        string `koanf:"poll_token"`
	PollRole         string `koanf:"poll_role"`
	PollAcademicYear string `koanf:"poll_academic_year"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		Providers:         nil,
		DetailEndpoints:   nil,
		DetailTimeoutMS:   5_000,
		DefaultTimeoutMS:  8_000,
		MergePolicy:       MergeOverwrite,
		RefreshIntervalMS: 60_000,
		RefreshQueueSize:  16,
		RefreshWorkers:    1,
	}
}

// DefaultTimeout returns DefaultTimeoutMS as a duration.
func (c *Config) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutMS) * time.Millisecond
}

// DetailTimeout returns the per-attempt detail timeout.
func (c *Config) DetailTimeout() time.Duration {
	if c.DetailTimeoutMS > 0 {
		return time.Duration(c.DetailTimeoutMS) * time.Millisecond
	}
	return c.DefaultTimeout()
}

// RefreshInterval returns the polling interval; zero means disabled.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMS) * time.Millisecond
}
