package worker

import (
	"github.com/okian/riskview/internal/domain/model"
	"github.com/okian/riskview/pkg/logger"
)

// Option applies a configuration option to the RefreshWorker.
type Option func(*RefreshWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *RefreshWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *RefreshWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// PollerOption applies a configuration option to the Poller.
type PollerOption func(*Poller)

// WithPollSession sets the session periodic refreshes run under.
func WithPollSession(s model.Session) PollerOption {
	return func(p *Poller) { p.session = s }
}

// WithPollLogger sets a custom logger for the poller.
func WithPollLogger(l logger.Logger) PollerOption {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}
