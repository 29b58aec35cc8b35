package repository

import "github.com/okian/riskview/pkg/logger"

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithHistorySize sets how many published cycles History keeps.
func WithHistorySize(n int) Option {
	return func(s *SnapshotStore) {
		if n > 0 {
			s.historySize = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *SnapshotStore) {
		if l != nil {
			s.logger = l
		}
	}
}
