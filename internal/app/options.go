package service

import (
	"maps"

	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the per-request duplicate detection window.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithBatchLimit sets the maximum number of items in one batch request.
func WithBatchLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.batchLimit = limit
		}
	}
}

// WithCycleDays sets the cycle length used when reports omit it.
func WithCycleDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.cycleDays = days
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTeamPolicies sets per-team goal resolution policies by name.
func WithTeamPolicies(policies map[string]string) Option {
	return func(s *Service) {
		s.teamPolicies = maps.Clone(policies)
	}
}

// WithTeamOverrides seeds the override store on start.
func WithTeamOverrides(overrides map[string]model.TeamGoalConfig) Option {
	return func(s *Service) {
		s.teamOverrides = make(map[string]model.TeamGoalConfig, len(overrides))
		for team, cfg := range overrides {
			s.teamOverrides[team] = cfg.Clone()
		}
	}
}
