// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults and Load(ctx) to layer
//   file and environment sources on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/internal/validation"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" json:"log_level" validate:"oneof=debug info warn error"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" json:"addr" validate:"required"`

	// QueueSize bounds the in-memory job queue used by batch computation.
	QueueSize int `koanf:"queue_size" json:"queue_size" validate:"gte=1"`

	// WorkerCount sets the number of metrics workers.
	WorkerCount int `koanf:"worker_count" json:"worker_count" validate:"gte=1"`

	// DedupeSize bounds the per-request duplicate tracking window.
	DedupeSize int `koanf:"dedupe_size" json:"dedupe_size" validate:"gte=0"`

	// BatchLimit caps the number of players in one batch request.
	BatchLimit int `koanf:"batch_limit" json:"batch_limit" validate:"gte=1"`

	// CycleDays is the cycle length used when a report does not carry one.
	CycleDays int `koanf:"cycle_days" json:"cycle_days" validate:"gte=1"`

	// CORSOrigins lists allowed browser origins. Empty disables CORS.
	CORSOrigins []string `koanf:"cors_origins" json:"cors_origins"`

	// RateLimitRequests per RateLimitWindow per client IP. 0 disables.
	RateLimitRequests int           `koanf:"rate_limit_requests" json:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" json:"rate_limit_window" validate:"gt=0"`

	// TeamPolicies picks the goal resolution policy per team.
	TeamPolicies map[string]string `koanf:"team_policies" json:"team_policies" validate:"dive,keys,required,endkeys,oneof=platform-first report-first"`

	// TeamOverrides seeds admin goal config overrides at startup.
	TeamOverrides map[string]model.TeamGoalConfig `koanf:"team_overrides" json:"team_overrides"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU() * 2,
		DedupeSize:        50_000,
		BatchLimit:        1_000,
		CycleDays:         21,
		RateLimitRequests: 600,
		RateLimitWindow:   time.Minute,
	}
}

// Validate reports the first invalid settings, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
