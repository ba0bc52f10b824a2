package teams

import (
	"context"
	"fmt"

	"github.com/okian/goalboard/internal/domain/goals"
	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/pkg/logger"
)

// Registry maps team ids to processors. It is built once and read-only
// afterwards.
type Registry struct {
	processors map[TeamID]*Processor
	order      []TeamID
	logger     logger.Logger
	policies   map[TeamID]goals.Policy
	cycleDays  int
}

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithLogger sets the logger handed to every processor.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithPolicy overrides the resolution policy of one team.
func WithPolicy(team string, policy goals.Policy) Option {
	return func(r *Registry) {
		r.policies[ParseTeam(team)] = policy
	}
}

// WithCycleDays sets the cycle length used when reports omit it.
func WithCycleDays(days int) Option {
	return func(r *Registry) {
		if days > 0 {
			r.cycleDays = days
		}
	}
}

// NewRegistry builds a processor for every catalog entry.
func NewRegistry(catalog Catalog, opts ...Option) *Registry {
	r := &Registry{
		processors: make(map[TeamID]*Processor, len(catalog)),
		logger:     logger.Nop(),
		policies:   make(map[TeamID]goals.Policy),
		cycleDays:  DefaultCycleDays,
	}
	for _, opt := range opts {
		opt(r)
	}

	for team := range r.policies {
		if _, ok := catalog[team]; !ok {
			r.logger.Warn(context.Background(), "policy configured for unknown team",
				logger.String("team", team.String()))
		}
	}

	for _, id := range catalog.IDs() {
		def := catalog[id].Clone()
		def.ID = id
		if p, ok := r.policies[id]; ok {
			def.Policy = p
		}
		r.processors[id] = newProcessor(def, r.logger.Named(id.String()), r.cycleDays)
		r.order = append(r.order, id)
	}
	return r
}

// Teams returns the registered team ids in sorted order.
func (r *Registry) Teams() []TeamID {
	out := make([]TeamID, len(r.order))
	copy(out, r.order)
	return out
}

// Processor returns the processor for team.
func (r *Registry) Processor(team string) (*Processor, error) {
	p, ok := r.processors[ParseTeam(team)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTeam, team)
	}
	return p, nil
}

// Select picks the processor for a player. An explicit hint must name a
// registered team. Without a hint the report's team is tried, then the
// player's memberships in order.
func (r *Registry) Select(status *model.PlatformPlayerStatus, report *model.UploadedReportRow, hint string) (*Processor, error) {
	if ParseTeam(hint) != "" {
		return r.Processor(hint)
	}
	if report != nil && report.Team != "" {
		if p, ok := r.processors[ParseTeam(report.Team)]; ok {
			return p, nil
		}
	}
	if status != nil {
		for _, m := range status.TeamMemberships {
			if p, ok := r.processors[ParseTeam(m)]; ok {
				return p, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no registered team for player", ErrUnknownTeam)
}
