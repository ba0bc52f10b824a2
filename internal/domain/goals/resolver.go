// Package goals resolves goal percentages from live platform progress and
// uploaded reports.
package goals

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/internal/domain/progress"
	"github.com/okian/goalboard/pkg/logger"
	"github.com/okian/goalboard/pkg/metrics"
)

// Policy decides which source is consulted first.
type Policy string

// Resolution policies.
const (
	// PlatformFirst prefers the live challenge match and falls back to the
	// uploaded report.
	PlatformFirst Policy = "platform-first"
	// ReportFirst prefers the uploaded report; used by teams whose source of
	// truth is the report collection.
	ReportFirst Policy = "report-first"
)

// ParsePolicy parses a policy name, case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformFirst:
		return PlatformFirst, nil
	case ReportFirst:
		return ReportFirst, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Source names where a resolved percentage came from.
type Source string

// Percentage sources.
const (
	SourceLive    Source = "live"
	SourceReport  Source = "report"
	SourceDefault Source = "default"
)

// Goal is the effective configuration of one slot after overrides.
type Goal struct {
	Slot          model.GoalSlot
	MetricName    string
	ChallengeRefs []string
}

// Resolution is a resolved, sanitized percentage and its source.
type Resolution struct {
	Percentage float64
	Source     Source
}

// Resolver applies a Policy. It holds no mutable state.
type Resolver struct {
	policy Policy
	logger logger.Logger
}

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for sanitize warnings.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver for policy. Unknown policies fall back to
// PlatformFirst.
func NewResolver(policy Policy, opts ...Option) *Resolver {
	if policy != ReportFirst {
		policy = PlatformFirst
	}
	r := &Resolver{
		policy: policy,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the resolver's policy.
func (r *Resolver) Policy() Policy { return r.policy }

// Resolve returns the sanitized percentage for goal.
func (r *Resolver) Resolve(ctx context.Context, goal Goal, status *model.PlatformPlayerStatus, report *model.UploadedReportRow) Resolution {
	raw, source := r.lookup(goal, status, report)
	metrics.RecordGoalSource(string(goal.Slot), string(source))

	if !progress.Valid(raw) {
		metrics.RecordSanitizedInput(string(goal.Slot))
		r.logger.Warn(ctx, "invalid goal percentage replaced by zero",
			logger.String("slot", string(goal.Slot)),
			logger.String("metric", goal.MetricName),
			logger.String("source", string(source)),
			logger.Float64("value", raw),
		)
	}
	return Resolution{Percentage: progress.Sanitize(raw), Source: source}
}

func (r *Resolver) lookup(goal Goal, status *model.PlatformPlayerStatus, report *model.UploadedReportRow) (float64, Source) {
	live := func() (float64, bool) {
		if status == nil {
			return 0, false
		}
		return progress.FindPercentage(status.ChallengeProgress, goal.ChallengeRefs)
	}
	uploaded := func() (float64, bool) {
		return report.Metric(goal.MetricName)
	}

	first, second := live, uploaded
	firstSrc, secondSrc := SourceLive, SourceReport
	if r.policy == ReportFirst {
		first, second = uploaded, live
		firstSrc, secondSrc = SourceReport, SourceLive
	}

	if v, ok := first(); ok {
		return v, firstSrc
	}
	if v, ok := second(); ok {
		return v, secondSrc
	}
	return 0, SourceDefault
}
