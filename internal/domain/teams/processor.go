package teams

import (
	"context"
	"time"

	"github.com/okian/goalboard/internal/domain/goals"
	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/internal/domain/points"
	"github.com/okian/goalboard/internal/domain/progress"
	"github.com/okian/goalboard/pkg/logger"
	"github.com/okian/goalboard/pkg/metrics"
)

// DefaultCycleDays is the cycle length used when a report does not carry
// one.
const DefaultCycleDays = 21

// Processor computes PlayerMetrics for one team variant. It holds only
// immutable data and is safe for concurrent use.
type Processor struct {
	def       TeamDefinition
	resolver  *goals.Resolver
	logger    logger.Logger
	cycleDays int
}

func newProcessor(def TeamDefinition, l logger.Logger, cycleDays int) *Processor {
	if def.Calculator == nil {
		def.Calculator = points.DirectPassthrough{}
	}
	return &Processor{
		def:       def,
		resolver:  goals.NewResolver(def.Policy, goals.WithLogger(l)),
		logger:    l,
		cycleDays: cycleDays,
	}
}

// Team returns the processor's team id.
func (p *Processor) Team() TeamID { return p.def.ID }

// Label returns the human-readable team name.
func (p *Processor) Label() string { return p.def.Label }

// Policy returns the goal resolution policy in use.
func (p *Processor) Policy() goals.Policy { return p.resolver.Policy() }

// Strategy returns the point calculator name.
func (p *Processor) Strategy() string { return p.def.Calculator.Name() }

// EffectiveConfig returns the team defaults with override applied.
func (p *Processor) EffectiveConfig(override *model.TeamGoalConfig) model.TeamGoalConfig {
	return MergeOverrides(p.def.Defaults, override)
}

// ComputeMetrics derives the player's metrics from a snapshot of inputs.
// report and cfg are optional. The only error is a *model.DataError for a
// status without identity.
func (p *Processor) ComputeMetrics(ctx context.Context, status *model.PlatformPlayerStatus, report *model.UploadedReportRow, cfg *model.TeamGoalConfig) (model.PlayerMetrics, error) {
	start := time.Now()
	team := p.def.ID.String()

	if status == nil {
		status = &model.PlatformPlayerStatus{}
	}
	if err := status.Validate(); err != nil {
		metrics.RecordDataError(team)
		return model.PlayerMetrics{}, err
	}

	if report != nil && report.Team != "" && ParseTeam(report.Team) != p.def.ID {
		metrics.RecordTeamMismatch(team)
		p.logger.Warn(ctx, "report team does not match processor",
			logger.String("player_id", status.ID),
			logger.String("report_team", report.Team),
			logger.String("team", team),
		)
	}
	if report == nil {
		p.logger.Debug(ctx, "no uploaded report for player", logger.String("player_id", status.ID))
	}

	eff := p.EffectiveConfig(cfg)

	var resolved [3]float64
	for i, slot := range model.Slots() {
		g := eff.Slot(slot)
		res := p.resolver.Resolve(ctx, goals.Goal{
			Slot:          slot,
			MetricName:    g.MetricName,
			ChallengeRefs: g.ChallengeRefs,
		}, status, report)
		resolved[i] = res.Percentage
	}

	st := p.def.Calculator.Calculate(points.Input{
		TotalPoints:       status.TotalPoints,
		Inventory:         status.InventoryCounts,
		UnlockItemID:      eff.UnlockItemID,
		Boost1ItemID:      eff.Secondary1.BoostItemID,
		Boost2ItemID:      eff.Secondary2.BoostItemID,
		PrimaryPercentage: resolved[0],
	})

	current, remaining := p.cycle(report)
	out := model.PlayerMetrics{
		PlayerID:          status.ID,
		PlayerName:        status.Name,
		Team:              team,
		TotalPoints:       st.FinalPoints,
		PointsLocked:      st.Locked,
		CurrentCycleDay:   current,
		DaysUntilCycleEnd: remaining,
		PrimaryGoal:       buildGoal(eff.Primary, resolved[0], false),
		SecondaryGoal1:    buildGoal(eff.Secondary1, resolved[1], st.Boost1Active),
		SecondaryGoal2:    buildGoal(eff.Secondary2, resolved[2], st.Boost2Active),
	}

	metrics.RecordMetricsComputed(team, p.def.Calculator.Name())
	if st.Locked {
		metrics.RecordPointsLocked(team)
	}
	if st.Boost1Active {
		metrics.RecordBoostActive(team, string(model.SlotSecondary1))
	}
	if st.Boost2Active {
		metrics.RecordBoostActive(team, string(model.SlotSecondary2))
	}
	metrics.RecordComputeLatency(team, float64(time.Since(start).Microseconds())/1000)

	return out, nil
}

func (p *Processor) cycle(report *model.UploadedReportRow) (current, remaining int) {
	total := p.cycleDays
	if report != nil {
		if report.CurrentCycleDay != nil {
			current = max(0, *report.CurrentCycleDay)
		}
		if report.TotalCycleDays != nil && *report.TotalCycleDays > 0 {
			total = *report.TotalCycleDays
		}
	}
	return current, max(0, total-current)
}

func buildGoal(cfg model.GoalConfig, pct float64, boost bool) model.GoalMetrics {
	name := cfg.DisplayName
	if name == "" {
		name = cfg.MetricName
	}
	return model.GoalMetrics{
		Name:        name,
		Percentage:  pct,
		BoostActive: boost,
		ProgressBar: progress.MapBar(pct),
	}
}
