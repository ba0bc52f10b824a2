package loadgen

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/internal/domain/points"
	"github.com/okian/goalboard/internal/domain/progress"
	"github.com/okian/goalboard/internal/domain/teams"
	"github.com/okian/goalboard/internal/domain/types"
)

// verifyResults checks every computed player against the rules the
// dashboard relies on.
func verifyResults(_ context.Context, config *Config, players []Player, results map[string]types.BatchItem, stats *Stats) error {
	log.Println("🔍 Verifying results...")

	if len(results) == 0 {
		return fmt.Errorf("no results to verify")
	}

	catalog := teams.DefaultCatalog()
	var missing int
	for i := range players {
		p := &players[i]
		item, ok := results[p.Status.ID]
		if !ok {
			missing++
			continue
		}
		if item.Metrics == nil {
			continue
		}
		if problems := checkPlayer(p, item.Metrics, catalog[teams.ParseTeam(p.Team)]); len(problems) > 0 {
			stats.Mismatches++
			if config.Verbose || stats.Mismatches <= 10 {
				log.Printf("⚠️  %s (%s): %v", p.Status.ID, p.Team, problems)
			}
		}
	}

	if missing > 0 {
		log.Printf("⚠️  %d players have no result", missing)
	}
	if stats.Mismatches > 0 {
		return fmt.Errorf("%d players failed verification", stats.Mismatches)
	}
	log.Println("✅ Result verification completed")
	return nil
}

// checkPlayer returns a description of every rule m breaks.
func checkPlayer(p *Player, m *model.PlayerMetrics, def teams.TeamDefinition) []string {
	var problems []string
	if m.Team != p.Team {
		problems = append(problems, fmt.Sprintf("team %q, want %q", m.Team, p.Team))
	}

	for _, slot := range model.Slots() {
		g := m.Goal(slot)
		if g.Percentage < 0 || math.IsNaN(g.Percentage) {
			problems = append(problems, fmt.Sprintf("%s percentage %v not sanitized", slot, g.Percentage))
		}
		if g.Percentage != progress.Round2(g.Percentage) {
			problems = append(problems, fmt.Sprintf("%s percentage %v not rounded", slot, g.Percentage))
		}
		if want := progress.MapBar(g.Percentage); g.ProgressBar != want {
			problems = append(problems, fmt.Sprintf("%s bar %+v, want %+v", slot, g.ProgressBar, want))
		}
	}
	if m.PrimaryGoal.BoostActive {
		problems = append(problems, "primary goal shows a boost")
	}

	remaining := cycleLength - *p.Report.CurrentCycleDay
	if m.CurrentCycleDay != *p.Report.CurrentCycleDay || m.DaysUntilCycleEnd != remaining {
		problems = append(problems, fmt.Sprintf("cycle %d/%d, want %d/%d",
			m.CurrentCycleDay, m.DaysUntilCycleEnd, *p.Report.CurrentCycleDay, remaining))
	}

	if def.Calculator != nil && def.Calculator.Name() == points.StrategyDirectPassthrough {
		locked := p.Status.InventoryCounts[def.Defaults.UnlockItemID] == 0
		if m.PointsLocked != locked {
			problems = append(problems, fmt.Sprintf("locked %v, want %v", m.PointsLocked, locked))
		}
	}

	want := p.Status.TotalPoints
	if def.Calculator != nil && def.Calculator.Name() == points.StrategyLocalMultiplier && !m.PointsLocked {
		mult := 1.0
		if m.SecondaryGoal1.BoostActive {
			mult++
		}
		if m.SecondaryGoal2.BoostActive {
			mult++
		}
		want = math.Round(p.Status.TotalPoints * mult)
	}
	if m.TotalPoints != want {
		problems = append(problems, fmt.Sprintf("points %v, want %v", m.TotalPoints, want))
	}
	return problems
}
