package loadgen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/internal/domain/teams"
	"github.com/okian/goalboard/pkg/logger"
)

// Constants for random value generation.
const (
	randomFloatDivisor = 1000000
	maxPercentage      = 150.0
	maxTotalPoints     = 5000
	cycleLength        = 21
)

// Probabilities (out of 100) used to populate optional inputs.
const (
	ownsUnlockChance   = 70
	ownsBoostChance    = 40
	hasLiveChance      = 60
	hasMetricChance    = 80
	invalidValueChance = 3
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// chance reports true with the given probability out of 100.
func chance(percent int) bool {
	n, _ := rand.Int(rand.Reader, big.NewInt(PercentageMultiplier))
	return int(n.Int64()) < percent
}

// randomPercentage returns a value in [0, 150) or, rarely, an invalid one
// the engine must sanitize.
func randomPercentage() float64 {
	if chance(invalidValueChance) {
		return -getRandomFloat() * maxPercentage
	}
	return getRandomFloat() * maxPercentage
}

// generatePlayers creates players spread evenly over the built-in teams.
func generatePlayers(ctx context.Context, config *Config, stats *Stats) ([]Player, error) {
	logger.Get().Info(ctx, "generating players", logger.Int("numPlayers", config.NumPlayers))

	catalog := teams.DefaultCatalog()
	ids := catalog.IDs()

	players := make([]Player, config.NumPlayers)
	type playerResult struct {
		index  int
		player Player
		err    error
	}
	resultChan := make(chan playerResult, config.NumPlayers)

	workerCount := min(config.Workers, config.NumPlayers)
	perWorker := config.NumPlayers / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * perWorker
		end := start + perWorker
		if worker == workerCount-1 {
			end = config.NumPlayers
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- playerResult{index: i, err: ctx.Err()}
					return
				default:
					def := catalog[ids[i%len(ids)]]
					resultChan <- playerResult{index: i, player: generatePlayer(i, def)}
				}
			}
		}(start, end)
	}

	for i := 0; i < config.NumPlayers; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during player generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate player %d: %w", result.index, result.err)
			}
			players[result.index] = result.player
		}
	}

	stats.PlayersGenerated = len(players)
	logger.Get().Info(ctx, "generated players successfully", logger.Int("count", len(players)))
	return players, nil
}

// generatePlayer builds a status and an uploaded report for one player of
// the team described by def.
func generatePlayer(index int, def teams.TeamDefinition) Player {
	cfg := def.Defaults
	id := uuid.NewString()

	inventory := make(map[string]int)
	if cfg.UnlockItemID != "" && chance(ownsUnlockChance) {
		inventory[cfg.UnlockItemID] = 1
	}
	for _, boost := range []string{cfg.Secondary1.BoostItemID, cfg.Secondary2.BoostItemID} {
		if boost != "" && chance(ownsBoostChance) {
			inventory[boost] = 1
		}
	}

	var live []model.ChallengeProgress
	metrics := make(map[string]float64)
	for _, slot := range model.Slots() {
		g := cfg.Slot(slot)
		if len(g.ChallengeRefs) > 0 && chance(hasLiveChance) {
			live = append(live, model.NewChallengeProgress(g.ChallengeRefs[0], randomPercentage()))
		}
		if chance(hasMetricChance) {
			metrics[g.MetricName] = randomPercentage()
		}
	}

	n, _ := rand.Int(rand.Reader, big.NewInt(cycleLength+1))
	day := int(n.Int64())
	total := cycleLength
	points, _ := rand.Int(rand.Reader, big.NewInt(maxTotalPoints))

	team := def.ID.String()
	return Player{
		Team: team,
		Status: model.PlatformPlayerStatus{
			ID:                id,
			Name:              "player-" + strconv.Itoa(index),
			TotalPoints:       float64(points.Int64()),
			InventoryCounts:   inventory,
			ChallengeProgress: live,
			TeamMemberships:   []string{team},
		},
		Report: model.UploadedReportRow{
			PlayerID:        id,
			Team:            team,
			MetricValues:    metrics,
			CurrentCycleDay: &day,
			TotalCycleDays:  &total,
		},
	}
}
