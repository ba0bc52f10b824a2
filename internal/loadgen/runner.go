package loadgen

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/goalboard/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete load run.
func Run(ctx context.Context, config *Config) error {
	if config.NumPlayers <= 0 || config.BatchSize <= 0 || config.Workers <= 0 {
		return fmt.Errorf("players, batch and workers must be positive")
	}

	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting goalboard load run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("players", config.NumPlayers),
		logger.Int("batchSize", config.BatchSize),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate players
	players, err := generatePlayers(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("player generation failed: %w", err)
	}

	// Step 3: Upload reports
	if err := uploadReports(ctx, config, players, stats); err != nil {
		return fmt.Errorf("report upload failed: %w", err)
	}

	// Step 4: Compute metrics in batches
	results, err := submitBatches(ctx, config, players, stats)
	if err != nil {
		return fmt.Errorf("batch submission failed: %w", err)
	}

	// Step 5: Save players to file
	if err := savePlayersToFile(ctx, config, players); err != nil {
		logger.Get().Warn(ctx, "failed to save players to file", logger.Error(err))
	}

	// Step 6: Verify results
	verifyErr := verifyResults(ctx, config, players, results, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if verifyErr != nil {
		return fmt.Errorf("result verification failed: %w", verifyErr)
	}
	logger.Get().Info(ctx, "load run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// savePlayersToFile writes the generated players to a JSON file.
func savePlayersToFile(ctx context.Context, config *Config, players []Player) error {
	if len(players) == 0 {
		return fmt.Errorf("no players to save")
	}

	filename := config.OutputFile
	if filename == "" {
		filename = "generated_players_" + time.Now().Format("20060102_150405") + ".json"
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(players); err != nil {
		return fmt.Errorf("failed to write players: %w", err)
	}

	logger.Get().Info(ctx, "players saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, playersPerSecond float64

	if stats.PlayersGenerated > 0 {
		successRate = float64(stats.MetricsComputed) / float64(stats.PlayersGenerated) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		playersPerSecond = float64(stats.MetricsComputed) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("playersGenerated", stats.PlayersGenerated),
		logger.Int("reportsStored", stats.ReportsStored),
		logger.Int("batchesSubmitted", stats.BatchesSubmitted),
		logger.Int("batchesFailed", stats.BatchesFailed),
		logger.Int("metricsComputed", stats.MetricsComputed),
		logger.Int("itemsFailed", stats.ItemsFailed),
		logger.Int("mismatches", stats.Mismatches),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("playersPerSecond", playersPerSecond))
}
