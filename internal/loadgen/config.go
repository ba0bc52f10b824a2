package loadgen

import (
	"time"

	"github.com/okian/goalboard/internal/domain/model"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumPlayers int           // Number of players to generate
	BatchSize  int           // Players per batch request
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for generated players
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// Player is one generated player with its expected team.
type Player struct {
	Team   string                     `json:"team"`
	Status model.PlatformPlayerStatus `json:"status"`
	Report model.UploadedReportRow    `json:"report"`
}

// Stats holds run statistics.
type Stats struct {
	PlayersGenerated int
	ReportsStored    int
	BatchesSubmitted int
	BatchesFailed    int
	MetricsComputed  int
	ItemsFailed      int
	Mismatches       int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
