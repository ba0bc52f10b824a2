package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/goalboard/internal/loadgen"
)

// Default configuration constants.
const (
	defaultNumPlayers  = 5000
	defaultBatchSize   = 200
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numPlayers = flag.Int("players", defaultNumPlayers, "Number of players to generate")
		batchSize  = flag.Int("batch", defaultBatchSize, "Players per /metrics/batch request")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Output file for generated players (default: generated_players_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for run output (default: loadgen_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	logs, err := loadgen.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &loadgen.Config{
		BaseURL:    *baseURL,
		NumPlayers: *numPlayers,
		BatchSize:  *batchSize,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	runErr := loadgen.Run(ctx, config)
	cancel()
	_ = logs.Close()
	if runErr != nil {
		os.Stderr.WriteString("Load run failed: " + runErr.Error() + "\n")
		os.Exit(1)
	}
}
