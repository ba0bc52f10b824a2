package loadgen

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/goalboard/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging sends both the structured logger and the progress log to
// stdout and to logFile. An empty logFile gets a timestamped name.
func SetupLogging(logFile string) (io.Closer, error) {
	if logFile == "" {
		logFile = "loadgen_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	out := io.MultiWriter(os.Stdout, file)
	if err := logger.InitWithWriter(out); err != nil {
		_ = file.Close()
		return nil, err
	}
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return file, nil
}

// ShowHelp prints usage for the load generator.
func ShowHelp() {
	fmt.Fprintln(flag.CommandLine.Output(), `goalboard load generator: uploads reports for synthetic players of every
team, computes them through /metrics/batch and checks every result.

Usage: go run ./cmd/loadgen [options]`)
	flag.PrintDefaults()
}
