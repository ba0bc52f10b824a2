package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/pkg/metrics"
)

// MemoryStore implements ReportStore and OverrideStore with maps guarded by
// a single RWMutex. Values are deep-copied on the way in and out.
type MemoryStore struct {
	mu        sync.RWMutex
	reports   map[string]model.UploadedReportRow
	overrides map[string]model.TeamGoalConfig

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	closed   bool
}

var (
	_ ReportStore   = (*MemoryStore)(nil)
	_ OverrideStore = (*MemoryStore)(nil)
)

// NewMemoryStore constructs a store and starts its metrics updater, which
// stops when ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		reports:               make(map[string]model.UploadedReportRow),
		overrides:             make(map[string]model.TeamGoalConfig),
		metricsUpdateInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.updateMetrics()
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background goroutine.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.stopChan)
	}
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

// PutReports implements ReportStore.
func (s *MemoryStore) PutReports(_ context.Context, rows []model.UploadedReportRow) (int, error) {
	for i, row := range rows {
		if strings.TrimSpace(row.PlayerID) == "" {
			return 0, fmt.Errorf("%w: row %d has no player id", ErrInvalidKey, i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrStoreClosed
	}
	for _, row := range rows {
		s.reports[row.PlayerID] = row.Clone()
	}
	return len(rows), nil
}

// Report implements ReportStore.
func (s *MemoryStore) Report(_ context.Context, playerID string) (model.UploadedReportRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.reports[playerID]
	if !ok {
		return model.UploadedReportRow{}, fmt.Errorf("report for %q: %w", playerID, ErrNotFound)
	}
	return row.Clone(), nil
}

// ReportCount implements ReportStore.
func (s *MemoryStore) ReportCount(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}

// PutOverride implements OverrideStore.
func (s *MemoryStore) PutOverride(_ context.Context, team string, cfg model.TeamGoalConfig) error {
	if team == "" {
		return fmt.Errorf("%w: empty team", ErrInvalidKey)
	}
	cfg = cfg.Clone()
	cfg.Team = team

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.overrides[team] = cfg
	return nil
}

// Override implements OverrideStore.
func (s *MemoryStore) Override(_ context.Context, team string) (model.TeamGoalConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.overrides[team]
	if !ok {
		return model.TeamGoalConfig{}, fmt.Errorf("override for %q: %w", team, ErrNotFound)
	}
	return cfg.Clone(), nil
}

// DeleteOverride implements OverrideStore.
func (s *MemoryStore) DeleteOverride(_ context.Context, team string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.overrides[team]; !ok {
		return fmt.Errorf("override for %q: %w", team, ErrNotFound)
	}
	delete(s.overrides, team)
	return nil
}

// Overrides implements OverrideStore.
func (s *MemoryStore) Overrides(_ context.Context) map[string]model.TeamGoalConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.TeamGoalConfig, len(s.overrides))
	for team, cfg := range s.overrides {
		out[team] = cfg.Clone()
	}
	return out
}

// startMetricsUpdater starts a background goroutine that publishes store sizes.
func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *MemoryStore) updateMetrics() {
	s.mu.RLock()
	reports, overrides := len(s.reports), len(s.overrides)
	s.mu.RUnlock()

	metrics.UpdateReportsStored(reports)
	metrics.UpdateOverridesStored(overrides)
}
