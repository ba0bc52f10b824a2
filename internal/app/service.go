// Package service wires the metrics engine, the stores and the worker pool
// behind the operations used by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/goalboard/internal/adapters/mq/queue"
	"github.com/okian/goalboard/internal/adapters/mq/worker"
	"github.com/okian/goalboard/internal/adapters/repository"
	"github.com/okian/goalboard/internal/domain/dedupe"
	"github.com/okian/goalboard/internal/domain/goals"
	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/internal/domain/teams"
	"github.com/okian/goalboard/internal/domain/types"
	"github.com/okian/goalboard/pkg/logger"
	"github.com/okian/goalboard/pkg/metrics"
)

// Service implements the API dependencies for the metrics dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry *teams.Registry
	store    *repository.MemoryStore
	jobs     queue.Queue
	pool     *worker.Pool

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	batchLimit    int
	cycleDays     int
	teamPolicies  map[string]string
	teamOverrides map[string]model.TeamGoalConfig

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   10_000,
		dedupeSize:  50_000,
		batchLimit:  1_000,
		cycleDays:   teams.DefaultCycleDays,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the registry, stores and worker pool. Calling Start on a
// running service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	regOpts := []teams.Option{
		teams.WithLogger(s.logger.Named("teams")),
		teams.WithCycleDays(s.cycleDays),
	}
	for team, name := range s.teamPolicies {
		policy, err := goals.ParsePolicy(name)
		if err != nil {
			return fmt.Errorf("team %q: %w", team, err)
		}
		regOpts = append(regOpts, teams.WithPolicy(team, policy))
	}
	registry := teams.NewRegistry(teams.DefaultCatalog(), regOpts...)

	runCtx, cancel := context.WithCancel(ctx)
	store := repository.NewMemoryStore(runCtx)
	for team, cfg := range s.teamOverrides {
		p, err := registry.Processor(team)
		if err != nil {
			s.logger.Warn(ctx, "override configured for unknown team", logger.String("team", team))
			continue
		}
		if err := store.PutOverride(ctx, p.Team().String(), cfg); err != nil {
			cancel()
			_ = store.Close()
			return fmt.Errorf("seed override %q: %w", team, err)
		}
	}

	jobs := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	pool := worker.NewPool(s.workerCount, jobs, computeJobs(registry),
		worker.WithPoolLogger(s.logger))
	pool.Start(runCtx)

	s.registry = registry
	s.store = store
	s.jobs = jobs
	s.pool = pool
	s.cancel = cancel
	s.started = true

	s.logger.Info(ctx, "metrics service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("batchLimit", s.batchLimit),
		logger.Int("teams", len(registry.Teams())),
	)
	return nil
}

// Stop drains the worker pool and releases the stores.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping metrics service...")

	err := s.pool.Shutdown(ctx)
	if cerr := s.store.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "metrics service stopped")
	return err
}

// components is a snapshot of the running components.
type components struct {
	registry *teams.Registry
	store    *repository.MemoryStore
	jobs     queue.Queue
}

func (s *Service) running() (components, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return components{}, ErrNotStarted
	}
	return components{registry: s.registry, store: s.store, jobs: s.jobs}, nil
}

// computeJobs returns the Computer run by pool workers. It captures the
// registry so workers never take the service lock.
func computeJobs(registry *teams.Registry) worker.Computer {
	return worker.ComputerFunc(func(ctx context.Context, job model.MetricsJob) (model.PlayerMetrics, error) {
		p, err := registry.Processor(job.Team)
		if err != nil {
			return model.PlayerMetrics{}, err
		}
		return p.ComputeMetrics(ctx, &job.Status, job.Report, job.Config)
	})
}

// prepare selects the team and fills the report and config from the stores
// when the request does not carry them.
func (s *Service) prepare(ctx context.Context, c components, req *types.ComputeRequest) (*teams.Processor, *model.UploadedReportRow, *model.TeamGoalConfig, error) {
	report := req.Report
	if report == nil && req.Status.ID != "" {
		row, err := c.store.Report(ctx, req.Status.ID)
		switch {
		case err == nil:
			report = &row
		case errors.Is(err, repository.ErrNotFound):
			s.logger.Debug(ctx, "no stored report for player", logger.String("player_id", req.Status.ID))
		default:
			return nil, nil, nil, err
		}
	}

	p, err := c.registry.Select(&req.Status, report, req.Team)
	if err != nil {
		return nil, nil, nil, err
	}

	cfg := req.Config
	if cfg == nil {
		stored, err := c.store.Override(ctx, p.Team().String())
		if err == nil {
			cfg = &stored
		}
	}
	return p, report, cfg, nil
}

// Compute computes one player's metrics synchronously.
func (s *Service) Compute(ctx context.Context, req types.ComputeRequest) (model.PlayerMetrics, error) {
	c, err := s.running()
	if err != nil {
		return model.PlayerMetrics{}, err
	}
	p, report, cfg, err := s.prepare(ctx, c, &req)
	if err != nil {
		return model.PlayerMetrics{}, err
	}
	return p.ComputeMetrics(ctx, &req.Status, report, cfg)
}

// ComputeBatch computes many players on the worker pool. Items are returned
// in request order. Repeated player ids are computed once and flagged.
func (s *Service) ComputeBatch(ctx context.Context, req types.BatchRequest) (types.BatchResult, error) {
	c, err := s.running()
	if err != nil {
		return types.BatchResult{}, err
	}
	if len(req.Items) > s.batchLimit {
		return types.BatchResult{}, fmt.Errorf("%w: %d items, limit %d", ErrBatchTooLarge, len(req.Items), s.batchLimit)
	}

	start := time.Now()
	res := types.BatchResult{
		BatchID: uuid.NewString(),
		Items:   make([]types.BatchItem, len(req.Items)),
	}
	metrics.RecordBatchSize(len(req.Items))

	seen := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeWindow(len(req.Items))))
	first := make(map[string]int, len(req.Items))
	results := make(chan model.JobResult, len(req.Items))
	pending := 0

	for i := range req.Items {
		item := &req.Items[i]
		out := &res.Items[i]
		out.Index = i
		out.PlayerID = item.Status.ID

		if id := item.Status.ID; id != "" {
			if seen.SeenAndRecord(ctx, id) {
				out.Duplicate = true
				res.Duplicates++
				metrics.RecordBatchDuplicate()
				continue
			}
			first[id] = i
		}

		p, report, cfg, err := s.prepare(ctx, c, item)
		if err != nil {
			// A later item for the same player gets its own attempt.
			if id := item.Status.ID; id != "" {
				seen.Unrecord(ctx, id)
				delete(first, id)
			}
			out.Error = err.Error()
			res.Failed++
			continue
		}
		out.Team = p.Team().String()

		job := model.MetricsJob{
			BatchID: res.BatchID,
			Index:   i,
			Team:    out.Team,
			Status:  item.Status,
			Report:  report,
			Config:  cfg,
			Result:  results,
		}
		if err := c.jobs.Enqueue(ctx, job); err != nil {
			return types.BatchResult{}, fmt.Errorf("enqueue batch %s: %w", res.BatchID, err)
		}
		pending++
	}

	for ; pending > 0; pending-- {
		select {
		case r := <-results:
			out := &res.Items[r.Index]
			if r.Err != nil {
				out.Error = r.Err.Error()
				res.Failed++
				continue
			}
			m := r.Metrics
			out.Metrics = &m
			res.Computed++
		case <-ctx.Done():
			return types.BatchResult{}, fmt.Errorf("batch %s: %w", res.BatchID, ctx.Err())
		}
	}

	for i := range res.Items {
		out := &res.Items[i]
		if !out.Duplicate {
			continue
		}
		orig := res.Items[first[out.PlayerID]]
		out.Team = orig.Team
		out.Metrics = orig.Metrics
		out.Error = orig.Error
	}

	s.logger.Debug(ctx, "batch computed",
		logger.String("batch_id", res.BatchID),
		logger.Int("items", len(res.Items)),
		logger.Int("computed", res.Computed),
		logger.Int("duplicates", res.Duplicates),
		logger.Int("failed", res.Failed),
		logger.Int("elapsed_ms", int(time.Since(start).Milliseconds())),
	)
	return res, nil
}

// dedupeWindow bounds the per-request deduper by the request size. A
// non-positive dedupe size keeps it unbounded.
func (s *Service) dedupeWindow(items int) int {
	if s.dedupeSize <= 0 {
		return s.dedupeSize
	}
	return max(1, min(s.dedupeSize, items))
}

// UploadReports stores uploaded rows. When a player appears more than once
// the last row wins.
func (s *Service) UploadReports(ctx context.Context, req types.UploadRequest) (types.UploadResult, error) {
	c, err := s.running()
	if err != nil {
		return types.UploadResult{}, err
	}

	res := types.UploadResult{
		UploadID: uuid.NewString(),
		Received: len(req.Rows),
	}
	seen := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeWindow(len(req.Rows))))
	kept := make([]model.UploadedReportRow, 0, len(req.Rows))
	for i := len(req.Rows) - 1; i >= 0; i-- {
		row := req.Rows[i]
		if seen.SeenAndRecord(ctx, row.PlayerID) {
			res.Duplicates++
			metrics.RecordReportRowDuplicate()
			continue
		}
		kept = append(kept, row)
	}

	stored, err := c.store.PutReports(ctx, kept)
	if err != nil {
		return types.UploadResult{}, fmt.Errorf("upload %s: %w", res.UploadID, err)
	}
	res.Stored = stored

	s.logger.Info(ctx, "reports uploaded",
		logger.String("upload_id", res.UploadID),
		logger.Int("received", res.Received),
		logger.Int("stored", res.Stored),
		logger.Int("duplicates", res.Duplicates),
	)
	return res, nil
}

// Teams describes every registered team with its effective config.
func (s *Service) Teams(ctx context.Context) ([]types.TeamSummary, error) {
	c, err := s.running()
	if err != nil {
		return nil, err
	}
	overrides := c.store.Overrides(ctx)
	ids := c.registry.Teams()
	out := make([]types.TeamSummary, 0, len(ids))
	for _, id := range ids {
		p, err := c.registry.Processor(id.String())
		if err != nil {
			return nil, err
		}
		var override *model.TeamGoalConfig
		if cfg, ok := overrides[id.String()]; ok {
			override = &cfg
		}
		out = append(out, summarize(p, override))
	}
	return out, nil
}

// TeamConfig returns the effective config of one team.
func (s *Service) TeamConfig(ctx context.Context, team string) (types.TeamSummary, error) {
	c, err := s.running()
	if err != nil {
		return types.TeamSummary{}, err
	}
	p, err := c.registry.Processor(team)
	if err != nil {
		return types.TeamSummary{}, err
	}
	var override *model.TeamGoalConfig
	if cfg, err := c.store.Override(ctx, p.Team().String()); err == nil {
		override = &cfg
	}
	return summarize(p, override), nil
}

// SetTeamConfig stores an admin override and returns the resulting
// effective config.
func (s *Service) SetTeamConfig(ctx context.Context, team string, cfg model.TeamGoalConfig) (types.TeamSummary, error) {
	c, err := s.running()
	if err != nil {
		return types.TeamSummary{}, err
	}
	p, err := c.registry.Processor(team)
	if err != nil {
		return types.TeamSummary{}, err
	}
	if err := c.store.PutOverride(ctx, p.Team().String(), cfg); err != nil {
		return types.TeamSummary{}, err
	}
	s.logger.Info(ctx, "team config override stored", logger.String("team", p.Team().String()))
	return s.TeamConfig(ctx, team)
}

// DeleteTeamConfig drops the admin override of team.
func (s *Service) DeleteTeamConfig(ctx context.Context, team string) error {
	c, err := s.running()
	if err != nil {
		return err
	}
	p, err := c.registry.Processor(team)
	if err != nil {
		return err
	}
	if err := c.store.DeleteOverride(ctx, p.Team().String()); err != nil {
		return err
	}
	s.logger.Info(ctx, "team config override deleted", logger.String("team", p.Team().String()))
	return nil
}

func summarize(p *teams.Processor, override *model.TeamGoalConfig) types.TeamSummary {
	return types.TeamSummary{
		Team:       p.Team().String(),
		Label:      p.Label(),
		Policy:     string(p.Policy()),
		Strategy:   p.Strategy(),
		Overridden: override != nil,
		Config:     p.EffectiveConfig(override),
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"batchLimit":  s.batchLimit,
		"cycleDays":   s.cycleDays,
	}

	if s.started {
		stats["queueLength"] = s.jobs.Len(ctx)
		stats["reportsStored"] = s.store.ReportCount(ctx)
		stats["overridesStored"] = len(s.store.Overrides(ctx))
		stats["jobsProcessed"] = s.pool.Processed()
		stats["jobsFailed"] = s.pool.Failed()
		stats["teams"] = len(s.registry.Teams())

		metrics.UpdateQueueSize(s.jobs.Len(ctx))
		metrics.UpdateWorkerActiveCount(s.pool.Size())
	}

	return stats
}
