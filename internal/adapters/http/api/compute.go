package api

import (
	"context"
	"net/http"

	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/internal/domain/types"
	"github.com/okian/goalboard/pkg/logger"
)

// MetricsDependencies defines the metric computation operations.
type MetricsDependencies interface {
	Compute(ctx context.Context, req types.ComputeRequest) (model.PlayerMetrics, error)
	ComputeBatch(ctx context.Context, req types.BatchRequest) (types.BatchResult, error)
}

// MetricsHandler handles player metric computation.
type MetricsHandler struct {
	deps   MetricsDependencies
	logger logger.Logger
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(deps MetricsDependencies, l logger.Logger) *MetricsHandler {
	return &MetricsHandler{deps: deps, logger: l}
}

// HandleCompute handles POST /metrics. A status without identity is
// answered with 422, not 400.
func (h *MetricsHandler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.compute_metrics"
	var req types.ComputeRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	m, err := h.deps.Compute(r.Context(), req)
	if err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleBatch handles POST /metrics/batch. Per-item failures are reported
// inside the result.
func (h *MetricsHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.compute_batch"
	var req types.BatchRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	if err := validate(op, req); err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	res, err := h.deps.ComputeBatch(r.Context(), req)
	if err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
