package api

import (
	"context"
	"net/http"

	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/internal/domain/types"
	"github.com/okian/goalboard/pkg/logger"
)

// ReportsDependencies defines the report upload operation.
type ReportsDependencies interface {
	UploadReports(ctx context.Context, req types.UploadRequest) (types.UploadResult, error)
}

// ReportsHandler handles uploads of parsed report rows.
type ReportsHandler struct {
	deps   ReportsDependencies
	logger logger.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps ReportsDependencies, l logger.Logger) *ReportsHandler {
	return &ReportsHandler{deps: deps, logger: l}
}

// HandleUpload handles POST /reports. The body is a JSON array of rows.
func (h *ReportsHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.upload_reports"
	var rows []model.UploadedReportRow
	if err := decodeJSON(w, r, op, &rows); err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	req := types.UploadRequest{Rows: rows}
	if err := validate(op, req); err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	res, err := h.deps.UploadReports(r.Context(), req)
	if err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
