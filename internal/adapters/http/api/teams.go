package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/internal/domain/types"
	"github.com/okian/goalboard/pkg/logger"
)

// TeamsDependencies defines the team configuration operations.
type TeamsDependencies interface {
	Teams(ctx context.Context) ([]types.TeamSummary, error)
	TeamConfig(ctx context.Context, team string) (types.TeamSummary, error)
	SetTeamConfig(ctx context.Context, team string, cfg model.TeamGoalConfig) (types.TeamSummary, error)
	DeleteTeamConfig(ctx context.Context, team string) error
}

// TeamsHandler handles team listing and goal config overrides.
type TeamsHandler struct {
	deps   TeamsDependencies
	logger logger.Logger
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamsDependencies, l logger.Logger) *TeamsHandler {
	return &TeamsHandler{deps: deps, logger: l}
}

// HandleList handles GET /teams.
func (h *TeamsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_teams"
	list, err := h.deps.Teams(r.Context())
	if err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGetConfig handles GET /teams/{team}/config.
func (h *TeamsHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team_config"
	sum, err := h.deps.TeamConfig(r.Context(), chi.URLParam(r, "team"))
	if err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandlePutConfig handles PUT /teams/{team}/config. The body is a partial
// TeamGoalConfig; empty fields keep the team defaults.
func (h *TeamsHandler) HandlePutConfig(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_team_config"
	var cfg model.TeamGoalConfig
	if err := decodeJSON(w, r, op, &cfg); err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	sum, err := h.deps.SetTeamConfig(r.Context(), chi.URLParam(r, "team"), cfg)
	if err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleDeleteConfig handles DELETE /teams/{team}/config.
func (h *TeamsHandler) HandleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_team_config"
	if err := h.deps.DeleteTeamConfig(r.Context(), chi.URLParam(r, "team")); err != nil {
		respondError(r.Context(), w, h.logger, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
