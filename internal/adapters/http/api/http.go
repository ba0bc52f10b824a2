// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	"github.com/okian/goalboard/internal/adapters/mq/queue"
	"github.com/okian/goalboard/internal/adapters/repository"
	service "github.com/okian/goalboard/internal/app"
	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/internal/domain/teams"
	"github.com/okian/goalboard/internal/domain/types"
	"github.com/okian/goalboard/internal/validation"
	"github.com/okian/goalboard/pkg/logger"
	"github.com/okian/goalboard/pkg/metrics"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 8 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	Compute(ctx context.Context, req types.ComputeRequest) (model.PlayerMetrics, error)
	ComputeBatch(ctx context.Context, req types.BatchRequest) (types.BatchResult, error)
	UploadReports(ctx context.Context, req types.UploadRequest) (types.UploadResult, error)

	Teams(ctx context.Context) ([]types.TeamSummary, error)
	TeamConfig(ctx context.Context, team string) (types.TeamSummary, error)
	SetTeamConfig(ctx context.Context, team string, cfg model.TeamGoalConfig) (types.TeamSummary, error)
	DeleteTeamConfig(ctx context.Context, team string) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	teamsHandler   *TeamsHandler
	reportsHandler *ReportsHandler
	metricsHandler *MetricsHandler

	corsOrigins       []string
	rateLimitRequests int
	rateLimitWindow   time.Duration
	logger            logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCORSOrigins enables CORS for the given origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = append([]string(nil), origins...)
	}
}

// WithRateLimit limits each client IP to requests per window. A zero
// request count disables the limit.
func WithRateLimit(requests int, window time.Duration) Option {
	return func(s *Server) {
		if requests >= 0 && window > 0 {
			s.rateLimitRequests = requests
			s.rateLimitWindow = window
		}
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.teamsHandler = NewTeamsHandler(deps, s.logger)
	s.reportsHandler = NewReportsHandler(deps, s.logger)
	s.metricsHandler = NewMetricsHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))

	r.Group(func(r chi.Router) {
		if s.rateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(s.rateLimitRequests, s.rateLimitWindow))
		}

		r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

		r.Get("/teams", MetricsMiddleware(s.teamsHandler.HandleList, "teams"))
		r.Get("/teams/{team}/config", MetricsMiddleware(s.teamsHandler.HandleGetConfig, "team_config"))
		r.Put("/teams/{team}/config", MetricsMiddleware(s.teamsHandler.HandlePutConfig, "team_config"))
		r.Delete("/teams/{team}/config", MetricsMiddleware(s.teamsHandler.HandleDeleteConfig, "team_config"))

		r.Post("/reports", MetricsMiddleware(s.reportsHandler.HandleUpload, "reports"))

		r.Post("/metrics", MetricsMiddleware(s.metricsHandler.HandleCompute, "metrics"))
		r.Post("/metrics/batch", MetricsMiddleware(s.metricsHandler.HandleBatch, "metrics_batch"))
	})
}

// Handler returns a router with every route registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads one JSON value from the request body. Decode and
// validation failures are classified as ErrBadRequest.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

func validate(op string, v any) error {
	if err := validation.Struct(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// respondError maps domain errors to HTTP statuses.
func respondError(ctx context.Context, w http.ResponseWriter, l logger.Logger, op string, err error) {
	var de *model.DataError
	switch {
	case errors.As(err, &de):
		writeError(w, http.StatusUnprocessableEntity, "invalid_player", Wrap(op, err))
	case errors.Is(err, ErrBadRequest), errors.Is(err, repository.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, "bad_request", withOp(op, err))
	case errors.Is(err, teams.ErrUnknownTeam), errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, queue.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrBatchTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "batch_too_large", Wrap(op, err))
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, queue.ErrClosed), errors.Is(err, repository.ErrStoreClosed):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		metrics.RecordErrorByComponent("api", "internal")
		l.Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

func withOp(op string, err error) error {
	var ke *KindError
	if errors.As(err, &ke) {
		return err
	}
	return Wrap(op, err)
}
