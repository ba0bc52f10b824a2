// Package repository holds the in-memory stores for uploaded reports and
// team config overrides.
package repository

import (
	"context"

	"github.com/okian/goalboard/internal/domain/model"
)

// ReportStore keeps the latest uploaded report row per player.
type ReportStore interface {
	// PutReports stores rows, replacing any previous row of the same player.
	// Returns the number of rows stored.
	PutReports(ctx context.Context, rows []model.UploadedReportRow) (int, error)

	// Report returns the row for playerID or ErrNotFound.
	Report(ctx context.Context, playerID string) (model.UploadedReportRow, error)

	// ReportCount returns the number of players with a stored row.
	ReportCount(ctx context.Context) int
}

// OverrideStore keeps admin goal config overrides keyed by team id.
type OverrideStore interface {
	PutOverride(ctx context.Context, team string, cfg model.TeamGoalConfig) error

	// Override returns the override for team or ErrNotFound.
	Override(ctx context.Context, team string) (model.TeamGoalConfig, error)

	// DeleteOverride removes the override for team or returns ErrNotFound.
	DeleteOverride(ctx context.Context, team string) error

	// Overrides returns a copy of every stored override.
	Overrides(ctx context.Context) map[string]model.TeamGoalConfig
}
