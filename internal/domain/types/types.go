// Package types contains request and response types shared by the service
// and the HTTP API.
package types

import "github.com/okian/goalboard/internal/domain/model"

// ComputeRequest asks for one player's metrics. Team and Report are
// optional; without a report the stored row for the player is used. Config
// replaces the stored team override for this call only.
type ComputeRequest struct {
	Team   string                     `json:"team,omitempty"`
	Status model.PlatformPlayerStatus `json:"status"`
	Report *model.UploadedReportRow   `json:"report,omitempty"`
	Config *model.TeamGoalConfig      `json:"config,omitempty"`
}

// BatchRequest asks for many players' metrics.
type BatchRequest struct {
	Items []ComputeRequest `json:"items" validate:"required,min=1"`
}

// BatchItem is the outcome for one request of a batch, in request order.
type BatchItem struct {
	Index     int                  `json:"index"`
	PlayerID  string               `json:"playerId"`
	Team      string               `json:"team,omitempty"`
	Metrics   *model.PlayerMetrics `json:"metrics,omitempty"`
	Duplicate bool                 `json:"duplicate,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// BatchResult summarizes a batch computation.
type BatchResult struct {
	BatchID    string      `json:"batchId"`
	Items      []BatchItem `json:"items"`
	Computed   int         `json:"computed"`
	Duplicates int         `json:"duplicates"`
	Failed     int         `json:"failed"`
}

// UploadRequest carries already-parsed report rows.
type UploadRequest struct {
	Rows []model.UploadedReportRow `json:"rows" validate:"required,min=1,dive"`
}

// UploadResult summarizes a report upload.
type UploadResult struct {
	UploadID   string `json:"uploadId"`
	Received   int    `json:"received"`
	Stored     int    `json:"stored"`
	Duplicates int    `json:"duplicates"`
}

// TeamSummary describes a registered team and its effective goal config.
type TeamSummary struct {
	Team       string               `json:"team"`
	Label      string               `json:"label"`
	Policy     string               `json:"policy"`
	Strategy   string               `json:"strategy"`
	Overridden bool                 `json:"overridden"`
	Config     model.TeamGoalConfig `json:"config"`
}
