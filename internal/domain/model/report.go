package model

import "maps"

// UploadedReportRow is one parsed row of an uploaded report: one player, one
// cycle. Every metric is optional.
type UploadedReportRow struct {
	PlayerID        string             `json:"playerId" validate:"required"`
	Team            string             `json:"team,omitempty"`
	MetricValues    map[string]float64 `json:"metricValues,omitempty"`
	CurrentCycleDay *int               `json:"currentCycleDay,omitempty"`
	TotalCycleDays  *int               `json:"totalCycleDays,omitempty"`
}

// Metric returns the value uploaded for name, if any.
func (r *UploadedReportRow) Metric(name string) (float64, bool) {
	if r == nil || r.MetricValues == nil {
		return 0, false
	}
	v, ok := r.MetricValues[name]
	return v, ok
}

// Clone returns a deep copy of the row.
func (r UploadedReportRow) Clone() UploadedReportRow {
	out := r
	out.MetricValues = maps.Clone(r.MetricValues)
	if r.CurrentCycleDay != nil {
		v := *r.CurrentCycleDay
		out.CurrentCycleDay = &v
	}
	if r.TotalCycleDays != nil {
		v := *r.TotalCycleDays
		out.TotalCycleDays = &v
	}
	return out
}
