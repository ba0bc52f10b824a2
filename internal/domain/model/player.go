// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"fmt"
	"math"

	"github.com/goccy/go-json"

	"github.com/okian/goalboard/internal/validation"
)

// PlatformPlayerStatus is the player snapshot returned by the gamification
// platform.
type PlatformPlayerStatus struct {
	ID                string              `json:"_id" validate:"required"`
	Name              string              `json:"name" validate:"required"`
	TotalPoints       float64             `json:"total_points"`
	InventoryCounts   map[string]int      `json:"catalog_items,omitempty"`
	ChallengeProgress []ChallengeProgress `json:"challenge_progress,omitempty"`
	TeamMemberships   []string            `json:"teams,omitempty"`
}

// Field aliases accepted when decoding a platform status. The platform has
// renamed these fields over time and older payloads are still replayed, so
// every alias stays accepted. Lookup is ordered; the first populated wins.
var (
	statusIDAliases          = []string{"_id", "id"}
	statusNameAliases        = []string{"name"}
	statusPointsAliases      = []string{"total_points", "totalPoints", "points"}
	statusInventoryAliases   = []string{"catalog_items", "inventoryCounts", "inventory"}
	statusChallengeAliases   = []string{"challenge_progress", "challengeProgress"}
	statusMembershipsAliases = []string{"teams", "teamMemberships"}
)

// UnmarshalJSON decodes a status using the ordered alias lookup.
func (s *PlatformPlayerStatus) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode platform status: %w", err)
	}

	var out PlatformPlayerStatus
	if err := lookupAlias(raw, &out.ID, statusIDAliases...); err != nil {
		return err
	}
	if err := lookupAlias(raw, &out.Name, statusNameAliases...); err != nil {
		return err
	}
	if err := lookupAlias(raw, &out.TotalPoints, statusPointsAliases...); err != nil {
		return err
	}

	// Counts sometimes arrive as 1.0; decode loosely and truncate.
	var inventory map[string]float64
	if err := lookupAlias(raw, &inventory, statusInventoryAliases...); err != nil {
		return err
	}
	if inventory != nil {
		out.InventoryCounts = make(map[string]int, len(inventory))
		for item, n := range inventory {
			if math.IsNaN(n) || math.IsInf(n, 0) {
				continue
			}
			out.InventoryCounts[item] = int(n)
		}
	}

	if err := lookupAlias(raw, &out.ChallengeProgress, statusChallengeAliases...); err != nil {
		return err
	}
	if err := lookupAlias(raw, &out.TeamMemberships, statusMembershipsAliases...); err != nil {
		return err
	}

	*s = out
	return nil
}

// lookupAlias decodes the first populated alias of raw into dst. Missing keys
// and JSON nulls count as unpopulated. dst is left untouched when no alias is
// populated.
func lookupAlias(raw map[string]json.RawMessage, dst any, aliases ...string) error {
	for _, key := range aliases {
		v, ok := raw[key]
		if !ok || isNull(v) {
			continue
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("decode field %q: %w", key, err)
		}
		return nil
	}
	return nil
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// Validate reports a *DataError when the identity fields are missing.
func (s *PlatformPlayerStatus) Validate() error {
	if err := validation.Struct(s); err != nil {
		return newDataError(s.ID, err)
	}
	return nil
}

// Inventory returns the count for item. A missing map or item reads as 0.
func (s *PlatformPlayerStatus) Inventory(item string) int {
	if s.InventoryCounts == nil || item == "" {
		return 0
	}
	return s.InventoryCounts[item]
}

// ChallengeProgress is one live progress record. Every reference and value
// alias the platform has used is kept as its own field; Refs and Percent
// read them in order.
type ChallengeProgress struct {
	Challenge   string `json:"challenge,omitempty"`
	ChallengeID string `json:"challengeId,omitempty"`
	ID          string `json:"id,omitempty"`

	PercentCompleted *float64 `json:"percentCompleted,omitempty"`
	Percentage       *float64 `json:"percentage,omitempty"`
	Progress         *float64 `json:"progress,omitempty"`
}

// NewChallengeProgress builds a record using the current field names.
func NewChallengeProgress(challenge string, percent float64) ChallengeProgress {
	return ChallengeProgress{Challenge: challenge, PercentCompleted: &percent}
}

// Refs returns the non-empty references in alias order: challenge,
// challengeId, id.
func (c ChallengeProgress) Refs() []string {
	refs := make([]string, 0, 3)
	for _, r := range []string{c.Challenge, c.ChallengeID, c.ID} {
		if r != "" {
			refs = append(refs, r)
		}
	}
	return refs
}

// Percent returns the first populated of percentCompleted, percentage and
// progress.
func (c ChallengeProgress) Percent() (float64, bool) {
	for _, p := range []*float64{c.PercentCompleted, c.Percentage, c.Progress} {
		if p != nil {
			return *p, true
		}
	}
	return 0, false
}
