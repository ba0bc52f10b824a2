package model

import "slices"

// GoalSlot names one of the three goals shown for every player.
type GoalSlot string

// Goal slots in display order.
const (
	SlotPrimary    GoalSlot = "primary"
	SlotSecondary1 GoalSlot = "secondary1"
	SlotSecondary2 GoalSlot = "secondary2"
)

// Slots returns the goal slots in display order.
func Slots() []GoalSlot {
	return []GoalSlot{SlotPrimary, SlotSecondary1, SlotSecondary2}
}

// GoalConfig is the admin-editable configuration of one goal slot. Empty
// fields mean "keep the team default".
type GoalConfig struct {
	MetricName    string   `json:"metricName,omitempty" koanf:"metric_name"`
	DisplayName   string   `json:"displayName,omitempty" koanf:"display_name"`
	ChallengeRefs []string `json:"challengeRefs,omitempty" koanf:"challenge_refs"`
	BoostItemID   string   `json:"boostItemId,omitempty" koanf:"boost_item_id"`
}

// IsZero reports whether the slot overrides nothing.
func (g GoalConfig) IsZero() bool {
	return g.MetricName == "" && g.DisplayName == "" && len(g.ChallengeRefs) == 0 && g.BoostItemID == ""
}

// TeamGoalConfig is the admin override for a team. It may be partially
// populated; it is applied field by field on top of the team defaults.
type TeamGoalConfig struct {
	Team         string     `json:"team,omitempty" koanf:"team"`
	Primary      GoalConfig `json:"primary" koanf:"primary"`
	Secondary1   GoalConfig `json:"secondary1" koanf:"secondary1"`
	Secondary2   GoalConfig `json:"secondary2" koanf:"secondary2"`
	UnlockItemID string     `json:"unlockItemId,omitempty" koanf:"unlock_item_id"`
}

// Slot returns the configuration of slot.
func (c *TeamGoalConfig) Slot(slot GoalSlot) GoalConfig {
	if c == nil {
		return GoalConfig{}
	}
	switch slot {
	case SlotPrimary:
		return c.Primary
	case SlotSecondary1:
		return c.Secondary1
	case SlotSecondary2:
		return c.Secondary2
	}
	return GoalConfig{}
}

// SetSlot replaces the configuration of slot.
func (c *TeamGoalConfig) SetSlot(slot GoalSlot, g GoalConfig) {
	switch slot {
	case SlotPrimary:
		c.Primary = g
	case SlotSecondary1:
		c.Secondary1 = g
	case SlotSecondary2:
		c.Secondary2 = g
	}
}

// Clone returns a deep copy of the config.
func (c TeamGoalConfig) Clone() TeamGoalConfig {
	out := c
	out.Primary.ChallengeRefs = slices.Clone(c.Primary.ChallengeRefs)
	out.Secondary1.ChallengeRefs = slices.Clone(c.Secondary1.ChallengeRefs)
	out.Secondary2.ChallengeRefs = slices.Clone(c.Secondary2.ChallengeRefs)
	return out
}
