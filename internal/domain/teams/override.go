package teams

import (
	"slices"

	"github.com/okian/goalboard/internal/domain/model"
)

// MergeOverrides applies override on top of defaults field by field. Empty
// override fields keep the default; the result never aliases either input.
func MergeOverrides(defaults model.TeamGoalConfig, override *model.TeamGoalConfig) model.TeamGoalConfig {
	out := defaults.Clone()
	if override == nil {
		return out
	}
	for _, slot := range model.Slots() {
		out.SetSlot(slot, mergeGoal(out.Slot(slot), override.Slot(slot)))
	}
	if override.UnlockItemID != "" {
		out.UnlockItemID = override.UnlockItemID
	}
	return out
}

func mergeGoal(base, o model.GoalConfig) model.GoalConfig {
	if o.MetricName != "" {
		base.MetricName = o.MetricName
	}
	if o.DisplayName != "" {
		base.DisplayName = o.DisplayName
	}
	if len(o.ChallengeRefs) > 0 {
		base.ChallengeRefs = slices.Clone(o.ChallengeRefs)
	}
	if o.BoostItemID != "" {
		base.BoostItemID = o.BoostItemID
	}
	return base
}
