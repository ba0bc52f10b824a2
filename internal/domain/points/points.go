// Package points computes lock state, boosts and the final point total for
// a player. Each team uses one Calculator.
package points

import "math"

// Strategy names.
const (
	StrategyDirectPassthrough = "direct-passthrough"
	StrategyLocalMultiplier   = "local-multiplier"
)

// unlockThreshold is the primary goal percentage that unlocks points for
// the local-multiplier strategy.
const unlockThreshold = 100.0

// Input is everything a Calculator reads.
type Input struct {
	TotalPoints       float64
	Inventory         map[string]int
	UnlockItemID      string
	Boost1ItemID      string
	Boost2ItemID      string
	PrimaryPercentage float64
}

// State is the outcome of a calculation.
type State struct {
	Locked       bool
	Boost1Active bool
	Boost2Active bool
	Multiplier   float64
	FinalPoints  float64
}

// Calculator computes a State. Implementations are pure.
type Calculator interface {
	Name() string
	Calculate(in Input) State
}

// BoostActive reports whether the player owns at least one itemID.
func BoostActive(inventory map[string]int, itemID string) bool {
	if itemID == "" {
		return false
	}
	return inventory[itemID] > 0
}

// DirectPassthrough locks on a missing unlock item and never alters the
// platform total. Boosts are informational only.
type DirectPassthrough struct{}

// Name implements Calculator.
func (DirectPassthrough) Name() string { return StrategyDirectPassthrough }

// Calculate implements Calculator.
func (DirectPassthrough) Calculate(in Input) State {
	return State{
		Locked:       in.UnlockItemID == "" || in.Inventory[in.UnlockItemID] == 0,
		Boost1Active: BoostActive(in.Inventory, in.Boost1ItemID),
		Boost2Active: BoostActive(in.Inventory, in.Boost2ItemID),
		Multiplier:   1,
		FinalPoints:  in.TotalPoints,
	}
}

// LocalMultiplier unlocks on primary goal achievement and multiplies the
// base points by one plus the number of active boosts.
type LocalMultiplier struct{}

// Name implements Calculator.
func (LocalMultiplier) Name() string { return StrategyLocalMultiplier }

// Calculate implements Calculator.
func (LocalMultiplier) Calculate(in Input) State {
	st := State{
		Locked:       in.PrimaryPercentage < unlockThreshold,
		Boost1Active: BoostActive(in.Inventory, in.Boost1ItemID),
		Boost2Active: BoostActive(in.Inventory, in.Boost2ItemID),
		Multiplier:   1,
		FinalPoints:  in.TotalPoints,
	}
	if st.Locked {
		return st
	}
	if st.Boost1Active {
		st.Multiplier++
	}
	if st.Boost2Active {
		st.Multiplier++
	}
	st.FinalPoints = math.Round(in.TotalPoints * st.Multiplier)
	return st
}
