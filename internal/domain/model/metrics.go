package model

// Color is the band of a progress bar.
type Color string

// Progress bar bands.
const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
)

// ProgressBar is the display mapping of a goal percentage.
type ProgressBar struct {
	Percentage     float64 `json:"percentage"`
	Color          Color   `json:"color"`
	FillPercentage float64 `json:"fillPercentage"`
}

// GoalMetrics is the resolved state of one goal.
type GoalMetrics struct {
	Name        string      `json:"name"`
	Percentage  float64     `json:"percentage"`
	BoostActive bool        `json:"boostActive"`
	ProgressBar ProgressBar `json:"progressBar"`
}

// PlayerMetrics is the engine output for one player. It is recomputed on
// every call and never persisted.
type PlayerMetrics struct {
	PlayerID          string      `json:"playerId"`
	PlayerName        string      `json:"playerName"`
	Team              string      `json:"team"`
	TotalPoints       float64     `json:"totalPoints"`
	PointsLocked      bool        `json:"pointsLocked"`
	CurrentCycleDay   int         `json:"currentCycleDay"`
	DaysUntilCycleEnd int         `json:"daysUntilCycleEnd"`
	PrimaryGoal       GoalMetrics `json:"primaryGoal"`
	SecondaryGoal1    GoalMetrics `json:"secondaryGoal1"`
	SecondaryGoal2    GoalMetrics `json:"secondaryGoal2"`
}

// Goal returns the goal shown in slot.
func (m *PlayerMetrics) Goal(slot GoalSlot) GoalMetrics {
	switch slot {
	case SlotSecondary1:
		return m.SecondaryGoal1
	case SlotSecondary2:
		return m.SecondaryGoal2
	default:
		return m.PrimaryGoal
	}
}
