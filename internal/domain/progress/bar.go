package progress

import (
	"math"

	"github.com/okian/goalboard/internal/domain/model"
)

// Band boundaries and the share of the bar each band fills.
const (
	redCeiling    = 50.0
	yellowCeiling = 100.0
	fillCap       = 150.0
	bandWidth     = 50.0

	redFill    = 33.33
	yellowFill = 33.33
	greenFill  = 33.34
	yellowBase = redFill
	greenBase  = redFill + yellowFill
)

// MapBar maps a goal percentage to its progress bar. The fill is
// piecewise linear over three bands and saturates at 150%; the percentage
// itself is kept as given (rounded). Invalid input maps to an empty red bar.
func MapBar(percentage float64) model.ProgressBar {
	p := Sanitize(percentage)

	var (
		color model.Color
		fill  float64
	)
	switch {
	case p <= redCeiling:
		color = model.ColorRed
		fill = p / bandWidth * redFill
	case p <= yellowCeiling:
		color = model.ColorYellow
		fill = yellowBase + (p-redCeiling)/bandWidth*yellowFill
	default:
		color = model.ColorGreen
		fill = greenBase + (math.Min(p, fillCap)-yellowCeiling)/bandWidth*greenFill
	}

	return model.ProgressBar{
		Percentage:     p,
		Color:          color,
		FillPercentage: math.Min(Round2(fill), 100),
	}
}
