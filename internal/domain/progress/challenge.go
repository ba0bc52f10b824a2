package progress

import (
	"slices"

	"github.com/okian/goalboard/internal/domain/model"
)

// FindPercentage returns the percentage of the first record matching any of
// the accepted challenge references, rounded to 2 decimals. A record matches
// when any of its reference aliases is accepted; a matching record with no
// populated value is skipped.
func FindPercentage(records []model.ChallengeProgress, accepted []string) (float64, bool) {
	if len(records) == 0 || len(accepted) == 0 {
		return 0, false
	}
	for _, rec := range records {
		if !matches(rec, accepted) {
			continue
		}
		if v, ok := rec.Percent(); ok {
			return Round2(v), true
		}
	}
	return 0, false
}

// ExtractPercentage is FindPercentage with a fallback for the no-match case.
func ExtractPercentage(records []model.ChallengeProgress, accepted []string, fallback float64) float64 {
	if v, ok := FindPercentage(records, accepted); ok {
		return v
	}
	return fallback
}

func matches(rec model.ChallengeProgress, accepted []string) bool {
	for _, ref := range rec.Refs() {
		if slices.Contains(accepted, ref) {
			return true
		}
	}
	return false
}
