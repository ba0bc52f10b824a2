// Package teams holds the per-team metrics processors and the registry that
// selects them.
package teams

import "strings"

// TeamID identifies a team variant.
type TeamID string

// Registered team variants.
const (
	Carteira0   TeamID = "carteira-0"
	CarteiraI   TeamID = "carteira-i"
	CarteiraII  TeamID = "carteira-ii"
	CarteiraIII TeamID = "carteira-iii"
	CarteiraIV  TeamID = "carteira-iv"
	ER          TeamID = "er"
)

// ParseTeam normalizes a team name as it appears in reports, memberships and
// URLs: "Carteira_II" and " carteira ii " both yield carteira-ii.
func ParseTeam(s string) TeamID {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	return TeamID(s)
}

// String implements fmt.Stringer.
func (t TeamID) String() string { return string(t) }
