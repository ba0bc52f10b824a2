package teams

import "errors"

// Sentinel errors for team lookup.
var (
	ErrUnknownTeam = errors.New("unknown team")
)
