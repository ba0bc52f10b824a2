package goals

import "errors"

// Sentinel errors for goal resolution.
var (
	ErrUnknownPolicy = errors.New("unknown resolution policy")
)
