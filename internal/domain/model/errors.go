package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/goalboard/internal/validation"
)

// ErrMissingIdentity is the kind of every DataError.
var ErrMissingIdentity = errors.New("platform status missing identity")

// DataError reports structurally unusable input. It is the only error the
// metrics engine returns.
type DataError struct {
	PlayerID string
	Fields   []string
	Err      error
}

func newDataError(playerID string, err error) *DataError {
	de := &DataError{PlayerID: playerID, Err: err}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		de.Fields = verrs.Fields()
	}
	return de
}

// Error implements error.
func (e *DataError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: missing %s", ErrMissingIdentity, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("%s: %v", ErrMissingIdentity, e.Err)
}

// Unwrap exposes both the kind and the cause.
func (e *DataError) Unwrap() []error {
	return []error{ErrMissingIdentity, e.Err}
}
