package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidKey  = errors.New("invalid store key")
	ErrStoreClosed = errors.New("store closed")
)
