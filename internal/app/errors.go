package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrBatchTooLarge = errors.New("batch exceeds limit")
)
