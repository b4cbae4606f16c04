package repository

import "errors"

// Sentinel kinds for results store errors.
var (
	ErrInvalidKey     = errors.New("year and round must be positive")
	ErrUnknownBackend = errors.New("unknown results store backend")
	ErrStore          = errors.New("results store failure")
)
