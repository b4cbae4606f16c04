package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrNoSummary = errors.New("standings have not been generated yet")
)
