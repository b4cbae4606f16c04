package edgecheck

import "errors"

// Sentinel errors for check runs.
var (
	ErrChecksFailed = errors.New("edge checks failed")
	ErrInvalidURL   = errors.New("invalid base url")
)
