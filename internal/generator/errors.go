package generator

import "errors"

// Sentinel kinds for generation errors.
var (
	ErrNoResults  = errors.New("no race results found")
	ErrNoSections = errors.New("no result sections found")
)
