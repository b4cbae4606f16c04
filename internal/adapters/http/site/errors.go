package site

import "errors"

// Sentinel kinds for site errors.
var (
	ErrTemplate = errors.New("site template failed")
	ErrListen   = errors.New("site listen failed")
)
