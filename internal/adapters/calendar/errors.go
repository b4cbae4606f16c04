package calendar

import "errors"

// Sentinel kinds for calendar errors.
var (
	ErrEventNotFound = errors.New("event not found")
	ErrNoFile        = errors.New("calendar has no backing file")
	ErrParse         = errors.New("invalid calendar")
)
