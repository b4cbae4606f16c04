package resultsfile

import "errors"

// Sentinel errors for result file parsing.
var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoHeader       = errors.New("header row not found")
	ErrEmptyWorkbook  = errors.New("workbook has no sheets")
)
