// Package resultsfile reads race result spreadsheets and CSV exports.
package resultsfile

import (
	"github.com/eastkentcx/ekcx/pkg/logger"
)

// Option applies a configuration option to the Reader.
type Option func(*Reader)

// WithLogger sets a custom logger for skipped files and warnings.
func WithLogger(l logger.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRaceHeaderRow sets the zero-based header row of race result workbooks.
func WithRaceHeaderRow(row int) Option {
	return func(r *Reader) {
		if row >= 0 {
			r.raceHeaderRow = row
		}
	}
}

// WithSectionHeaderRow sets the zero-based header row of section workbooks.
func WithSectionHeaderRow(row int) Option {
	return func(r *Reader) {
		if row >= 0 {
			r.sectionHeaderRow = row
		}
	}
}
