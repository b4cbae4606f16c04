// Package repository persists the rendered result sections of each round.
package repository

import (
	"context"
	"fmt"

	"github.com/eastkentcx/ekcx/internal/domain/model"
)

// Backend names accepted by New.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Store provides read/write access to result sections keyed by year and round.
type Store interface {
	// Save replaces the sections of a round.
	Save(ctx context.Context, year, round int, sections []model.Section) error

	// Load returns the sections of a round, or an empty list when none are stored.
	Load(ctx context.Context, year, round int) ([]model.Section, error)

	// Rounds lists the rounds with stored sections for a year, in ascending order.
	Rounds(ctx context.Context, year int) ([]int, error)

	Close() error
}

// New opens the backend named by kind at path.
func New(kind, path string, opts ...Option) (Store, error) {
	switch kind {
	case BackendJSON:
		return NewJSONStore(path, opts...), nil
	case BackendSQLite:
		return NewSQLiteStore(path, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
}

func validKey(year, round int) error {
	if year <= 0 || round <= 0 {
		return fmt.Errorf("%w: year=%d round=%d", ErrInvalidKey, year, round)
	}
	return nil
}
