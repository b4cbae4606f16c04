package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eastkentcx/ekcx/internal/domain/model"
	"github.com/eastkentcx/ekcx/pkg/logger"

	_ "modernc.org/sqlite" // SQLite driver
)

const sqliteBusyTimeoutMS = 5000

// SQLiteStore keeps one row per round with the sections as a JSON array.
type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger

	saveStmt   *sql.Stmt
	loadStmt   *sql.Stmt
	roundsStmt *sql.Stmt
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite path cannot be empty", ErrStore)
	}
	o := newOptions(opts)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, jsonDirPerm); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStore, err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, sqliteBusyTimeoutMS)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", ErrStore, err)
	}
	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db, logger: o.logger}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: initialize schema: %w", ErrStore, err)
	}
	if err := s.prepareStatements(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS round_sections (
		year INTEGER NOT NULL,
		round INTEGER NOT NULL,
		sections TEXT NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (unixepoch()),
		PRIMARY KEY (year, round)
	);
	`)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO round_sections (year, round, sections, updated_at)
		VALUES (?, ?, ?, unixepoch())
		ON CONFLICT (year, round) DO UPDATE SET
			sections = excluded.sections,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("%w: prepare save statement: %w", ErrStore, err)
	}

	s.loadStmt, err = s.db.Prepare(`SELECT sections FROM round_sections WHERE year = ? AND round = ?`)
	if err != nil {
		return fmt.Errorf("%w: prepare load statement: %w", ErrStore, err)
	}

	s.roundsStmt, err = s.db.Prepare(`SELECT round FROM round_sections WHERE year = ? ORDER BY round`)
	if err != nil {
		return fmt.Errorf("%w: prepare rounds statement: %w", ErrStore, err)
	}
	return nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, year, round int, sections []model.Section) error {
	if err := validKey(year, round); err != nil {
		return err
	}
	if sections == nil {
		sections = []model.Section{}
	}
	data, err := json.Marshal(sections)
	if err != nil {
		return fmt.Errorf("%w: encode sections: %w", ErrStore, err)
	}
	if _, err := s.saveStmt.ExecContext(ctx, year, round, string(data)); err != nil {
		return fmt.Errorf("%w: save %d/%d: %w", ErrStore, year, round, err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, year, round int) ([]model.Section, error) {
	if err := validKey(year, round); err != nil {
		return nil, err
	}
	var data string
	err := s.loadStmt.QueryRowContext(ctx, year, round).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return []model.Section{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load %d/%d: %w", ErrStore, year, round, err)
	}

	sections := []model.Section{}
	if err := json.Unmarshal([]byte(data), &sections); err != nil {
		s.logger.Warn(ctx, "stored sections are not valid JSON, treating as empty",
			logger.Int("year", year), logger.Int("round", round), logger.Error(err))
		return []model.Section{}, nil
	}
	return sections, nil
}

// Rounds implements Store.
func (s *SQLiteStore) Rounds(ctx context.Context, year int) ([]int, error) {
	rows, err := s.roundsStmt.QueryContext(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("%w: list rounds: %w", ErrStore, err)
	}
	defer rows.Close()

	var rounds []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("%w: scan round: %w", ErrStore, err)
		}
		rounds = append(rounds, r)
	}
	return rounds, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.saveStmt, s.loadStmt, s.roundsStmt} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	return s.db.Close()
}
