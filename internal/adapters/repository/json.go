package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/eastkentcx/ekcx/internal/domain/model"
	"github.com/eastkentcx/ekcx/pkg/logger"
)

const (
	jsonDirPerm  = 0o755
	jsonFilePerm = 0o644
)

// document is the on-disk layout: {"<year>": {"<round>": [sections]}}.
type document map[string]map[string][]model.Section

// JSONStore keeps every round in a single indented JSON file.
type JSONStore struct {
	path   string
	mu     sync.RWMutex
	logger logger.Logger
}

// NewJSONStore returns a store backed by the file at path. The file is created on first Save.
func NewJSONStore(path string, opts ...Option) *JSONStore {
	o := newOptions(opts)
	return &JSONStore{path: path, logger: o.logger}
}

// Save implements Store.
func (s *JSONStore) Save(ctx context.Context, year, round int, sections []model.Section) error {
	if err := validKey(year, round); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read(ctx)
	y := strconv.Itoa(year)
	if doc[y] == nil {
		doc[y] = map[string][]model.Section{}
	}
	if sections == nil {
		sections = []model.Section{}
	}
	doc[y][strconv.Itoa(round)] = sections
	return s.write(doc)
}

// Load implements Store.
func (s *JSONStore) Load(ctx context.Context, year, round int) ([]model.Section, error) {
	if err := validKey(year, round); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sections := s.read(ctx)[strconv.Itoa(year)][strconv.Itoa(round)]
	if sections == nil {
		return []model.Section{}, nil
	}
	return sections, nil
}

// Rounds implements Store.
func (s *JSONStore) Rounds(ctx context.Context, year int) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rounds []int
	for key := range s.read(ctx)[strconv.Itoa(year)] {
		if r, err := strconv.Atoi(key); err == nil {
			rounds = append(rounds, r)
		}
	}
	sort.Ints(rounds)
	return rounds, nil
}

// Close implements Store.
func (s *JSONStore) Close() error { return nil }

// read loads the document. A missing or unreadable file counts as empty.
func (s *JSONStore) read(ctx context.Context) document {
	doc := document{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn(ctx, "results file unreadable, treating as empty", logger.String("path", s.path), logger.Error(err))
		}
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn(ctx, "results file is not valid JSON, treating as empty", logger.String("path", s.path), logger.Error(err))
		return document{}
	}
	return doc
}

func (s *JSONStore) write(doc document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// Section HTML must stay readable in the file.
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("%w: encode: %w", ErrStore, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), jsonDirPerm); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), jsonFilePerm); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}
