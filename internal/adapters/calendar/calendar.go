// Package calendar loads and updates the league event calendar.
//
// The calendar is a YAML document keyed by year then round. Without a
// configured file the built-in season is served read-only.
package calendar

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/eastkentcx/ekcx/internal/domain/model"
)

//go:embed default.yaml
var defaultSeason []byte

const filePerm = 0o644

type document map[int]map[int]model.Event

// Calendar is safe for concurrent use.
type Calendar struct {
	path string

	mu     sync.RWMutex
	events document
}

// Load reads the calendar at path, or the built-in season when path is empty.
func Load(path string) (*Calendar, error) {
	c := &Calendar{path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the backing file.
func (c *Calendar) Reload() error {
	data := defaultSeason
	if c.path != "" {
		b, err := os.ReadFile(c.path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrParse, err)
		}
		data = b
	}

	doc := document{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	for year, rounds := range doc {
		for round, ev := range rounds {
			ev.Year, ev.Round = year, round
			if ev.Status == "" {
				ev.Status = model.StatusUpcoming
			}
			rounds[round] = ev
		}
	}

	c.mu.Lock()
	c.events = doc
	c.mu.Unlock()
	return nil
}

// Path returns the backing file, empty for the built-in season.
func (c *Calendar) Path() string { return c.path }

// Get returns one event.
func (c *Calendar) Get(year, round int) (model.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ev, ok := c.events[year][round]
	if !ok {
		return model.Event{}, fmt.Errorf("%w: %d round %d", ErrEventNotFound, year, round)
	}
	return ev, nil
}

// Years lists the calendar years, most recent first.
func (c *Calendar) Years() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	years := make([]int, 0, len(c.events))
	for y := range c.events {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// Rounds returns the events of a year in round order.
func (c *Calendar) Rounds(year int) []model.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Event, 0, len(c.events[year]))
	for _, ev := range c.events[year] {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Round < out[j].Round })
	return out
}

// Complete marks a round as raced. A non-empty photosURL is set or replaced.
// It reports whether the round was already completed.
func (c *Calendar) Complete(year, round int, photosURL string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev, ok := c.events[year][round]
	if !ok {
		return false, fmt.Errorf("%w: %d round %d", ErrEventNotFound, year, round)
	}
	already := ev.Completed()
	ev.Status = model.StatusCompleted
	if photosURL != "" {
		ev.PhotosURL = photosURL
	}
	c.events[year][round] = ev
	return already, nil
}

// Save writes the calendar back to its file.
func (c *Calendar) Save() error {
	if c.path == "" {
		return ErrNoFile
	}
	c.mu.RLock()
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	err := enc.Encode(c.events)
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}

	tmp := filepath.Join(filepath.Dir(c.path), "."+filepath.Base(c.path)+".tmp")
	if err := os.WriteFile(tmp, buf.Bytes(), filePerm); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

// Default returns the built-in season document, for seeding a calendar file.
func Default() []byte {
	return bytes.Clone(defaultSeason)
}
