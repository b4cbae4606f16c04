// Package generator builds the published league output: standings
// fragments per category, team standings and per-round result sections.
package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/eastkentcx/ekcx/internal/adapters/calendar"
	"github.com/eastkentcx/ekcx/internal/adapters/render"
	"github.com/eastkentcx/ekcx/internal/adapters/repository"
	"github.com/eastkentcx/ekcx/internal/adapters/resultsfile"
	"github.com/eastkentcx/ekcx/internal/domain/dedupe"
	"github.com/eastkentcx/ekcx/internal/domain/model"
	"github.com/eastkentcx/ekcx/internal/domain/standings"
	"github.com/eastkentcx/ekcx/internal/domain/types"
	"github.com/eastkentcx/ekcx/pkg/logger"
	"github.com/eastkentcx/ekcx/pkg/metrics"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Job names used in metrics.
const (
	JobStandings = "standings"
	JobResults   = "results"
	JobRound     = "round"
)

// Paths locates the generator's inputs and outputs.
type Paths struct {
	// ResultsDir holds <year>/<round>/ result files.
	ResultsDir string
	// StandingsDir receives <year>/<category>.html.
	StandingsDir string
}

// Generator is safe for concurrent use, though runs are expected to be
// serialized by the caller.
type Generator struct {
	paths      Paths
	store      repository.Store
	calendar   *calendar.Calendar
	reader     *resultsfile.Reader
	normalizer *dedupe.Normalizer
	logger     logger.Logger

	mu      sync.RWMutex
	summary *model.Summary
}

// New creates a Generator. cal may be nil when round updates are not needed.
func New(paths Paths, store repository.Store, cal *calendar.Calendar, opts ...Option) *Generator {
	g := &Generator{
		paths:    paths,
		store:    store,
		calendar: cal,
		logger:   logger.Get().Named("generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.reader == nil {
		g.reader = resultsfile.NewReader(resultsfile.WithLogger(g.logger))
	}
	if g.normalizer == nil {
		g.normalizer = dedupe.NewNormalizer(dedupe.WithLogger(g.logger))
	}
	return g
}

// GenerateStandings recomputes and writes the standings of one season.
func (g *Generator) GenerateStandings(ctx context.Context, year int) (summary model.Summary, err error) {
	start := time.Now()
	defer func() { metrics.RecordGeneration(JobStandings, err == nil, time.Since(start)) }()

	results, err := g.reader.Collect(ctx, filepath.Join(g.paths.ResultsDir, strconv.Itoa(year)))
	if err != nil {
		return model.Summary{}, fmt.Errorf("collect %d results: %w", year, err)
	}
	if len(results) == 0 {
		return model.Summary{}, fmt.Errorf("%w for %d", ErrNoResults, year)
	}

	norms := g.normalizer.Normalize(ctx, results)
	metrics.RecordNormalizations("rider", len(norms.Riders))
	metrics.RecordNormalizations("team", len(norms.Teams))

	byCategory := standings.Calculate(results)
	rounds := standings.MaxRound(results)
	teams := standings.CalculateTeams(byCategory)

	outDir := filepath.Join(g.paths.StandingsDir, strconv.Itoa(year))
	if err := os.MkdirAll(outDir, dirPerm); err != nil {
		return model.Summary{}, fmt.Errorf("create %s: %w", outDir, err)
	}

	summary = model.Summary{
		Year:                year,
		Categories:          len(byCategory),
		Teams:               len(teams),
		RiderNormalizations: len(norms.Riders),
		TeamNormalizations:  len(norms.Teams),
		RidersByCategory:    make(map[string]int, len(byCategory)),
	}
	for category, list := range byCategory {
		html, err := render.Category(category, list, rounds)
		if err != nil {
			return model.Summary{}, err
		}
		if err := writeFile(StandingsPath(g.paths.StandingsDir, year, category), html); err != nil {
			return model.Summary{}, err
		}
		summary.Riders += len(list)
		summary.RidersByCategory[category] = len(list)
		metrics.UpdateStandingsRiders(category, len(list))
		g.logger.Debug(ctx, "wrote category standings",
			logger.String("category", category), logger.Int("riders", len(list)))
	}

	html, err := render.Teams(teams)
	if err != nil {
		return model.Summary{}, err
	}
	if err := writeFile(StandingsPath(g.paths.StandingsDir, year, types.Teams), html); err != nil {
		return model.Summary{}, err
	}
	metrics.UpdateStandingsTeams(len(teams))

	g.mu.Lock()
	if g.summary != nil && g.summary.Year == year {
		summary.ResultSectionsRounds = g.summary.ResultSectionsRounds
	}
	g.summary = &summary
	g.mu.Unlock()

	g.logger.Info(ctx, "standings generated",
		logger.Int("year", year),
		logger.Int("categories", summary.Categories),
		logger.Int("riders", summary.Riders),
		logger.Int("teams", summary.Teams),
		logger.Int("rider_normalizations", summary.RiderNormalizations),
		logger.Int("team_normalizations", summary.TeamNormalizations),
		logger.Duration("took", time.Since(start)),
	)
	return summary, nil
}

// GenerateResults rebuilds the result sections of every <year>/<round>
// directory and returns the number of rounds stored.
func (g *Generator) GenerateResults(ctx context.Context) (rounds int, err error) {
	start := time.Now()
	defer func() { metrics.RecordGeneration(JobResults, err == nil, time.Since(start)) }()

	years, err := resultsfile.RoundDirs(g.paths.ResultsDir)
	if err != nil {
		return 0, err
	}
	if len(years) == 0 {
		g.logger.Info(ctx, "no year directories under results; nothing to generate",
			logger.String("dir", g.paths.ResultsDir))
		return 0, nil
	}

	sections := 0
	for _, year := range years {
		n, err := g.generateYear(ctx, year)
		if err != nil {
			return rounds, err
		}
		rounds += n.rounds
		sections += n.sections
	}
	g.logger.Info(ctx, "result sections generated",
		logger.Int("years", len(years)),
		logger.Int("rounds", rounds),
		logger.Int("sections", sections),
	)
	return rounds, nil
}

type counts struct{ rounds, sections int }

func (g *Generator) generateYear(ctx context.Context, year int) (counts, error) {
	roundDirs, err := resultsfile.RoundDirs(filepath.Join(g.paths.ResultsDir, strconv.Itoa(year)))
	if err != nil {
		return counts{}, err
	}
	var c counts
	for _, round := range roundDirs {
		n, err := g.generateRound(ctx, year, round)
		if err != nil {
			return c, err
		}
		c.rounds++
		c.sections += n
	}

	g.mu.Lock()
	if g.summary != nil && g.summary.Year == year {
		g.summary.ResultSectionsRounds = c.rounds
	}
	g.mu.Unlock()
	return c, nil
}

// GenerateRound rebuilds and stores the result sections of one round.
func (g *Generator) GenerateRound(ctx context.Context, year, round int) (n int, err error) {
	start := time.Now()
	defer func() { metrics.RecordGeneration(JobRound, err == nil, time.Since(start)) }()
	return g.generateRound(ctx, year, round)
}

func (g *Generator) generateRound(ctx context.Context, year, round int) (int, error) {
	dir := filepath.Join(g.paths.ResultsDir, strconv.Itoa(year), strconv.Itoa(round))
	tables, err := g.reader.Sections(ctx, dir)
	if err != nil {
		return 0, err
	}

	sections := make([]model.Section, 0, len(tables))
	for _, t := range tables {
		html, err := render.Section(t.Table)
		if err != nil {
			return 0, err
		}
		sections = append(sections, model.Section{Title: t.Title, HTML: html})
	}
	if err := g.store.Save(ctx, year, round, sections); err != nil {
		return 0, fmt.Errorf("save %d round %d: %w", year, round, err)
	}
	g.logger.Info(ctx, "saved result sections",
		logger.Int("year", year), logger.Int("round", round), logger.Int("sections", len(sections)))
	return len(sections), nil
}

// UpdateRound marks a round completed in the calendar, optionally sets its
// photos link, and regenerates the round's result sections. The calendar is
// saved even when no sections exist, in which case ErrNoSections is returned.
func (g *Generator) UpdateRound(ctx context.Context, year, round int, photosURL string) error {
	if g.calendar == nil {
		return fmt.Errorf("update round: %w", calendar.ErrNoFile)
	}
	already, err := g.calendar.Complete(year, round, photosURL)
	if err != nil {
		return err
	}
	if already {
		g.logger.Info(ctx, "round already marked as completed", logger.Int("year", year), logger.Int("round", round))
	}
	if err := g.calendar.Save(); err != nil {
		return fmt.Errorf("save calendar: %w", err)
	}
	g.logger.Info(ctx, "calendar updated",
		logger.Int("year", year), logger.Int("round", round), logger.String("photos_url", photosURL))

	dir := filepath.Join(g.paths.ResultsDir, strconv.Itoa(year), strconv.Itoa(round))
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		g.logger.Warn(ctx, "results directory does not exist", logger.String("dir", dir))
		return fmt.Errorf("%w: %s", ErrNoSections, dir)
	}

	n, err := g.GenerateRound(ctx, year, round)
	if err != nil {
		return err
	}
	if n == 0 {
		g.logger.Warn(ctx, "no results sections generated", logger.Int("year", year), logger.Int("round", round))
		return fmt.Errorf("%w: %d round %d", ErrNoSections, year, round)
	}
	return nil
}

// Regenerate rebuilds the standings and result sections of a season.
// A season without results is not an error.
func (g *Generator) Regenerate(ctx context.Context, year int) error {
	if _, err := g.GenerateStandings(ctx, year); err != nil {
		if !errors.Is(err, ErrNoResults) {
			return err
		}
		g.logger.Info(ctx, "no race results yet", logger.Int("year", year))
	}
	_, err := g.generateYear(ctx, year)
	return err
}

// Summary returns the last standings run, if any.
func (g *Generator) Summary() (model.Summary, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.summary == nil {
		return model.Summary{}, false
	}
	return *g.summary, true
}

// StandingsPath returns the fragment path for a season category, or teams.
func (g *Generator) StandingsPath(year int, category string) string {
	return StandingsPath(g.paths.StandingsDir, year, category)
}

// StandingsPath returns <dir>/<year>/<category>.html. The team table is
// published under the category name "teams".
func StandingsPath(dir string, year int, category string) string {
	return filepath.Join(dir, strconv.Itoa(year), category+".html")
}

// writeFile replaces path atomically so the site never serves a partial fragment.
func writeFile(path, content string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), filePerm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
