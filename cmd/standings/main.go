// Command standings builds the league output offline: category and team
// standings, per-round result sections, and the round-completed workflow.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/pflag"

	"github.com/eastkentcx/ekcx/internal/adapters/calendar"
	"github.com/eastkentcx/ekcx/internal/adapters/repository"
	"github.com/eastkentcx/ekcx/internal/config"
	"github.com/eastkentcx/ekcx/internal/generator"
	"github.com/eastkentcx/ekcx/pkg/logger"
)

var errUsage = errors.New("usage error")

// command is one subcommand of the tool.
type command struct {
	name    string
	summary string
	usage   string
	run     func(ctx context.Context, env *environment, args []string) error
}

var commands = []command{
	{
		name:    "standings",
		summary: "Compute category and team standings for a season",
		usage:   "standings standings [--year YEAR]",
		run:     runStandings,
	},
	{
		name:    "results",
		summary: "Rebuild result sections for every <year>/<round> directory",
		usage:   "standings results",
		run:     runResults,
	},
	{
		name:    "update-round",
		summary: "Mark a round completed and regenerate its result sections",
		usage:   "standings update-round --year YEAR --round ROUND [--photos URL]",
		run:     runUpdateRound,
	},
}

// environment carries the shared flags and output of a run.
type environment struct {
	cfg    config.SiteConfig
	stdout io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printHelp(stdout)
		return nil
	}

	for _, c := range commands {
		if c.name == args[0] {
			return c.run(ctx, &environment{cfg: cfg.Site, stdout: stdout}, args[1:])
		}
	}
	printHelp(os.Stderr)
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}

// flagSet returns a FlagSet carrying the path flags every command accepts.
func (e *environment) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&e.cfg.ResultsDir, "results-dir", e.cfg.ResultsDir, "directory of <year>/<round>/ result files")
	fs.StringVar(&e.cfg.StandingsDir, "standings-dir", e.cfg.StandingsDir, "output directory for standings fragments")
	fs.StringVar(&e.cfg.ResultsStore, "store", e.cfg.ResultsStore, "results store backend: json or sqlite")
	fs.StringVar(&e.cfg.ResultsJSON, "results-json", e.cfg.ResultsJSON, "path of the JSON results store")
	fs.StringVar(&e.cfg.SQLitePath, "sqlite-path", e.cfg.SQLitePath, "path of the SQLite results store")
	fs.StringVar(&e.cfg.CalendarFile, "calendar", e.cfg.CalendarFile, "YAML event calendar")
	return fs
}

func parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument: %s", errUsage, fs.Arg(0))
	}
	return nil
}

// open builds a generator over the configured store and calendar. The
// returned func closes the store.
func (e *environment) open() (*generator.Generator, func(), error) {
	path := e.cfg.ResultsJSON
	if e.cfg.ResultsStore == repository.BackendSQLite {
		path = e.cfg.SQLitePath
	}
	store, err := repository.New(e.cfg.ResultsStore, path)
	if err != nil {
		return nil, nil, err
	}
	cal, err := calendar.Load(e.cfg.CalendarFile)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	gen := generator.New(generator.Paths{
		ResultsDir:   e.cfg.ResultsDir,
		StandingsDir: e.cfg.StandingsDir,
	}, store, cal)
	return gen, func() { _ = store.Close() }, nil
}

func runStandings(ctx context.Context, e *environment, args []string) error {
	year := e.cfg.Season
	fs := e.flagSet("standings")
	fs.IntVar(&year, "year", year, "season to compute")
	if err := parse(fs, args); err != nil {
		return err
	}

	gen, closeFn, err := e.open()
	if err != nil {
		return err
	}
	defer closeFn()

	summary, err := gen.GenerateStandings(ctx, year)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.stdout, "Standings for %d\n", summary.Year)
	categories := make([]string, 0, len(summary.RidersByCategory))
	for category := range summary.RidersByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Fprintf(e.stdout, "  %-10s %d riders\n", category, summary.RidersByCategory[category])
	}
	fmt.Fprintf(e.stdout, "  %-10s %d teams\n", "teams", summary.Teams)
	fmt.Fprintf(e.stdout, "Normalizations: %d riders, %d teams\n", summary.RiderNormalizations, summary.TeamNormalizations)
	return nil
}

func runResults(ctx context.Context, e *environment, args []string) error {
	if err := parse(e.flagSet("results"), args); err != nil {
		return err
	}

	gen, closeFn, err := e.open()
	if err != nil {
		return err
	}
	defer closeFn()

	rounds, err := gen.GenerateResults(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Result sections stored for %d rounds\n", rounds)
	return nil
}

func runUpdateRound(ctx context.Context, e *environment, args []string) error {
	var year, round int
	var photos string
	fs := e.flagSet("update-round")
	fs.IntVar(&year, "year", 0, "season of the round")
	fs.IntVar(&round, "round", 0, "round number")
	fs.StringVar(&photos, "photos", "", "photos link for the event page")
	if err := parse(fs, args); err != nil {
		return err
	}
	if year <= 0 || round <= 0 {
		return fmt.Errorf("%w: --year and --round are required", errUsage)
	}
	if e.cfg.CalendarFile == "" {
		return fmt.Errorf("%w: --calendar is required to save the round", errUsage)
	}

	gen, closeFn, err := e.open()
	if err != nil {
		return err
	}
	defer closeFn()

	err = gen.UpdateRound(ctx, year, round, photos)
	if errors.Is(err, generator.ErrNoSections) {
		// The calendar was saved; only the results are missing so far.
		fmt.Fprintf(e.stdout, "Round %d of %d marked completed; no result sections yet\n", round, year)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Round %d of %d marked completed and results regenerated\n", round, year)
	return nil
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, "Build league standings and result sections.\n\nUsage:\n  standings <command> [flags]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-14s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nCommon flags:\n")
	e := &environment{cfg: config.New().Site}
	fmt.Fprint(w, e.flagSet("standings").FlagUsages())
}
