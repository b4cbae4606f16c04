package resultsfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/eastkentcx/ekcx/internal/domain/model"
	"github.com/eastkentcx/ekcx/internal/domain/names"
	"github.com/eastkentcx/ekcx/internal/domain/scoring"
	"github.com/eastkentcx/ekcx/internal/domain/types"
	"github.com/eastkentcx/ekcx/pkg/logger"
	"github.com/eastkentcx/ekcx/pkg/metrics"
)

// Default header rows of the timing software exports.
const (
	defaultRaceHeaderRow    = 4
	defaultSectionHeaderRow = 5
)

// raceColumns are the race sheet columns, in sheet order.
var raceColumns = []string{"Pos", "Bib", "Last Name", "First Name", "Team", "Category", "Gender"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader parses result files from the results directory tree.
type Reader struct {
	raceHeaderRow    int
	sectionHeaderRow int
	logger           logger.Logger
}

// NewReader creates a Reader with configuration options.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		raceHeaderRow:    defaultRaceHeaderRow,
		sectionHeaderRow: defaultSectionHeaderRow,
		logger:           logger.Get().Named("resultsfile"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RaceRow is one classified finisher of a race sheet.
type RaceRow struct {
	Pos       int
	Bib       string
	LastName  string
	FirstName string
	Team      string
	Category  string
	Gender    string
}

// ReadRace parses a race result workbook. Unclassified riders (DNF, DNS)
// are dropped. A sheet without header names is mapped by column position.
func (r *Reader) ReadRace(path string) ([]RaceRow, error) {
	rows, err := readWorkbook(path)
	if err != nil {
		return nil, err
	}
	t, err := tableFrom(rows, r.raceHeaderRow)
	if err != nil {
		return nil, err
	}

	idx := make([]int, len(raceColumns))
	if Cell(t.Columns, 0) == "" {
		for i := range raceColumns {
			idx[i] = i
		}
	} else {
		var missing []string
		for i, name := range raceColumns {
			idx[i] = t.index(name)
			if idx[i] < 0 {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
		}
	}

	var out []RaceRow
	for _, row := range t.Rows {
		pos := Cell(row, idx[0])
		if !isDigits(pos) {
			continue
		}
		n, err := strconv.Atoi(pos)
		if err != nil {
			continue
		}
		out = append(out, RaceRow{
			Pos:       n,
			Bib:       Cell(row, idx[1]),
			LastName:  Cell(row, idx[2]),
			FirstName: Cell(row, idx[3]),
			Team:      Cell(row, idx[4]),
			Category:  Cell(row, idx[5]),
			Gender:    Cell(row, idx[6]),
		})
	}
	return out, nil
}

// Collect reads every race workbook under dir/<round>/ for numeric round
// directories. Files whose name identifies no league category, and files
// that fail to parse, are skipped with a warning.
func (r *Reader) Collect(ctx context.Context, dir string) (model.Results, error) {
	rounds, err := RoundDirs(dir)
	if err != nil {
		return nil, err
	}

	out := model.Results{}
	for _, round := range rounds {
		files, err := filepath.Glob(filepath.Join(dir, strconv.Itoa(round), "*.xlsx"))
		if err != nil {
			return nil, fmt.Errorf("list round %d: %w", round, err)
		}
		sort.Strings(files)
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			category := types.CategoryFromFilename(filepath.Base(f))
			if category == types.Unknown {
				r.logger.Warn(ctx, "could not determine category", logger.String("file", f))
				continue
			}
			rows, err := r.ReadRace(f)
			metrics.RecordFileParsed("race", err == nil)
			if err != nil {
				r.logger.Warn(ctx, "skipping race file", logger.String("file", f), logger.Error(err))
				continue
			}
			for _, row := range rows {
				out.Add(category, model.RaceResult{
					Round:     round,
					Position:  row.Pos,
					Points:    scoring.Points(row.Pos),
					LastName:  names.NormalizeLastName(row.LastName),
					FirstName: names.NormalizeFirstName(row.FirstName),
					Team:      row.Team,
					Category:  row.Category,
					Gender:    row.Gender,
				})
			}
		}
	}
	return out, nil
}

// TitledTable is a cleaned results table with its section title.
type TitledTable struct {
	Title string
	Table Table
}

// Sections reads every CSV and XLSX export in a round directory and returns
// the publishable tables in file-name order. A missing directory yields none.
func (r *Reader) Sections(ctx context.Context, dir string) ([]TitledTable, error) {
	var files []string
	for _, pattern := range []string{"*.csv", "*.CSV", "*.xlsx"} {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}
		files = append(files, m...)
	}
	sort.Strings(files)

	var out []TitledTable
	for _, f := range files {
		var (
			t   Table
			err error
		)
		if strings.EqualFold(filepath.Ext(f), ".csv") {
			t, err = readCSV(f)
		} else {
			var rows [][]string
			if rows, err = readWorkbook(f); err == nil {
				t, err = tableFrom(rows, r.sectionHeaderRow)
			}
		}
		metrics.RecordFileParsed("section", err == nil)
		if err != nil {
			r.logger.Warn(ctx, "skipping results file", logger.String("file", f), logger.Error(err))
			continue
		}
		t = Clean(t)
		if len(t.Columns) == 0 || len(t.Rows) == 0 {
			continue
		}
		out = append(out, TitledTable{Title: types.SectionTitle(f), Table: t})
	}
	return out, nil
}

// RoundDirs lists the numeric subdirectories of dir in ascending order.
func RoundDirs(dir string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var rounds []int
	for _, e := range entries {
		if !e.IsDir() || !isDigits(e.Name()) {
			continue
		}
		n, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		rounds = append(rounds, n)
	}
	sort.Ints(rounds)
	return rounds, nil
}

// readWorkbook returns the cell text of the first sheet.
func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptyWorkbook
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// readCSV parses a CSV export. Text is UTF-8 (a BOM is ignored) or,
// failing that, Latin-1.
func readCSV(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		if data, err = charmap.ISO8859_1.NewDecoder().Bytes(data); err != nil {
			return Table{}, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return tableFrom(rows, 0)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
