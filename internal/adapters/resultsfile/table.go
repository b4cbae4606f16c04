package resultsfile

import (
	"fmt"
	"strings"
)

// Table is a rectangular grid of cell text under named columns.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Cell returns the trimmed value at column i of row, or "" when absent.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// tableFrom splits raw rows at headerRow into a Table.
func tableFrom(rows [][]string, headerRow int) (Table, error) {
	if len(rows) <= headerRow {
		return Table{}, fmt.Errorf("%w: row %d", ErrNoHeader, headerRow)
	}
	header := make([]string, len(rows[headerRow]))
	for i, h := range rows[headerRow] {
		header[i] = strings.TrimSpace(h)
	}
	return Table{Columns: header, Rows: rows[headerRow+1:]}, nil
}

func (t Table) index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

const footerMarker = "Powered by CrossMgr"

// column maps a source header to its display name.
type column struct {
	src, display string
}

// sectionColumns lists the published result columns in display order.
var sectionColumns = func() []column {
	cols := []column{
		{"Pos", "Position"},
		{"Position", "Position"},
		{"Last Name", "Last Name"},
		{"Surname", "Last Name"},
		{"First Name", "First Name"},
		{"Forename", "First Name"},
		{"Team", "Team"},
		{"Club", "Team"},
		{"Category", "Category"},
		{"Time", "Time"},
		{"Gap", "Gap"},
	}
	for i := 1; i < 20; i++ {
		lap := fmt.Sprintf("Lap %d", i)
		cols = append(cols, column{lap, lap})
	}
	return cols
}()

// Clean prepares a results export for publishing: footer rows and licence
// columns are dropped, known columns are kept and renamed, and empty rows
// are removed. The returned table has no columns when nothing is publishable.
func Clean(t Table) Table {
	licence := make(map[int]bool)
	for i, c := range t.Columns {
		if strings.Contains(strings.ToLower(c), "licen") {
			licence[i] = true
		}
	}

	var keep []int
	var out Table
	seen := make(map[string]bool)
	for _, col := range sectionColumns {
		i := t.index(col.src)
		if i < 0 || licence[i] || seen[col.src] {
			continue
		}
		seen[col.src] = true
		keep = append(keep, i)
		out.Columns = append(out.Columns, col.display)
	}
	if len(keep) == 0 {
		return Table{}
	}

	for _, row := range t.Rows {
		if isFooter(row) {
			continue
		}
		cells := make([]string, len(keep))
		empty := true
		for j, i := range keep {
			cells[j] = Cell(row, i)
			if cells[j] != "" {
				empty = false
			}
		}
		if !empty {
			out.Rows = append(out.Rows, cells)
		}
	}
	return out
}

func isFooter(row []string) bool {
	for _, c := range row {
		if strings.Contains(c, footerMarker) {
			return true
		}
	}
	return false
}
