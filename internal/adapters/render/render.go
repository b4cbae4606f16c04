// Package render produces the HTML fragments published by the site:
// category standings, team standings and round result sections.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"unicode/utf8"

	"github.com/eastkentcx/ekcx/internal/adapters/resultsfile"
	"github.com/eastkentcx/ekcx/internal/domain/model"
	"github.com/eastkentcx/ekcx/internal/domain/names"
	"github.com/eastkentcx/ekcx/internal/domain/standings"
	"github.com/eastkentcx/ekcx/internal/domain/types"
)

// Team column sizing, in pixels.
const (
	pxPerChar    = 8
	minTeamWidth = 200
	maxTeamWidth = 400
)

//go:embed templates/*.html
var templateFS embed.FS

var tmpl = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type roundPoints struct {
	Raced bool
	Value int
}

type riderRow struct {
	Position  int
	Shaded    bool
	LastName  string
	FirstName string
	Team      string
	Category  string
	Gender    string
	Points    []roundPoints
	Total     int
	Counted   int
}

type categoryView struct {
	Title      string
	TeamWidth  int
	Youth      bool
	DropLowest bool
	Rounds     []int
	Rows       []riderRow
}

// Category renders one category's standings with a column per round up to rounds.
func Category(category string, list []model.RiderStanding, rounds int) (string, error) {
	v := categoryView{
		Title:      types.Title(category),
		Youth:      category == types.Youth,
		DropLowest: rounds >= standings.MinRoundsForDrop,
	}
	for r := 1; r <= rounds; r++ {
		v.Rounds = append(v.Rounds, r)
	}

	teams := make([]string, 0, len(list))
	for i, s := range list {
		teams = append(teams, s.Team)
		row := riderRow{
			Position:  i + 1,
			Shaded:    (i+1)%2 == 0,
			LastName:  s.LastName,
			FirstName: s.FirstName,
			Team:      s.Team,
			Category:  names.NormalizeCategory(s.Category),
			Gender:    s.Gender,
			Total:     s.TotalPoints,
			Counted:   s.PointsExclLowest,
		}
		for _, r := range v.Rounds {
			p, ok := s.PointsByRound[r]
			row.Points = append(row.Points, roundPoints{Raced: ok, Value: p})
		}
		v.Rows = append(v.Rows, row)
	}
	v.TeamWidth = TeamWidth(teams)

	return execute("category.html", v)
}

type teamRow struct {
	Position int
	Shaded   bool
	Team     string
	Points   []int
	Total    int
}

type teamsView struct {
	TeamWidth int
	Rows      []teamRow
}

// Teams renders the team standings table.
func Teams(list []model.TeamStanding) (string, error) {
	var v teamsView
	teams := make([]string, 0, len(list))
	for i, t := range list {
		teams = append(teams, t.Team)
		v.Rows = append(v.Rows, teamRow{
			Position: i + 1,
			Shaded:   (i+1)%2 == 0,
			Team:     t.Team,
			Points:   []int{t.Womens, t.Mens, t.U12, t.Youth, t.V40, t.V50},
			Total:    t.Total,
		})
	}
	v.TeamWidth = TeamWidth(teams)
	return execute("teams.html", v)
}

// Section renders a cleaned results table as an event-results-table.
func Section(t resultsfile.Table) (string, error) {
	return execute("section.html", t)
}

// TeamWidth sizes the team column for the longest name, clamped to 200-400px.
func TeamWidth(teams []string) int {
	longest := 0
	for _, t := range teams {
		longest = max(longest, utf8.RuneCountInString(t))
	}
	if longest == 0 {
		return minTeamWidth
	}
	return max(minTeamWidth, min(longest*pxPerChar, maxTeamWidth))
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
