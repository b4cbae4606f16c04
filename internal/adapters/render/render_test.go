package render_test

import (
	"strings"
	"testing"

	"github.com/eastkentcx/ekcx/internal/adapters/render"
	"github.com/eastkentcx/ekcx/internal/adapters/resultsfile"
	"github.com/eastkentcx/ekcx/internal/domain/model"
	"github.com/eastkentcx/ekcx/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func standingsFixture() []model.RiderStanding {
	return []model.RiderStanding{
		{LastName: "SMITH", FirstName: "John", Team: "Team A", Category: "Masters 40", Gender: "M",
			PointsByRound: map[int]int{1: 100, 3: 94}, TotalPoints: 194, PointsExclLowest: 194},
		{LastName: "O'NEIL", FirstName: "Amy", Team: "", Category: "Senior", Gender: "F",
			PointsByRound: map[int]int{2: 90}, TotalPoints: 90, PointsExclLowest: 90},
	}
}

func TestCategory(t *testing.T) {
	Convey("Given a category with three rounds", t, func() {
		html, err := render.Category(types.Mens, standingsFixture(), 3)

		Convey("Then the table should carry the title and drop-lowest column", func() {
			So(err, ShouldBeNil)
			So(html, ShouldContainSubstring, `<h1 class="western">Senior Open</h1>`)
			So(html, ShouldContainSubstring, "Points excluding lowest")
			So(html, ShouldNotContainSubstring, "<b>Gender</b>")
		})

		Convey("Then categories should be shortened and names escaped", func() {
			So(html, ShouldContainSubstring, ">Ma40<")
			So(html, ShouldContainSubstring, "O&#39;NEIL")
		})

		Convey("Then even rows should be shaded", func() {
			So(strings.Count(html, `<tr style="background: #CCCCCC;">`), ShouldEqual, 1)
		})
	})

	Convey("Given the youth category with two rounds", t, func() {
		html, err := render.Category(types.Youth, standingsFixture(), 2)

		Convey("Then the gender column should appear without drop-lowest", func() {
			So(err, ShouldBeNil)
			So(html, ShouldContainSubstring, "<b>Gender</b>")
			So(html, ShouldNotContainSubstring, "Points excluding lowest")
			So(html, ShouldContainSubstring, `<colgroup span="2" width="36"></colgroup>`)
		})
	})
}

func TestTeams(t *testing.T) {
	Convey("Given team standings", t, func() {
		html, err := render.Teams([]model.TeamStanding{
			{Team: "Team A", Mens: 100, V50: 94, Total: 194},
			{Team: "Team B", Womens: 90, Total: 90},
		})

		Convey("Then every team should be listed with totals", func() {
			So(err, ShouldBeNil)
			So(html, ShouldContainSubstring, "<h2>Teams</h2>")
			So(html, ShouldContainSubstring, "<b>194</b>")
			So(html, ShouldContainSubstring, "Team B")
		})
	})
}

func TestSection(t *testing.T) {
	Convey("Given a cleaned results table", t, func() {
		html, err := render.Section(resultsfile.Table{
			Columns: []string{"Position", "Last Name"},
			Rows:    [][]string{{"1", "<SMITH>"}},
		})

		Convey("Then it should render as an escaped event results table", func() {
			So(err, ShouldBeNil)
			So(html, ShouldContainSubstring, `class="dataframe event-results-table"`)
			So(html, ShouldContainSubstring, "<th>Last Name</th>")
			So(html, ShouldContainSubstring, "&lt;SMITH&gt;")
		})
	})
}

func TestTeamWidth(t *testing.T) {
	Convey("Given team names of different lengths", t, func() {
		So(render.TeamWidth(nil), ShouldEqual, 200)
		So(render.TeamWidth([]string{""}), ShouldEqual, 200)
		So(render.TeamWidth([]string{"Short"}), ShouldEqual, 200)
		So(render.TeamWidth([]string{strings.Repeat("x", 30)}), ShouldEqual, 240)
		So(render.TeamWidth([]string{strings.Repeat("x", 80)}), ShouldEqual, 400)
	})
}
