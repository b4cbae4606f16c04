package resultsfile

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClean(t *testing.T) {
	Convey("Given a raw results table", t, func() {
		raw := Table{
			Columns: []string{"Position", "Pos", "Licence No", "Surname", "Lap 2", "Notes"},
			Rows: [][]string{
				{"1", "1", "L1", "SMITH", "4:59", "x"},
				{"", "", "L2", "", "", "note only"},
				{"Powered by CrossMgr"},
			},
		}

		cleaned := Clean(raw)

		Convey("Then preferred columns should be kept in display order", func() {
			So(cleaned.Columns, ShouldResemble, []string{"Position", "Position", "Last Name", "Lap 2"})
		})

		Convey("Then empty and footer rows should be dropped", func() {
			So(cleaned.Rows, ShouldResemble, [][]string{{"1", "1", "SMITH", "4:59"}})
		})
	})

	Convey("Given a table without known columns", t, func() {
		cleaned := Clean(Table{Columns: []string{"Comment"}, Rows: [][]string{{"hi"}}})

		Convey("Then nothing should be publishable", func() {
			So(cleaned.Columns, ShouldBeEmpty)
		})
	})
}
