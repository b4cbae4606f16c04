package types_test

import (
	"testing"

	types "github.com/eastkentcx/ekcx/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCategoryFromFilename(t *testing.T) {
	Convey("Given race result file names", t, func() {
		Convey("When the file is an elite female race", func() {
			So(types.CategoryFromFilename("Elite Female-r4-.xlsx"), ShouldEqual, types.Womens)
			So(types.CategoryFromFilename("Elite Women-r4-.xlsx"), ShouldEqual, types.Womens)
			So(types.CategoryFromFilename("EKCX 2025 Elite Female-r4-.xlsx"), ShouldEqual, types.Womens)
		})

		Convey("When the file is an elite or senior open race", func() {
			So(types.CategoryFromFilename("Elite Open-r5-.xlsx"), ShouldEqual, types.Mens)
			So(types.CategoryFromFilename("Senior Open-r5-.xlsx"), ShouldEqual, types.Mens)
			So(types.CategoryFromFilename("EKCX 2025 Elite Open-r5-.xlsx"), ShouldEqual, types.Mens)
		})

		Convey("When the file is an under 12 race", func() {
			So(types.CategoryFromFilename("Under 12-r1-.xlsx"), ShouldEqual, types.U12)
			So(types.CategoryFromFilename("U12-r1-.xlsx"), ShouldEqual, types.U12)
			So(types.CategoryFromFilename("EKCX 2025 Under 12-r1-.xlsx"), ShouldEqual, types.U12)
		})

		Convey("When the file is an under 16 race", func() {
			So(types.CategoryFromFilename("Under 16-r2-.xlsx"), ShouldEqual, types.Youth)
			So(types.CategoryFromFilename("U16-r2-.xlsx"), ShouldEqual, types.Youth)
			So(types.CategoryFromFilename("EKCX 2025 Under 16-r2-.xlsx"), ShouldEqual, types.Youth)
		})

		Convey("When the file is a veteran race", func() {
			So(types.CategoryFromFilename("V40 Open-r3-.xlsx"), ShouldEqual, types.V40)
			So(types.CategoryFromFilename("M40 Open-r3-.xlsx"), ShouldEqual, types.V40)
			So(types.CategoryFromFilename("V50 Open-r6-.xlsx"), ShouldEqual, types.V50)
			So(types.CategoryFromFilename("M50 Open-r6-.xlsx"), ShouldEqual, types.V50)
		})

		Convey("When the file names no category", func() {
			So(types.CategoryFromFilename("Unknown Category.xlsx"), ShouldEqual, types.Unknown)
			So(types.CategoryFromFilename("random.xlsx"), ShouldEqual, types.Unknown)
		})
	})
}

func TestTitles(t *testing.T) {
	Convey("Given league categories", t, func() {
		Convey("Then titles should match the published tables", func() {
			So(types.Title(types.Mens), ShouldEqual, "Senior Open")
			So(types.Title(types.Womens), ShouldEqual, "Women")
			So(types.Title(types.Youth), ShouldEqual, "Youth U16/U14")
			So(types.Title(types.U12), ShouldEqual, "Under 12")
			So(types.Title(types.V40), ShouldEqual, "Veteran 40 Open")
			So(types.Title(types.V50), ShouldEqual, "Veteran 50 Open")
			So(types.Title("juniors"), ShouldEqual, "juniors")
		})

		Convey("Then section titles should come from file names", func() {
			So(types.SectionTitle("results/2025/1/Elite Female-r1-.csv"), ShouldEqual, "Women")
			So(types.SectionTitle("Fun Ride.xlsx"), ShouldEqual, "Fun Ride")
		})

		Convey("Then only league categories should be valid", func() {
			So(types.Valid(types.V50), ShouldBeTrue)
			So(types.Valid(types.Teams), ShouldBeFalse)
			So(types.Valid(types.Unknown), ShouldBeFalse)
		})
	})
}
