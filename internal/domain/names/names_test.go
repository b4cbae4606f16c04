package names_test

import (
	"testing"

	"github.com/eastkentcx/ekcx/internal/domain/model"
	"github.com/eastkentcx/ekcx/internal/domain/names"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given raw names from result sheets", t, func() {
		Convey("When normalizing surnames", func() {
			So(names.NormalizeLastName("John"), ShouldEqual, "JOHN")
			So(names.NormalizeLastName("  Mary  "), ShouldEqual, "MARY")
			So(names.NormalizeLastName("John  Paul"), ShouldEqual, "JOHN PAUL")
			So(names.NormalizeLastName(""), ShouldEqual, "")
			So(names.NormalizeLastName("   "), ShouldEqual, "")
		})

		Convey("When normalizing forenames", func() {
			So(names.NormalizeFirstName("jOHN"), ShouldEqual, "John")
			So(names.NormalizeFirstName("  mary   jane "), ShouldEqual, "Mary Jane")
			So(names.NormalizeFirstName("o'neil-ray"), ShouldEqual, "O'Neil-Ray")
			So(names.NormalizeFirstName("élodie"), ShouldEqual, "Élodie")
			So(names.NormalizeFirstName(""), ShouldEqual, "")
		})

		Convey("When normalizing categories", func() {
			So(names.NormalizeCategory("Masters 40"), ShouldEqual, "Ma40")
			So(names.NormalizeCategory("masters50"), ShouldEqual, "Ma50")
			So(names.NormalizeCategory("MASTERS 60 Open"), ShouldEqual, "Ma60")
			So(names.NormalizeCategory("  Senior "), ShouldEqual, "Senior")
			So(names.NormalizeCategory(""), ShouldEqual, "")
		})
	})
}

func TestLevenshtein(t *testing.T) {
	Convey("Given pairs of strings", t, func() {
		So(names.Levenshtein("hello", "hello"), ShouldEqual, 0)
		So(names.Levenshtein("", ""), ShouldEqual, 0)
		So(names.Levenshtein("cat", "bat"), ShouldEqual, 1)
		So(names.Levenshtein("cat", "cats"), ShouldEqual, 1)
		So(names.Levenshtein("cat", "at"), ShouldEqual, 1)
		So(names.Levenshtein("kitten", "sitting"), ShouldEqual, 3)
		So(names.Levenshtein("hello", "world"), ShouldEqual, 4)
		So(names.Levenshtein("", "hello"), ShouldEqual, 5)
		So(names.Levenshtein("hello", ""), ShouldEqual, 5)
	})
}

func TestSimilar(t *testing.T) {
	Convey("Given two forenames", t, func() {
		Convey("When they match ignoring case", func() {
			So(names.Similar("John", "John", true), ShouldBeTrue)
			So(names.Similar("Michael", "MICHAEL", true), ShouldBeTrue)
		})

		Convey("When they are known variations", func() {
			So(names.Similar("Michael", "Mike", true), ShouldBeTrue)
			So(names.Similar("Mike", "Michael", true), ShouldBeTrue)
			So(names.Similar("James", "Jim", false), ShouldBeTrue)
			So(names.Similar("Christopher", "Chris", false), ShouldBeTrue)
			So(names.Similar("Matthew", "Matt", false), ShouldBeTrue)
		})

		Convey("When they differ by a typo", func() {
			So(names.Similar("Richar", "Richad", true), ShouldBeTrue)
			So(names.Similar("Richar", "Richad", false), ShouldBeFalse)
			So(names.Similar("Mathew", "Matthew", true), ShouldBeFalse)
			So(names.Similar("Michal", "Michael", true), ShouldBeFalse)
		})

		Convey("When they are short", func() {
			So(names.Similar("PEN", "DEN", true), ShouldBeFalse)
			So(names.Similar("ABC", "XYZ", true), ShouldBeFalse)
		})

		Convey("When one is empty", func() {
			So(names.Similar("", "John", true), ShouldBeFalse)
			So(names.Similar("John", "", true), ShouldBeFalse)
		})
	})
}

func TestFindSimilarRiders(t *testing.T) {
	Convey("Given a list of riders", t, func() {
		Convey("When the surname matches and the forename is a variation", func() {
			similar := names.FindSimilarRiders([]model.Rider{{Last: "SMITH", First: "Michael"}, {Last: "SMITH", First: "Mike"}})
			So(similar, ShouldHaveLength, 1)
			So(similar[0], ShouldResemble, names.RiderPair{
				A: model.Rider{Last: "SMITH", First: "Michael"},
				B: model.Rider{Last: "SMITH", First: "Mike"},
			})
		})

		Convey("When the forename matches and the surname has a typo", func() {
			similar := names.FindSimilarRiders([]model.Rider{{Last: "MALIK", First: "Omar"}, {Last: "MALEK", First: "Omar"}})
			So(similar, ShouldHaveLength, 1)
		})

		Convey("When the riders are different people", func() {
			similar := names.FindSimilarRiders([]model.Rider{{Last: "SMITH", First: "John"}, {Last: "JONES", First: "Mary"}})
			So(similar, ShouldBeEmpty)
		})

		Convey("When the riders only differ by case", func() {
			similar := names.FindSimilarRiders([]model.Rider{{Last: "Smith", First: "John"}, {Last: "SMITH", First: "JOHN"}})
			So(similar, ShouldBeEmpty)
		})

		Convey("When both parts carry a single typo", func() {
			similar := names.FindSimilarRiders([]model.Rider{{Last: "HOPE", First: "Stevne"}, {Last: "POPE", First: "Steven"}})
			So(similar, ShouldHaveLength, 0)
			similar = names.FindSimilarRiders([]model.Rider{{Last: "HOPE", First: "Stevem"}, {Last: "POPE", First: "Steven"}})
			So(similar, ShouldHaveLength, 1)
		})

		Convey("When a part is missing", func() {
			similar := names.FindSimilarRiders([]model.Rider{{Last: "SMITH", First: ""}, {Last: "SMITH", First: "Mike"}})
			So(similar, ShouldBeEmpty)
		})
	})
}

func TestFindSimilarTeams(t *testing.T) {
	Convey("Given team names", t, func() {
		Convey("When a suffix is added", func() {
			similar := names.FindSimilarTeams([]string{"Kingston Wheelers CC", "Kingston Wheelers"})
			So(similar, ShouldResemble, []names.TeamPair{{A: "Kingston Wheelers", B: "Kingston Wheelers CC"}})
		})

		Convey("When teams are unrelated", func() {
			So(names.FindSimilarTeams([]string{"Team A Racing", "Velo Club Deal", ""}), ShouldBeEmpty)
		})

		Convey("Then the ratio should ignore case", func() {
			So(names.TeamRatio("velo club", "VELO CLUB"), ShouldEqual, 1.0)
		})
	})
}

func TestResolve(t *testing.T) {
	Convey("Given normalization chains", t, func() {
		Convey("When there is no normalization", func() {
			So(names.Resolve("John", map[string]string{}), ShouldEqual, "John")
		})

		Convey("When there is a single step", func() {
			So(names.Resolve("Mike", map[string]string{"Mike": "Michael"}), ShouldEqual, "Michael")
		})

		Convey("When there is a chain", func() {
			So(names.Resolve("Mike", map[string]string{"Mike": "Michael", "Michael": "MICHAEL"}), ShouldEqual, "MICHAEL")
		})

		Convey("When there is a cycle", func() {
			result := names.Resolve("Mike", map[string]string{"Mike": "Michael", "Michael": "Mike"})
			So(result, ShouldBeIn, []string{"Mike", "Michael"})
		})

		Convey("When resolving riders", func() {
			norms := map[model.Rider]model.Rider{
				{Last: "SMITH", First: "Mike"}:    {Last: "SMITH", First: "Michael"},
				{Last: "SMITH", First: "Michael"}: {Last: "SMITH", First: "MICHAEL"},
			}
			So(names.Resolve(model.Rider{Last: "SMITH", First: "Mike"}, norms), ShouldResemble, model.Rider{Last: "SMITH", First: "MICHAEL"})
		})
	})
}

func TestChooseTargets(t *testing.T) {
	Convey("Given two rider spellings", t, func() {
		john := model.Rider{Last: "SMITH", First: "John"}
		jon := model.Rider{Last: "SMITH", First: "Jon"}
		jonathan := model.Rider{Last: "SMITH", First: "Jonathan"}
		jones := model.Rider{Last: "JONES", First: "John"}

		So(names.ChooseRider(john, jon, map[model.Rider]int{john: 5, jon: 2}), ShouldResemble, john)
		So(names.ChooseRider(john, jonathan, map[model.Rider]int{john: 3, jonathan: 3}), ShouldResemble, jonathan)
		So(names.ChooseRider(john, jones, map[model.Rider]int{john: 3, jones: 3}), ShouldResemble, john)
		So(names.ChooseRider(john, jonathan, nil), ShouldResemble, jonathan)
	})

	Convey("Given two team spellings", t, func() {
		So(names.ChooseTeam("Team A", "Team B", map[string]int{"Team A": 5, "Team B": 2}), ShouldEqual, "Team A")
		So(names.ChooseTeam("Team", "Team Cycling Club", map[string]int{"Team": 3, "Team Cycling Club": 3}), ShouldEqual, "Team Cycling Club")
		So(names.ChooseTeam("Team A", "Team B", map[string]int{"Team A": 3, "Team B": 3}), ShouldEqual, "Team B")
	})
}
