package model

// RaceResult is one finisher line from a race result sheet.
type RaceResult struct {
	Round     int
	Position  int
	Points    int
	LastName  string
	FirstName string
	Team      string
	Category  string // rider's declared category, e.g. "Ma40"
	Gender    string
}

// Rider identifies a rider by (last, first) name.
type Rider struct {
	Last  string
	First string
}

// Rider returns the rider of a result.
func (r RaceResult) Rider() Rider { return Rider{Last: r.LastName, First: r.FirstName} }

// Less orders riders like tuples: last name first, then first name.
func (r Rider) Less(o Rider) bool {
	if r.Last != o.Last {
		return r.Last < o.Last
	}
	return r.First < o.First
}

// Results groups race results by league category and round.
type Results map[string]map[int][]RaceResult

// Add appends a result under category and its round.
func (rs Results) Add(category string, r RaceResult) {
	rounds, ok := rs[category]
	if !ok {
		rounds = make(map[int][]RaceResult)
		rs[category] = rounds
	}
	rounds[r.Round] = append(rounds[r.Round], r)
}

// Each visits every result in place.
func (rs Results) Each(fn func(r *RaceResult)) {
	for _, rounds := range rs {
		for _, list := range rounds {
			for i := range list {
				fn(&list[i])
			}
		}
	}
}

// RiderStanding is a rider's accumulated league position in one category.
type RiderStanding struct {
	LastName         string
	FirstName        string
	Team             string
	Category         string
	Gender           string
	PointsByRound    map[int]int
	Rounds           []int
	TotalPoints      int
	PointsExclLowest int
}

// TeamStanding sums riders' counted points per league category.
type TeamStanding struct {
	Team   string
	Womens int
	Mens   int
	U12    int
	Youth  int
	V40    int
	V50    int
	Total  int
}

// Summary describes the latest standings generation run.
type Summary struct {
	Year                 int            `json:"year"`
	Categories           int            `json:"categories"`
	Riders               int            `json:"riders"`
	Teams                int            `json:"teams"`
	RiderNormalizations  int            `json:"rider_normalizations"`
	TeamNormalizations   int            `json:"team_normalizations"`
	RidersByCategory     map[string]int `json:"riders_by_category"`
	ResultSectionsRounds int            `json:"result_section_rounds"`
}
