// Package standings turns normalized race results into league tables.
package standings

import (
	"sort"

	"github.com/eastkentcx/ekcx/internal/domain/model"
	"github.com/eastkentcx/ekcx/internal/domain/types"
)

// MinRoundsForDrop is the number of held rounds from which each rider's
// lowest score is discarded.
const MinRoundsForDrop = 3

// defaultTableRounds is the round column count when nothing has been raced.
const defaultTableRounds = 2

// MaxRound returns the highest round number present in rs, or 2 when rs is empty.
func MaxRound(rs model.Results) int {
	if len(rs) == 0 {
		return defaultTableRounds
	}
	m := 0
	for _, rounds := range rs {
		m = max(m, maxRound(rounds))
	}
	return m
}

func maxRound(rounds map[int][]model.RaceResult) int {
	m := 0
	for r := range rounds {
		m = max(m, r)
	}
	return m
}

func sortedRounds(rounds map[int][]model.RaceResult) []int {
	keys := make([]int, 0, len(rounds))
	for r := range rounds {
		keys = append(keys, r)
	}
	sort.Ints(keys)
	return keys
}

type tally struct {
	standing model.RiderStanding
	points   []int
}

// Calculate builds per-category rider standings. Riders keep the team,
// category and gender of their first result. Once a category has held
// MinRoundsForDrop rounds, only the best (rounds-1) scores count towards
// PointsExclLowest. Riders are ordered by PointsExclLowest, then TotalPoints.
func Calculate(rs model.Results) map[string][]model.RiderStanding {
	out := make(map[string][]model.RiderStanding, len(rs))
	for category, rounds := range rs {
		held := maxRound(rounds)

		var order []model.Rider
		tallies := make(map[model.Rider]*tally)
		for _, round := range sortedRounds(rounds) {
			for _, r := range rounds[round] {
				key := r.Rider()
				t, ok := tallies[key]
				if !ok {
					t = &tally{standing: model.RiderStanding{
						LastName:      r.LastName,
						FirstName:     r.FirstName,
						Team:          r.Team,
						Category:      r.Category,
						Gender:        r.Gender,
						PointsByRound: make(map[int]int),
					}}
					tallies[key] = t
					order = append(order, key)
				}
				t.points = append(t.points, r.Points)
				t.standing.PointsByRound[round] = r.Points
				t.standing.Rounds = append(t.standing.Rounds, round)
			}
		}

		list := make([]model.RiderStanding, 0, len(order))
		for _, key := range order {
			t := tallies[key]
			s := t.standing
			for _, p := range t.points {
				s.TotalPoints += p
			}
			s.PointsExclLowest = countedPoints(t.points, held, s.TotalPoints)
			list = append(list, s)
		}

		sort.SliceStable(list, func(i, j int) bool {
			if list[i].PointsExclLowest != list[j].PointsExclLowest {
				return list[i].PointsExclLowest > list[j].PointsExclLowest
			}
			return list[i].TotalPoints > list[j].TotalPoints
		})
		out[category] = list
	}
	return out
}

// countedPoints sums the best (held-1) scores once enough rounds are held.
func countedPoints(points []int, held, total int) int {
	if held < MinRoundsForDrop {
		return total
	}
	best := append([]int(nil), points...)
	sort.Sort(sort.Reverse(sort.IntSlice(best)))
	n := min(held-1, len(best))
	sum := 0
	for _, p := range best[:n] {
		sum += p
	}
	return sum
}

// CalculateTeams sums riders' PointsExclLowest into their team for each
// league category. Riders without a team are ignored. Teams are ordered by
// total, keeping first-seen order (category order, then standings order) on ties.
func CalculateTeams(byCategory map[string][]model.RiderStanding) []model.TeamStanding {
	var order []string
	teams := make(map[string]*model.TeamStanding)
	for _, category := range types.Categories {
		for _, s := range byCategory[category] {
			if s.Team == "" {
				continue
			}
			t, ok := teams[s.Team]
			if !ok {
				t = &model.TeamStanding{Team: s.Team}
				teams[s.Team] = t
				order = append(order, s.Team)
			}
			addPoints(t, category, s.PointsExclLowest)
		}
	}

	out := make([]model.TeamStanding, 0, len(order))
	for _, name := range order {
		out = append(out, *teams[name])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

func addPoints(t *model.TeamStanding, category string, points int) {
	switch category {
	case types.Womens:
		t.Womens += points
	case types.Mens:
		t.Mens += points
	case types.U12:
		t.U12 += points
	case types.Youth:
		t.Youth += points
	case types.V40:
		t.V40 += points
	case types.V50:
		t.V50 += points
	default:
		return
	}
	t.Total += points
}
