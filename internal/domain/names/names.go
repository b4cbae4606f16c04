// Package names normalizes rider and team names and detects near-duplicates.
package names

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/eastkentcx/ekcx/internal/domain/model"
)

// Similarity limits.
const (
	minTypoLength      = 4
	TeamRatioThreshold = 0.8
)

var mastersRE = regexp.MustCompile(`^masters\s*(\d+)`)

// variations lists common forename variants and misspellings, upper-cased.
var variations = map[string][]string{
	"MICHAEL":     {"MIKE", "MICHAE", "MICHAELL", "MICHAEAL"},
	"MIKE":        {"MICHAEL"},
	"JAMES":       {"JIM", "JIMMY", "JAME"},
	"JIM":         {"JAMES", "JIMMY"},
	"JIMMY":       {"JAMES", "JIM"},
	"WILLIAM":     {"WILL", "BILL", "WILLI", "WILLIAMM"},
	"WILL":        {"WILLIAM", "BILL"},
	"BILL":        {"WILLIAM", "WILL"},
	"ROBERT":      {"BOB", "ROB", "ROBBERT", "ROBERTT"},
	"BOB":         {"ROBERT", "ROB"},
	"ROB":         {"ROBERT", "BOB"},
	"RICHARD":     {"RICH", "DICK", "RICHAR"},
	"RICH":        {"RICHARD", "DICK"},
	"DICK":        {"RICHARD", "RICH"},
	"CHRISTOPHER": {"CHRIS", "CHRISS", "CHRISTOPH"},
	"CHRIS":       {"CHRISTOPHER"},
	"JOHN":        {"JON", "JOHNNY", "JONNY", "JOHNNE"},
	"JON":         {"JOHN", "JOHNNY"},
	"JOHNNY":      {"JOHN", "JON", "JONNY"},
	"JONNY":       {"JOHN", "JON", "JOHNNY"},
	"JOSEPH":      {"JOE", "JOESEPH"},
	"JOE":         {"JOSEPH"},
	"DANIEL":      {"DAN", "DANNIEL"},
	"DAN":         {"DANIEL"},
	"MATTHEW":     {"MATT", "MATTEW", "MATTHE"},
	"MATT":        {"MATTHEW"},
	"ANDREW":      {"ANDY"},
	"ANDY":        {"ANDREW"},
	"DAVID":       {"DAVE", "DAIVD"},
	"DAVE":        {"DAVID"},
	"STEPHEN":     {"STEVE", "STEVEN", "STEPHENN"},
	"STEVE":       {"STEPHEN", "STEVEN"},
	"STEVEN":      {"STEPHEN", "STEVE"},
	"ANTHONY":     {"TONY"},
	"TONY":        {"ANTHONY"},
	"EDWARD":      {"ED", "EDDIE", "TED"},
	"ED":          {"EDWARD", "EDDIE"},
	"EDDIE":       {"EDWARD", "ED"},
	"TED":         {"EDWARD", "ED"},
	"CHARLES":     {"CHARLIE", "CHUCK", "CHARLS"},
	"CHARLIE":     {"CHARLES", "CHUCK"},
	"CHUCK":       {"CHARLES", "CHARLIE"},
	"THOMAS":      {"TOM"},
	"TOM":         {"THOMAS"},
	"NICHOLAS":    {"NICK"},
	"NICK":        {"NICHOLAS"},
}

// collapse trims s and squeezes inner whitespace runs to one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeLastName collapses whitespace and upper-cases a surname.
func NormalizeLastName(s string) string {
	return strings.ToUpper(collapse(s))
}

// NormalizeFirstName collapses whitespace and title-cases a forename.
// A letter is upper-cased when it follows a non-letter, so "o'neil-ray"
// becomes "O'Neil-Ray".
func NormalizeFirstName(s string) string {
	s = collapse(s)
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeCategory shortens "Masters 40" style categories to "Ma40".
func NormalizeCategory(s string) string {
	s = strings.TrimSpace(s)
	if m := mastersRE.FindStringSubmatch(strings.ToLower(s)); m != nil {
		return "Ma" + m[1]
	}
	return s
}

// Levenshtein returns the rune edit distance between a and b.
func Levenshtein(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Similar reports whether two names likely denote the same person.
// Names match case-insensitively, through known variations, or, when
// allowTypos is set, by a single substitution in names of 4+ letters.
func Similar(a, b string, allowTypos bool) bool {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if isVariation(a, b) || isVariation(b, a) {
		return true
	}
	if !allowTypos {
		return false
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	return la >= minTypoLength && lb >= minTypoLength && la == lb && Levenshtein(a, b) == 1
}

func isVariation(name, other string) bool {
	for _, v := range variations[name] {
		if v == other {
			return true
		}
	}
	return false
}

// RiderPair is two spellings that likely denote one rider.
type RiderPair struct {
	A, B model.Rider
}

// FindSimilarRiders compares every pair of distinct riders and returns
// those that probably differ only by a nickname or typo.
func FindSimilarRiders(riders []model.Rider) []RiderPair {
	sorted := append([]model.Rider(nil), riders...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	var out []RiderPair
	for i, r1 := range sorted {
		for _, r2 := range sorted[i+1:] {
			if r1.Last == "" || r2.Last == "" || r1.First == "" || r2.First == "" {
				continue
			}
			lastMatch := strings.EqualFold(r1.Last, r2.Last)
			firstMatch := strings.EqualFold(r1.First, r2.First)
			if lastMatch && firstMatch {
				continue
			}
			if matchRiders(r1, r2, lastMatch, firstMatch) {
				out = append(out, RiderPair{A: r1, B: r2})
			}
		}
	}
	return out
}

func matchRiders(r1, r2 model.Rider, lastMatch, firstMatch bool) bool {
	switch {
	// One part exact, the other a variation or typo.
	case lastMatch && Similar(r1.First, r2.First, true):
		return true
	case firstMatch && Similar(r1.Last, r2.Last, true):
		return true
	// Both parts differ: only known variations are safe.
	case Similar(r1.Last, r2.Last, false) && Similar(r1.First, r2.First, false):
		return true
	// Both parts carry exactly one typo, e.g. STEVENE HOPE / STEVEN POPE.
	case Similar(r1.Last, r2.Last, true) && Similar(r1.First, r2.First, true):
		return Levenshtein(strings.ToUpper(r1.Last), strings.ToUpper(r2.Last)) == 1 &&
			Levenshtein(strings.ToUpper(r1.First), strings.ToUpper(r2.First)) == 1
	}
	return false
}

// TeamPair is two team spellings that likely denote one team.
type TeamPair struct {
	A, B string
}

// FindSimilarTeams returns team pairs whose upper-cased names have a
// sequence-matcher ratio of at least TeamRatioThreshold.
func FindSimilarTeams(teams []string) []TeamPair {
	sorted := append([]string(nil), teams...)
	sort.Strings(sorted)

	var out []TeamPair
	for i, t1 := range sorted {
		if t1 == "" {
			continue
		}
		for _, t2 := range sorted[i+1:] {
			if t2 == "" {
				continue
			}
			if TeamRatio(t1, t2) >= TeamRatioThreshold {
				out = append(out, TeamPair{A: t1, B: t2})
			}
		}
	}
	return out
}

// TeamRatio is the character-level similarity of two team names in [0, 1].
func TeamRatio(a, b string) float64 {
	m := difflib.NewMatcher(runes(strings.ToUpper(a)), runes(strings.ToUpper(b)))
	return m.Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Resolve follows name through a normalization chain to its canonical form.
// A cycle stops the walk at the first repeated name.
func Resolve[K comparable](name K, normalizations map[K]K) K {
	visited := make(map[K]struct{})
	for {
		next, ok := normalizations[name]
		if !ok {
			return name
		}
		if _, seen := visited[name]; seen {
			return name
		}
		visited[name] = struct{}{}
		name = next
	}
}

// ChooseRider picks the canonical spelling of two riders: the more frequent
// one, then the longer full name, then the lexicographically greater.
func ChooseRider(r1, r2 model.Rider, counts map[model.Rider]int) model.Rider {
	if c1, c2 := counts[r1], counts[r2]; c1 != c2 {
		if c1 > c2 {
			return r1
		}
		return r2
	}
	l1 := utf8.RuneCountInString(r1.Last) + utf8.RuneCountInString(r1.First)
	l2 := utf8.RuneCountInString(r2.Last) + utf8.RuneCountInString(r2.First)
	if l1 != l2 {
		if l1 > l2 {
			return r1
		}
		return r2
	}
	if r2.Less(r1) {
		return r1
	}
	return r2
}

// ChooseTeam picks the canonical spelling of two teams by the same rules as ChooseRider.
func ChooseTeam(t1, t2 string, counts map[string]int) string {
	if c1, c2 := counts[t1], counts[t2]; c1 != c2 {
		if c1 > c2 {
			return t1
		}
		return t2
	}
	l1, l2 := utf8.RuneCountInString(t1), utf8.RuneCountInString(t2)
	if l1 != l2 {
		if l1 > l2 {
			return t1
		}
		return t2
	}
	if t1 > t2 {
		return t1
	}
	return t2
}
