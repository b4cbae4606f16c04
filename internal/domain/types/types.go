// Package types contains the league categories shared across the application.
package types

import (
	"path/filepath"
	"strings"
)

// League category keys. They double as standings fragment names.
const (
	Womens  = "womens"
	Mens    = "mens"
	U12     = "u12"
	Youth   = "youth"
	V40     = "v40"
	V50     = "v50"
	Unknown = "unknown"
	Teams   = "teams"
)

// Categories lists the league categories in team-table column order.
var Categories = []string{Womens, Mens, U12, Youth, V40, V50}

var titles = map[string]string{
	Mens:   "Senior Open",
	Womens: "Women",
	Youth:  "Youth U16/U14",
	U12:    "Under 12",
	V40:    "Veteran 40 Open",
	V50:    "Veteran 50 Open",
}

// CategoryFromFilename maps a race result file name to a league category.
// The round is taken from the directory, so round markers in the name are ignored.
func CategoryFromFilename(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "elite female"), strings.Contains(n, "elite women"):
		return Womens
	case strings.Contains(n, "elite open"), strings.Contains(n, "senior open"), strings.Contains(n, "senior"):
		return Mens
	case strings.Contains(n, "under 12"), strings.Contains(n, "u12"):
		return U12
	case strings.Contains(n, "under 16"), strings.Contains(n, "u16"):
		return Youth
	case strings.Contains(n, "v40"), strings.Contains(n, "m40"):
		return V40
	case strings.Contains(n, "v50"), strings.Contains(n, "m50"):
		return V50
	default:
		return Unknown
	}
}

// Title returns the display title of a category, or the key itself.
func Title(category string) string {
	if t, ok := titles[category]; ok {
		return t
	}
	return category
}

// SectionTitle derives a result section title from a file name: the
// category title when the name identifies one, otherwise the bare stem.
func SectionTitle(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if c := CategoryFromFilename(stem); c != Unknown {
		return Title(c)
	}
	return stem
}

// Valid reports whether category is a known league category.
func Valid(category string) bool {
	_, ok := titles[category]
	return ok
}
