// Package model contains domain models passed between layers.
package model

import "strings"

// Event status values.
const (
	StatusUpcoming  = "upcoming"
	StatusCompleted = "completed"
)

// Event is one round of the league calendar.
type Event struct {
	Year              int    `yaml:"-" json:"year"`
	Round             int    `yaml:"-" json:"round"`
	Name              string `yaml:"name" json:"name"`
	Date              string `yaml:"date" json:"date"`
	Location          string `yaml:"location" json:"location"`
	BritishCyclingURL string `yaml:"british_cycling_url,omitempty" json:"british_cycling_url,omitempty"`
	PhotosURL         string `yaml:"photos_url,omitempty" json:"photos_url,omitempty"`
	Status            string `yaml:"status" json:"status"`
}

// Completed reports whether the round has been raced.
func (e Event) Completed() bool {
	return strings.EqualFold(e.Status, StatusCompleted)
}

// Section is one rendered result table of a round, typically one category.
type Section struct {
	Title string `json:"title"`
	HTML  string `json:"html"`
}
