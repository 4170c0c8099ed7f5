// Package lesson composes a teaching lesson from a text sample, the festival
// calendar and a congregation's local calendar.
//
// Everything in this package is synchronous and free of side effects. The
// catalogs it reads are immutable and injected through NewGenerator.
package lesson

import (
	"strconv"
	"strings"

	"github.com/FocuswithJustin/JuniperLessons/core/congregation"
	"github.com/FocuswithJustin/JuniperLessons/core/errors"
	"github.com/FocuswithJustin/JuniperLessons/core/festival"
	"github.com/FocuswithJustin/JuniperLessons/core/samples"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Type is the kind of lesson requested.
type Type string

// Supported lesson types.
const (
	Expository Type = "expository"
	Topical    Type = "topical"
	BibleStudy Type = "bible_study"
	Personal   Type = "personal"
)

// Types lists the supported lesson types in display order.
var Types = []Type{Expository, Topical, BibleStudy, Personal}

// ParseType validates a lesson type string. Unknown values yield an
// *errors.UnsupportedError.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", errors.NewUnsupported("lesson type", strconv.Quote(s))
}

// Title renders the type for display: underscores become spaces and each
// word is title-cased ("bible_study" becomes "Bible Study").
func (t Type) Title() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(t), "_", " "))
}

// Duration limits and default, in minutes.
const (
	MinMinutes     = 10
	MaxMinutes     = 120
	DefaultMinutes = 35
)

// Request is a validated lesson request. Date is carried for reference only;
// the reference date itself is passed to Generate already parsed.
type Request struct {
	Audience         string `json:"audience,omitempty"`
	Occasion         string `json:"occasion,omitempty"`
	Date             string `json:"date,omitempty"`
	Topic            string `json:"topic,omitempty"`
	Passage          string `json:"passage,omitempty"`
	LessonType       Type   `json:"lesson_type"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	Interpreted      bool   `json:"interpreted"`
	CongregationID   string `json:"congregation_id"`
}

// Section is one structured teaching unit.
type Section struct {
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	ExegeticalNotes []string `json:"exegetical"`
	Application     string   `json:"application"`
}

// Slide is one presentation slide.
type Slide struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
	Notes   string   `json:"notes"`
}

// Canvas groups the narrative parts of a lesson.
type Canvas struct {
	Introduction string    `json:"introduction"`
	Sections     []Section `json:"sections"`
	Conclusion   string    `json:"conclusion"`
}

// Lesson is the composed lesson record.
type Lesson struct {
	Title        string             `json:"title"`
	Introduction string             `json:"introduction"`
	Conclusion   string             `json:"conclusion"`
	Sections     []Section          `json:"sections"`
	Slides       []Slide            `json:"slides"`
	Canvas       Canvas             `json:"canvas"`
	Reference    string             `json:"reference"`
	HebrewFocus  string             `json:"hebrew_focus"`
	Morphology   samples.Morphology `json:"morphology"`
	Themes       []string           `json:"themes"`
}

// Result is the output of one generation. Festivals and Congregation are
// returned alongside the lesson that was built from them.
type Result struct {
	Lesson         Lesson               `json:"lesson"`
	Festivals      []festival.Match     `json:"festivals"`
	Congregation   congregation.Context `json:"congregation"`
	RuntimeMinutes int                  `json:"runtime_minutes"`
}
