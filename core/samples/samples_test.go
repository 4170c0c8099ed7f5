package samples

import (
	"strings"
	"testing"

	"github.com/FocuswithJustin/JuniperLessons/core/errors"
)

func testSamples() []Sample {
	return []Sample{
		{
			Reference:       "Genesis 12:1-3",
			HebrewFocus:     "lekh-lekha",
			LexicalInsights: []string{"walk"},
			Themes:          []string{"Calling", "blessing"},
		},
		{
			Reference:       "Psalm 23",
			Book:            "Psalms",
			HebrewFocus:     "ro'i",
			LexicalInsights: []string{"shepherd"},
			Themes:          []string{"comfort", "trust"},
		},
		{
			Reference:       "Micah 6:6-8",
			HebrewFocus:     "hesed",
			LexicalInsights: []string{"justice"},
			Themes:          []string{"justice", "calling"},
		},
	}
}

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog(testSamples())
	if err != nil {
		t.Fatalf("NewCatalog() error: %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	all := c.All()
	if all[0].Book != "Genesis" {
		t.Errorf("derived Book = %q, want Genesis", all[0].Book)
	}
	if all[1].Book != "Psalms" {
		t.Errorf("explicit Book = %q, want Psalms", all[1].Book)
	}

	all[0].Themes[0] = "mutated"
	if c.All()[0].Themes[0] != "Calling" {
		t.Error("catalog must not share slices with callers")
	}
}

func TestNewCatalogErrors(t *testing.T) {
	noInsights := testSamples()
	noInsights[1].LexicalInsights = nil

	badRef := testSamples()
	badRef[2].Reference = "6:8"

	tests := []struct {
		name    string
		samples []Sample
	}{
		{"empty", nil},
		{"missing lexical insights", noInsights},
		{"unparseable reference", badRef},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.samples)
			var pe *errors.ParseError
			if !errors.As(err, &pe) {
				t.Errorf("NewCatalog() error = %v, want ParseError", err)
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	input := `[{"reference": "Ruth 1:16-17", "hebrew_focus": "davqah",
		"morphology": {"part_of_speech": "verb", "root": "d-b-q"},
		"lexical_insights": ["cling"], "themes": ["loyalty"]}]`
	c, err := LoadCatalog(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadCatalog() error: %v", err)
	}
	s := c.Select("", "")
	if s.Book != "Ruth" || s.Morphology.Root != "d-b-q" {
		t.Errorf("loaded sample = %+v", s)
	}

	if _, err := LoadCatalog(strings.NewReader(`[`)); err == nil {
		t.Error("expected error for corrupt JSON")
	}
	if _, err := LoadCatalog(strings.NewReader(`[]`)); err == nil {
		t.Error("expected error for empty catalog")
	}
}

func TestSelect(t *testing.T) {
	c, err := NewCatalog(testSamples())
	if err != nil {
		t.Fatalf("NewCatalog() error: %v", err)
	}

	tests := []struct {
		name    string
		topic   string
		passage string
		want    string
	}{
		{"nothing given", "", "", "Genesis 12:1-3"},
		{"passage match", "", "psalm", "Psalm 23"},
		{"passage is case-insensitive", "", "MICAH 6", "Micah 6:6-8"},
		{"passage wins over topic", "comfort", "micah", "Micah 6:6-8"},
		{"topic match", "justice", "", "Micah 6:6-8"},
		{"topic substring", "trus", "", "Psalm 23"},
		{"topic ties go to catalog order", "calling", "", "Genesis 12:1-3"},
		{"unmatched passage falls to topic", "comfort", "Exodus", "Psalm 23"},
		{"nothing matches", "astronomy", "Exodus", "Genesis 12:1-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Select(tt.topic, tt.passage).Reference; got != tt.want {
				t.Errorf("Select(%q, %q) = %q, want %q", tt.topic, tt.passage, got, tt.want)
			}
		})
	}
}

func TestSelectReturnsEntryK(t *testing.T) {
	c, err := NewCatalog(testSamples())
	if err != nil {
		t.Fatalf("NewCatalog() error: %v", err)
	}
	for k, s := range c.All() {
		if got := c.Select("", s.Reference); got.Reference != s.Reference {
			t.Errorf("entry %d: Select by own reference = %q, want %q", k+1, got.Reference, s.Reference)
		}
	}
}
