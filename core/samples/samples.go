// Package samples holds the catalog of annotated Hebrew text samples and the
// policy that picks one for a lesson request.
package samples

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/FocuswithJustin/JuniperLessons/core/errors"
)

// Morphology carries the grammatical tags of the focus term.
type Morphology struct {
	PartOfSpeech string `json:"part_of_speech"`
	Root         string `json:"root"`
}

// Sample is one annotated passage.
type Sample struct {
	Reference       string     `json:"reference"`
	Book            string     `json:"book"`
	HebrewFocus     string     `json:"hebrew_focus"`
	Translation     string     `json:"translation"`
	Morphology      Morphology `json:"morphology"`
	ExegeticalNotes []string   `json:"exegetical_notes"`
	LexicalInsights []string   `json:"lexical_insights"`
	Themes          []string   `json:"themes"`
}

// Catalog is an immutable, ordered list of samples.
type Catalog struct {
	samples []Sample
}

// NewCatalog validates and copies samples into a catalog. The catalog must
// not be empty, every reference must parse and every sample needs at least
// one lexical insight. A missing Book is derived from the reference.
func NewCatalog(samples []Sample) (*Catalog, error) {
	if len(samples) == 0 {
		return nil, errors.NewParse("sample catalog", "", "catalog is empty")
	}

	c := &Catalog{samples: make([]Sample, 0, len(samples))}
	for i, s := range samples {
		ref, err := ParseReference(s.Reference)
		if err != nil {
			return nil, &errors.ParseError{
				Format:  "sample catalog",
				Message: fmt.Sprintf("entry %d: %v", i, err),
				Err:     err,
			}
		}
		if len(s.LexicalInsights) == 0 {
			return nil, errors.NewParse("sample catalog", "", fmt.Sprintf("entry %d (%s) has no lexical insights", i, s.Reference))
		}
		if s.Book == "" {
			s.Book = ref.Book
		}
		s.ExegeticalNotes = append([]string(nil), s.ExegeticalNotes...)
		s.LexicalInsights = append([]string(nil), s.LexicalInsights...)
		s.Themes = append([]string(nil), s.Themes...)
		c.samples = append(c.samples, s)
	}
	return c, nil
}

// LoadCatalog decodes a JSON array of samples.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var raw []Sample
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &errors.ParseError{Format: "sample catalog", Message: err.Error(), Err: err}
	}
	return NewCatalog(raw)
}

// All returns the samples in catalog order.
func (c *Catalog) All() []Sample {
	return append([]Sample(nil), c.samples...)
}

// Len returns the number of samples.
func (c *Catalog) Len() int {
	return len(c.samples)
}

// Select picks a sample. A passage query wins when its lowercase form is a
// substring of an entry's reference; otherwise a topic query matches against
// theme tags; otherwise the first entry is returned. Ties go to the earliest
// entry in catalog order.
func (c *Catalog) Select(topic, passage string) Sample {
	passage = strings.ToLower(passage)
	topic = strings.ToLower(topic)

	if passage != "" {
		for _, s := range c.samples {
			if strings.Contains(strings.ToLower(s.Reference), passage) {
				return s
			}
		}
	}

	if topic != "" {
		for _, s := range c.samples {
			for _, theme := range s.Themes {
				if strings.Contains(strings.ToLower(theme), topic) {
					return s
				}
			}
		}
	}

	return c.samples[0]
}
